// Package audio defines the multi-channel sample buffer exchanged between
// decoding, the mastering chain, and the encoders. Samples are float64 in
// nominal range [-1, 1]; values may exceed that range mid-chain, clipping
// is applied only at encode boundaries.
package audio
