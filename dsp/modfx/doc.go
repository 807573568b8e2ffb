// Package modfx implements the creative modulation effects of the
// mastering chain: chorus, phaser, and flanger. Each unit is driven by a
// single intensity control in (0, 1] that scales modulation depth,
// feedback, and wet level together. An intensity of zero means the effect
// is not built at all; the chain builder omits the stage so the output is
// bit-identical to a chain without it.
//
// All units process stereo blocks with oscillators that run continuously
// for the full render duration, and contain no hidden randomness.
package modfx
