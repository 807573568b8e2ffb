// Package analysis shrinks a source track into a compact payload for an
// external analysis service: mono, 16 kHz, at most three minutes, encoded
// as base64 WAV.
package analysis

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/soundsculpt/masterline/audio"
	"github.com/soundsculpt/masterline/audio/decode"
	"github.com/soundsculpt/masterline/audio/encode"
	"github.com/soundsculpt/masterline/dsp/resample"
)

const (
	// MaxSourceBytes is the precondition limit on the raw source file.
	MaxSourceBytes = 100 << 20

	// MaxSeconds caps the analyzed duration; anything longer is trimmed.
	MaxSeconds = 180

	// TargetSampleRate is the mono payload rate.
	TargetSampleRate = 16000
)

// ErrOptimization wraps every failure in the preparation pipeline so the
// caller can distinguish payload-shrinking problems from mastering ones.
var ErrOptimization = errors.New("analysis: payload optimization failed")

// ErrTooLarge is a fail-fast precondition error for oversized sources,
// reported before any decode work is attempted.
var ErrTooLarge = fmt.Errorf("%w: source exceeds %d bytes", ErrOptimization, MaxSourceBytes)

// PrepareReference decodes the source bytes, trims to at most 180 s,
// mixes to mono at 16 kHz, and returns the result as a base64-encoded
// WAV string ready for transmission.
func PrepareReference(src []byte) (string, error) {
	if len(src) > MaxSourceBytes {
		return "", ErrTooLarge
	}
	if decode.Sniff(src) == decode.FormatUnknown {
		return "", fmt.Errorf("%w: %v", ErrOptimization, decode.ErrUnsupportedFormat)
	}

	buf, err := decode.Decode(src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOptimization, err)
	}

	mono := buf.MixMono()
	if maxFrames := MaxSeconds * buf.SampleRate; len(mono) > maxFrames {
		mono = mono[:maxFrames]
	}

	reduced, err := resample.Resample(mono, buf.SampleRate, TargetSampleRate)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOptimization, err)
	}

	out := &audio.Buffer{
		SampleRate: TargetSampleRate,
		Data:       [][]float64{reduced},
	}
	wav, err := encode.EncodeWAV(out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOptimization, err)
	}

	return base64.StdEncoding.EncodeToString(wav), nil
}

// MIME is the payload content type accompanying the base64 string.
const MIME = encode.MIMEWAV
