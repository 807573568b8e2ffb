package decode

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"

	"github.com/soundsculpt/masterline/audio"
)

// DecodeWAV decodes a RIFF/WAVE container to a float buffer.
func DecodeWAV(data []byte) (*audio.Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("decode wav: %w", ErrUnsupportedFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if pcm == nil || pcm.Format == nil || len(pcm.Data) == 0 {
		return nil, fmt.Errorf("decode wav: empty PCM payload")
	}

	channels := pcm.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("decode wav: invalid channel count: %d", channels)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 {
		bitDepth = pcm.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("decode wav: invalid bit depth: %d", bitDepth)
	}
	scale := 1.0 / float64(int64(1)<<uint(bitDepth-1))

	frames := len(pcm.Data) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out[ch][i] = float64(pcm.Data[i*channels+ch]) * scale
		}
	}

	return reduceChannels(out, int(dec.SampleRate))
}
