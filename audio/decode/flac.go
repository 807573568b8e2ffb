package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/soundsculpt/masterline/audio"
)

// DecodeFLAC decodes a native FLAC stream to a float buffer.
func DecodeFLAC(data []byte) (*audio.Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil {
		return nil, fmt.Errorf("decode flac: missing stream info")
	}

	channels := int(info.NChannels)
	if channels <= 0 {
		return nil, fmt.Errorf("decode flac: invalid channel count: %d", channels)
	}

	bits := int(info.BitsPerSample)
	if bits <= 0 || bits > 32 {
		return nil, fmt.Errorf("decode flac: invalid bit depth: %d", bits)
	}
	scale := 1.0 / float64(int64(1)<<uint(bits-1))

	out := make([][]float64, channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode flac: %w", err)
		}

		for ch := 0; ch < channels && ch < len(frame.Subframes); ch++ {
			for _, s := range frame.Subframes[ch].Samples {
				out[ch] = append(out[ch], float64(s)*scale)
			}
		}
	}

	return reduceChannels(out, int(info.SampleRate))
}
