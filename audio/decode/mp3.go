package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/soundsculpt/masterline/audio"
)

const int16Scale = 1.0 / 32768.0

// DecodeMP3 decodes an MPEG-1 Layer III stream to a float buffer.
// The decoder always emits interleaved 16-bit stereo.
func DecodeMP3(data []byte) (*audio.Buffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	frames := len(raw) / 4 // 2 channels x 2 bytes
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		left[i] = float64(l) * int16Scale
		right[i] = float64(r) * int16Scale
	}

	return reduceChannels([][]float64{left, right}, dec.SampleRate())
}
