// Package decode turns container bytes (WAV, MP3, FLAC) into audio.Buffer
// values. The container is sniffed from magic bytes; each codec adapter
// normalizes integer PCM to float64 in [-1, 1].
package decode

import (
	"errors"
	"fmt"

	"github.com/soundsculpt/masterline/audio"
)

// ErrUnsupportedFormat indicates the source bytes are not a container this
// package can decode.
var ErrUnsupportedFormat = errors.New("decode: unsupported audio format")

// Format identifies a sniffed container type.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatFLAC    Format = "flac"
	FormatUnknown Format = ""
)

// Sniff inspects magic bytes and reports the container format.
func Sniff(data []byte) Format {
	if len(data) < 12 {
		return FormatUnknown
	}

	if string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		return FormatWAV
	}
	if string(data[0:4]) == "fLaC" {
		return FormatFLAC
	}
	if string(data[0:3]) == "ID3" {
		return FormatMP3
	}
	// Bare MPEG frame sync: 11 set bits.
	if data[0] == 0xFF && data[1]&0xE0 == 0xE0 {
		return FormatMP3
	}

	return FormatUnknown
}

// Decode sniffs the container and decodes it to a buffer.
func Decode(data []byte) (*audio.Buffer, error) {
	switch Sniff(data) {
	case FormatWAV:
		return DecodeWAV(data)
	case FormatMP3:
		return DecodeMP3(data)
	case FormatFLAC:
		return DecodeFLAC(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// reduceChannels folds an arbitrary channel count down to the supported
// layout: 1 and 2 pass through, wider layouts keep the first two channels.
func reduceChannels(data [][]float64, sampleRate int) (*audio.Buffer, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, fmt.Errorf("decode: empty audio stream")
	}
	if len(data) > 2 {
		data = data[:2]
	}

	buf := &audio.Buffer{SampleRate: sampleRate, Data: data}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return buf, nil
}
