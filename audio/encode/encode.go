// Package encode serializes rendered buffers into deliverable containers:
// a canonical 16-bit PCM WAV writer and a 320 kbps MP3 adapter. Float
// samples are clamped to +/-0.95 before integer conversion, keeping
// headroom below full scale at the encode boundary.
package encode

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/soundsculpt/masterline/audio"
)

// ErrEncode indicates the encoder failed on an otherwise valid buffer.
var ErrEncode = errors.New("encode: encoding failed")

// Format selects the output container.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// MIME types for the supported containers.
const (
	MIMEWAV = "audio/wav"
	MIMEMP3 = "audio/mp3"
)

// Result is an encoded artifact: bytes, MIME tag, and the deterministic
// output filename derived from the source name.
type Result struct {
	Data []byte
	MIME string
	Name string
}

// MIMEFor returns the MIME type for a format, or "" if unknown.
func MIMEFor(f Format) string {
	switch f {
	case FormatWAV:
		return MIMEWAV
	case FormatMP3:
		return MIMEMP3
	default:
		return ""
	}
}

// OutputName replaces the source filename extension with the format's.
func OutputName(sourceName string, f Format) string {
	base := filepath.Base(sourceName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "output"
	}
	return stem + "." + string(f)
}

// Encode renders buf into the requested container.
func Encode(buf *audio.Buffer, f Format, sourceName string) (Result, error) {
	var (
		data []byte
		err  error
	)

	switch f {
	case FormatWAV:
		data, err = EncodeWAV(buf)
	case FormatMP3:
		data, err = EncodeMP3(buf)
	default:
		return Result{}, fmt.Errorf("%w: unknown format %q", ErrEncode, f)
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		Data: data,
		MIME: MIMEFor(f),
		Name: OutputName(sourceName, f),
	}, nil
}

const clampCeiling = 0.95

// sampleToInt16 converts one float sample to signed 16-bit PCM. The value
// is clamped to +/-0.95 first; negative values scale by 32768, positive by
// 32767, matching the asymmetric two's-complement range.
func sampleToInt16(v float64) int16 {
	v = audio.Clamp(v, -clampCeiling, clampCeiling)
	if v < 0 {
		return int16(v * 32768)
	}
	return int16(v * 32767)
}
