package encode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/soundsculpt/masterline/audio"
)

const (
	wavHeaderSize = 44
	wavBitDepth   = 16
	wavFormatPCM  = 1
)

// EncodeWAV serializes buf as a canonical little-endian 16-bit PCM WAV
// file: 44-byte header followed by interleaved samples in channel order.
// Deterministic for a valid buffer.
func EncodeWAV(buf *audio.Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	channels := buf.Channels()
	frames := buf.Frames()
	bytesPerSample := wavBitDepth / 8
	blockAlign := channels * bytesPerSample
	dataSize := frames * blockAlign

	out := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(36+dataSize))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	binary.Write(out, binary.LittleEndian, uint32(16))
	binary.Write(out, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(out, binary.LittleEndian, uint16(channels))
	binary.Write(out, binary.LittleEndian, uint32(buf.SampleRate))
	binary.Write(out, binary.LittleEndian, uint32(buf.SampleRate*blockAlign))
	binary.Write(out, binary.LittleEndian, uint16(blockAlign))
	binary.Write(out, binary.LittleEndian, uint16(wavBitDepth))

	out.WriteString("data")
	binary.Write(out, binary.LittleEndian, uint32(dataSize))

	var sample [2]byte
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(sample[:], uint16(sampleToInt16(buf.Data[ch][i])))
			out.Write(sample[:])
		}
	}

	return out.Bytes(), nil
}
