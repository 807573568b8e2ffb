package encode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	lame "github.com/viert/go-lame"

	"github.com/soundsculpt/masterline/audio"
)

const (
	mp3BitrateKbps = 320
	mp3BlockFrames = 1152
	mp3Quality     = 2
)

// EncodeMP3 serializes buf as a CBR 320 kbps MPEG-1 Layer III stream.
// Mono input is duplicated to both channels. Interleaved 16-bit frames are
// fed to the encoder in blocks of 1152 frames; closing the encoder flushes
// the final granule.
func EncodeMP3(buf *audio.Buffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	left := buf.Data[0]
	right := left
	if buf.Channels() == 2 {
		right = buf.Data[1]
	}

	out := &bytes.Buffer{}
	enc := lame.NewEncoder(out)

	if err := configureLame(enc, buf.SampleRate); err != nil {
		enc.Close()
		return nil, err
	}
	if err := writeLameBlocks(enc, left, right); err != nil {
		enc.Close()
		return nil, err
	}

	// Close flushes the final compressed chunk into out.
	enc.Close()

	return out.Bytes(), nil
}

func configureLame(enc *lame.Encoder, sampleRate int) error {
	if err := enc.SetNumChannels(2); err != nil {
		return fmt.Errorf("%w: set channels: %v", ErrEncode, err)
	}
	if err := enc.SetInSamplerate(sampleRate); err != nil {
		return fmt.Errorf("%w: set sample rate: %v", ErrEncode, err)
	}
	if err := enc.SetBrate(mp3BitrateKbps); err != nil {
		return fmt.Errorf("%w: set bitrate: %v", ErrEncode, err)
	}
	if err := enc.SetQuality(mp3Quality); err != nil {
		return fmt.Errorf("%w: set quality: %v", ErrEncode, err)
	}
	return nil
}

func writeLameBlocks(enc *lame.Encoder, left, right []float64) error {
	block := make([]byte, 0, mp3BlockFrames*4)
	var sample [2]byte

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		if _, err := enc.Write(block); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		block = block[:0]
		return nil
	}

	for i := range left {
		binary.LittleEndian.PutUint16(sample[:], uint16(sampleToInt16(left[i])))
		block = append(block, sample[:]...)
		binary.LittleEndian.PutUint16(sample[:], uint16(sampleToInt16(right[i])))
		block = append(block, sample[:]...)

		if len(block) >= mp3BlockFrames*4 {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}
