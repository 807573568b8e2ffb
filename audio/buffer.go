package audio

import (
	"fmt"
)

// Buffer holds decoded or rendered multi-channel audio. One slice per
// channel, all channels the same length. A Buffer is owned by whichever
// stage produced it; stages hand buffers off, they never share them.
type Buffer struct {
	SampleRate int
	Data       [][]float64
}

// New returns a zero-filled Buffer with the given shape.
func New(channels, sampleRate, frames int) (*Buffer, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("audio: channel count must be 1 or 2: %d", channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate must be > 0: %d", sampleRate)
	}
	if frames < 0 {
		return nil, fmt.Errorf("audio: frame count must be >= 0: %d", frames)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}

	return &Buffer{SampleRate: sampleRate, Data: data}, nil
}

// Validate checks the channel layout invariants.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("audio: nil buffer")
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("audio: sample rate must be > 0: %d", b.SampleRate)
	}
	if len(b.Data) != 1 && len(b.Data) != 2 {
		return fmt.Errorf("audio: channel count must be 1 or 2: %d", len(b.Data))
	}
	for ch := 1; ch < len(b.Data); ch++ {
		if len(b.Data[ch]) != len(b.Data[0]) {
			return fmt.Errorf("audio: channel %d has %d frames, channel 0 has %d",
				ch, len(b.Data[ch]), len(b.Data[0]))
		}
	}
	return nil
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	return len(b.Data)
}

// Frames returns the per-channel frame count.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{SampleRate: b.SampleRate, Data: make([][]float64, len(b.Data))}
	for ch := range b.Data {
		out.Data[ch] = make([]float64, len(b.Data[ch]))
		copy(out.Data[ch], b.Data[ch])
	}
	return out
}

// MixMono returns a single-channel mix. Stereo channels are averaged,
// mono is copied.
func (b *Buffer) MixMono() []float64 {
	n := b.Frames()
	out := make([]float64, n)

	switch len(b.Data) {
	case 1:
		copy(out, b.Data[0])
	case 2:
		left, right := b.Data[0], b.Data[1]
		for i := 0; i < n; i++ {
			out[i] = 0.5 * (left[i] + right[i])
		}
	}

	return out
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
