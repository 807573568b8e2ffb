package encode

import (
	"encoding/binary"
	"testing"

	"github.com/soundsculpt/masterline/audio"
)

func TestEncodeWAVHeaderFields(t *testing.T) {
	buf, err := audio.New(2, 48000, 100)
	if err != nil {
		t.Fatalf("audio.New() error = %v", err)
	}

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}

	if len(data) != 44+100*2*2 {
		t.Fatalf("encoded size = %d, want %d", len(data), 44+100*2*2)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}

	if got := binary.LittleEndian.Uint16(data[20:]); got != 1 {
		t.Fatalf("format tag = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:]); got != 2 {
		t.Fatalf("channel count = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != 48000 {
		t.Fatalf("sample rate = %d, want 48000", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:]); got != 48000*4 {
		t.Fatalf("byte rate = %d, want %d", got, 48000*4)
	}
	if got := binary.LittleEndian.Uint16(data[32:]); got != 4 {
		t.Fatalf("block align = %d, want 4", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:]); got != 16 {
		t.Fatalf("bit depth = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != 100*2*2 {
		t.Fatalf("data size = %d, want %d", got, 100*2*2)
	}
}

func TestEncodeWAVSilenceRoundTrip(t *testing.T) {
	buf, err := audio.New(1, 16000, 256)
	if err != nil {
		t.Fatalf("audio.New() error = %v", err)
	}

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}

	for i := 44; i < len(data); i += 2 {
		if v := int16(binary.LittleEndian.Uint16(data[i:])); v != 0 {
			t.Fatalf("sample at byte %d = %d, want 0", i, v)
		}
	}
}

func TestEncodeWAVClampsFullScale(t *testing.T) {
	buf := &audio.Buffer{
		SampleRate: 48000,
		Data:       [][]float64{{1.0, -1.0, 2.5, -2.5}},
	}

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV() error = %v", err)
	}

	maxPositive := int16(0.95 * 32767)
	minNegative := int16(-0.95 * 32768)

	for i := 0; i < 4; i++ {
		v := int16(binary.LittleEndian.Uint16(data[44+i*2:]))
		if v > maxPositive || v < minNegative {
			t.Fatalf("sample %d = %d, outside clamped range [%d, %d]",
				i, v, minNegative, maxPositive)
		}
	}
}

func TestSampleToInt16AsymmetricScaling(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{0.5, int16(0.5 * 32767)},
		{-0.5, int16(-0.5 * 32768)},
		{0.95, int16(0.95 * 32767)},
		{-0.95, int16(-0.95 * 32768)},
		{1.0, int16(0.95 * 32767)},
		{-1.0, int16(-0.95 * 32768)},
	}

	for _, tt := range tests {
		if got := sampleToInt16(tt.in); got != tt.want {
			t.Fatalf("sampleToInt16(%g) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeWAVRejectsInvalidBuffer(t *testing.T) {
	bad := &audio.Buffer{
		SampleRate: 48000,
		Data:       [][]float64{make([]float64, 4), make([]float64, 5)},
	}
	if _, err := EncodeWAV(bad); err == nil {
		t.Fatal("EncodeWAV() expected error for ragged buffer")
	}
}
