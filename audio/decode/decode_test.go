package decode

import (
	"errors"
	"math"
	"testing"

	"github.com/soundsculpt/masterline/audio"
	"github.com/soundsculpt/masterline/audio/encode"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), FormatWAV},
		{"flac", []byte("fLaC\x00\x00\x00\x22aaaaaaaa"), FormatFLAC},
		{"id3 mp3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00xx"), FormatMP3},
		{"bare mpeg frame", []byte{0xFF, 0xFB, 0x90, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}, FormatMP3},
		{"too short", []byte("RIFF"), FormatUnknown},
		{"garbage", []byte("this is not audio at all"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sniff(tc.data); got != tc.want {
				t.Errorf("Sniff = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode([]byte("no container magic anywhere here"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodeWAVRoundTrip(t *testing.T) {
	src, err := audio.New(2, 44100, 4410)
	if err != nil {
		t.Fatal(err)
	}
	w := 2 * math.Pi * 440.0 / 44100
	for i := range src.Data[0] {
		src.Data[0][i] = 0.5 * math.Sin(w*float64(i))
		src.Data[1][i] = -src.Data[0][i]
	}

	wavBytes, err := encode.EncodeWAV(src)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Decode(wavBytes)
	if err != nil {
		t.Fatal(err)
	}
	if got.Channels() != 2 {
		t.Fatalf("channels = %d, want 2", got.Channels())
	}
	if got.SampleRate != 44100 {
		t.Fatalf("sample rate = %d, want 44100", got.SampleRate)
	}
	if got.Frames() != src.Frames() {
		t.Fatalf("frames = %d, want %d", got.Frames(), src.Frames())
	}

	// 16-bit truncation plus the asymmetric positive scale keep every
	// decoded sample within two LSBs of the original.
	const tol = 2.0 / 32768
	for ch := 0; ch < 2; ch++ {
		for i := range got.Data[ch] {
			if d := math.Abs(got.Data[ch][i] - src.Data[ch][i]); d > tol {
				t.Fatalf("channel %d sample %d off by %g", ch, i, d)
			}
		}
	}
}

func TestDecodeWAVSilenceRoundTrip(t *testing.T) {
	src, err := audio.New(1, 16000, 1600)
	if err != nil {
		t.Fatal(err)
	}
	wavBytes, err := encode.EncodeWAV(src)
	if err != nil {
		t.Fatal(err)
	}

	got, err := DecodeWAV(wavBytes)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got.Data[0] {
		if v != 0 {
			t.Fatalf("silence sample %d = %g, want 0", i, v)
		}
	}
}
