package engine

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/soundsculpt/masterline/audio"
	"github.com/soundsculpt/masterline/audio/encode"
)

func sineBuffer(t *testing.T, channels, sampleRate int, seconds, freq float64) *audio.Buffer {
	t.Helper()
	frames := int(seconds * float64(sampleRate))
	buf, err := audio.New(channels, sampleRate, frames)
	if err != nil {
		t.Fatal(err)
	}
	w := 2 * math.Pi * freq / float64(sampleRate)
	for ch := 0; ch < channels; ch++ {
		for i := 0; i < frames; i++ {
			buf.Data[ch][i] = 0.5 * math.Sin(w*float64(i))
		}
	}
	return buf
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"high intensity", func(c *Config) { c.Intensity = IntensityHigh }, true},
		{"wide stereo", func(c *Config) { c.StereoWidth = WidthWide }, true},
		{"all presets valid", func(c *Config) { c.Preset = PresetLofi }, true},
		{"mp3 export", func(c *Config) { c.ExportFormat = encode.FormatMP3 }, true},
		{"full creative fx", func(c *Config) { c.CreativeFX = CreativeFX{1, 1, 1} }, true},
		{"bad intensity", func(c *Config) { c.Intensity = "extreme" }, false},
		{"bad width", func(c *Config) { c.StereoWidth = "ultrawide" }, false},
		{"bad preset", func(c *Config) { c.Preset = "jazz" }, false},
		{"bad format", func(c *Config) { c.ExportFormat = "ogg" }, false},
		{"chorus above one", func(c *Config) { c.CreativeFX.Chorus = 1.1 }, false},
		{"negative phaser", func(c *Config) { c.CreativeFX.Phaser = -0.1 }, false},
		{"nan flanger", func(c *Config) { c.CreativeFX.Flanger = math.NaN() }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDeriveParameters(t *testing.T) {
	cases := []struct {
		intensity Intensity
		want      Parameters
	}{
		{IntensityLow, Parameters{InputTrimDB: -20, ThresholdDB: -24, Ratio: 1.5, MakeupDB: 13}},
		{IntensityMedium, Parameters{InputTrimDB: -20, ThresholdDB: -24, Ratio: 1.5, MakeupDB: 13}},
		{IntensityHigh, Parameters{InputTrimDB: -20, ThresholdDB: -28, Ratio: 2.5, MakeupDB: 15}},
	}
	for _, tc := range cases {
		if got := DeriveParameters(tc.intensity); got != tc.want {
			t.Errorf("DeriveParameters(%s) = %+v, want %+v", tc.intensity, got, tc.want)
		}
	}
}

func TestChainStageOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CreativeFX = CreativeFX{Chorus: 0.5, Phaser: 0.5, Flanger: 0.5}

	stages, err := buildChain(cfg, DeriveParameters(cfg.Intensity), RenderSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"input-trim", "highpass",
		"chorus", "phaser", "flanger",
		"naturalizer", "tonal-shelves",
		"compressor", "warmth", "makeup-gain", "limiter", "fades",
	}
	if len(stages) != len(want) {
		t.Fatalf("got %d stages, want %d", len(stages), len(want))
	}
	for i, s := range stages {
		if s.Name() != want[i] {
			t.Errorf("stage %d = %q, want %q", i, s.Name(), want[i])
		}
	}
}

func TestChainOmitsDisabledStages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableWarmth = false
	cfg.EnableFades = false
	cfg.EnableNaturalizer = false

	stages, err := buildChain(cfg, DeriveParameters(cfg.Intensity), RenderSampleRate)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range stages {
		switch s.Name() {
		case "warmth", "fades", "naturalizer", "chorus", "phaser", "flanger":
			t.Errorf("stage %q present despite being disabled", s.Name())
		}
	}
}

func TestFadeEnvelope(t *testing.T) {
	// 10-second render of all-ones: gain must be 0 at the first sample,
	// 1.0 from 0.8 s until 7.0 s, then decay linearly to 0 at 10.0 s.
	const sr = RenderSampleRate
	frames := 10 * sr
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range left {
		left[i] = 1
		right[i] = 1
	}

	stage := &fadeStage{name: "fades", sampleRate: sr, fadeInSec: 0.8, fadeOutSec: 3.0}
	stage.Process(left, right)

	if left[0] != 0 {
		t.Errorf("first sample = %f, want 0", left[0])
	}

	fadeIn := int(0.8 * sr)
	if got := left[fadeIn]; got != 1 {
		t.Errorf("gain at 0.8 s = %f, want 1", got)
	}
	if got := left[7*sr-1]; got != 1 {
		t.Errorf("gain just before 7.0 s = %f, want 1", got)
	}

	// Midpoint of the fade-out, 8.5 s, sits at gain 0.5.
	if got := left[frames-frames/20*3]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("gain at 8.5 s = %f, want 0.5", got)
	}

	if got := left[frames-1]; got > 1e-4 {
		t.Errorf("final sample = %f, want ~0", got)
	}
}

func TestFadeShortSourceClampsToStart(t *testing.T) {
	const sr = RenderSampleRate
	frames := 2 * sr // shorter than the 3 s fade-out
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range left {
		left[i] = 1
		right[i] = 1
	}

	stage := &fadeStage{name: "fades", sampleRate: sr, fadeInSec: 0.8, fadeOutSec: 3.0}
	stage.Process(left, right)

	// Fade-out spans the whole render; combined with the fade-in, no
	// sample reaches full scale but the envelope stays monotone down
	// after the fade-in peak region.
	if left[0] != 0 {
		t.Errorf("first sample = %f, want 0", left[0])
	}
	if got := left[frames-1]; got > 1e-4 {
		t.Errorf("final sample = %f, want ~0", got)
	}
}

func TestRenderDeterminism(t *testing.T) {
	src := sineBuffer(t, 2, 44100, 2, 440)
	cfg := DefaultConfig()
	cfg.CreativeFX = CreativeFX{Chorus: 0.4, Phaser: 0.3, Flanger: 0.2}

	out1, err := Render(src, cfg)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := Render(src, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for ch := 0; ch < 2; ch++ {
		for i := range out1.Data[ch] {
			if out1.Data[ch][i] != out2.Data[ch][i] {
				t.Fatalf("channel %d sample %d differs between renders", ch, i)
			}
		}
	}
}

func TestRenderDoesNotMutateSource(t *testing.T) {
	src := sineBuffer(t, 1, 44100, 1, 440)
	orig := src.Clone()

	if _, err := Render(src, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	for i := range src.Data[0] {
		if src.Data[0][i] != orig.Data[0][i] {
			t.Fatalf("source mutated at sample %d", i)
		}
	}
}

func TestRenderRejectsInvalidConfig(t *testing.T) {
	src := sineBuffer(t, 1, 44100, 1, 440)
	cfg := DefaultConfig()
	cfg.Intensity = "verylarge"

	if _, err := Render(src, cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestSessionIDsUnique(t *testing.T) {
	s1, err := NewSession(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s2, err := NewSession(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s1.ID() == "" || s1.ID() == s2.ID() {
		t.Errorf("session IDs not unique: %q vs %q", s1.ID(), s2.ID())
	}
}

func TestRenderEndToEndWAV(t *testing.T) {
	// 5-second mono 44.1 kHz sine, medium intensity, defaults on, WAV out:
	// the result must declare 2 channels, 48 kHz, 16-bit, and a data
	// section of ceil(5 * 48000) * 2 channels * 2 bytes.
	src := sineBuffer(t, 1, 44100, 5, 440)

	out, err := Render(src, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if out.Channels() != 2 {
		t.Fatalf("channels = %d, want 2", out.Channels())
	}
	if out.SampleRate != RenderSampleRate {
		t.Fatalf("sample rate = %d, want %d", out.SampleRate, RenderSampleRate)
	}
	if want := 5 * RenderSampleRate; out.Frames() != want {
		t.Fatalf("frames = %d, want %d", out.Frames(), want)
	}

	res, err := encode.Encode(out, encode.FormatWAV, "track.flac")
	if err != nil {
		t.Fatal(err)
	}

	data := res.Data
	if len(data) < 44 {
		t.Fatalf("WAV too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if ch := binary.LittleEndian.Uint16(data[22:24]); ch != 2 {
		t.Errorf("header channels = %d, want 2", ch)
	}
	if sr := binary.LittleEndian.Uint32(data[24:28]); sr != RenderSampleRate {
		t.Errorf("header sample rate = %d, want %d", sr, RenderSampleRate)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("header bit depth = %d, want 16", bits)
	}
	wantData := 5 * RenderSampleRate * 2 * 2
	if got := binary.LittleEndian.Uint32(data[40:44]); int(got) != wantData {
		t.Errorf("data chunk size = %d, want %d", got, wantData)
	}
	if res.MIME != encode.MIMEWAV {
		t.Errorf("MIME = %q, want %q", res.MIME, encode.MIMEWAV)
	}
	if res.Name != "track.wav" {
		t.Errorf("output name = %q, want track.wav", res.Name)
	}
}

func TestRenderOutputStaysBelowFullScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Intensity = IntensityHigh
	src := sineBuffer(t, 2, 48000, 1, 1000)

	out, err := Render(src, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for ch := range out.Data {
		for i, v := range out.Data[ch] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("channel %d sample %d not finite: %f", ch, i, v)
			}
			if math.Abs(v) > 1.2 {
				t.Fatalf("channel %d sample %d far above full scale: %f", ch, i, v)
			}
		}
	}
}
