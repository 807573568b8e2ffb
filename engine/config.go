package engine

import (
	"fmt"
	"math"

	"github.com/soundsculpt/masterline/audio/encode"
)

// Intensity selects how aggressively the dynamics stage shapes the track.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// StereoWidth is declared in the configuration contract but not consulted
// by the processing chain. It is kept so existing configurations stay
// valid; widening may be wired in later.
type StereoWidth string

const (
	WidthNormal StereoWidth = "normal"
	WidthWide   StereoWidth = "wide"
)

// Preset nudges the tonal shelving toward a genre character.
type Preset string

const (
	PresetBalanced   Preset = "balanced"
	PresetPop        Preset = "pop"
	PresetElectronic Preset = "electronic"
	PresetRock       Preset = "rock"
	PresetLofi       Preset = "lofi"
)

// CreativeFX holds per-effect intensities in [0, 1]. An intensity of
// exactly 0 omits that effect from the chain entirely.
type CreativeFX struct {
	Chorus  float64
	Phaser  float64
	Flanger float64
}

// Config describes the desired mastering character for one render.
// It is treated as immutable for the duration of a render call.
type Config struct {
	Intensity         Intensity
	StereoWidth       StereoWidth
	EnableWarmth      bool
	EnableFades       bool
	EnableNaturalizer bool
	ExportFormat      encode.Format
	Preset            Preset
	CreativeFX        CreativeFX
}

// DefaultConfig returns the baseline mastering configuration: medium
// intensity, all correction stages enabled, no creative effects, WAV out.
func DefaultConfig() Config {
	return Config{
		Intensity:         IntensityMedium,
		StereoWidth:       WidthNormal,
		EnableWarmth:      true,
		EnableFades:       true,
		EnableNaturalizer: true,
		ExportFormat:      encode.FormatWAV,
		Preset:            PresetBalanced,
	}
}

// Validate checks every field against its allowed values.
func (c Config) Validate() error {
	switch c.Intensity {
	case IntensityLow, IntensityMedium, IntensityHigh:
	default:
		return fmt.Errorf("invalid intensity %q", c.Intensity)
	}

	switch c.StereoWidth {
	case WidthNormal, WidthWide:
	default:
		return fmt.Errorf("invalid stereo width %q", c.StereoWidth)
	}

	switch c.Preset {
	case PresetBalanced, PresetPop, PresetElectronic, PresetRock, PresetLofi:
	default:
		return fmt.Errorf("invalid preset %q", c.Preset)
	}

	switch c.ExportFormat {
	case encode.FormatWAV, encode.FormatMP3:
	default:
		return fmt.Errorf("invalid export format %q", c.ExportFormat)
	}

	for _, fx := range []struct {
		name  string
		value float64
	}{
		{"chorus", c.CreativeFX.Chorus},
		{"phaser", c.CreativeFX.Phaser},
		{"flanger", c.CreativeFX.Flanger},
	} {
		if fx.value < 0 || fx.value > 1 || math.IsNaN(fx.value) {
			return fmt.Errorf("%s intensity must be in [0, 1]: %f", fx.name, fx.value)
		}
	}

	return nil
}

// Parameters are the dynamics-stage numbers computed once per render from
// the configured intensity. They fully parameterize input trim,
// compression, and makeup gain.
type Parameters struct {
	InputTrimDB float64
	ThresholdDB float64
	Ratio       float64
	MakeupDB    float64
}

// DeriveParameters maps an intensity level to dynamics parameters. High
// intensity compresses earlier and harder and restores more level.
func DeriveParameters(intensity Intensity) Parameters {
	p := Parameters{
		InputTrimDB: -20,
		ThresholdDB: -24,
		Ratio:       1.5,
		MakeupDB:    13,
	}
	if intensity == IntensityHigh {
		p.ThresholdDB = -28
		p.Ratio = 2.5
		p.MakeupDB = 15
	}
	return p
}

// dbToLinear converts decibels to a linear gain factor.
func dbToLinear(dB float64) float64 {
	return math.Pow(10, dB/20)
}
