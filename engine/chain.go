package engine

import (
	"fmt"

	"github.com/soundsculpt/masterline/dsp/biquad"
	"github.com/soundsculpt/masterline/dsp/design"
	"github.com/soundsculpt/masterline/dsp/dynamics"
	"github.com/soundsculpt/masterline/dsp/modfx"
	"github.com/soundsculpt/masterline/dsp/waveshape"
)

const (
	highpassFreqHz = 85.0
	highpassQ      = 0.70710678118654752

	naturalizerShelfHz = 8500.0
	lowShelfHz         = 180.0
	highShelfHz        = 11000.0

	compressorKneeDB    = 35.0
	compressorAttackMs  = 40.0
	compressorReleaseMs = 250.0

	limiterCeilingDB = -2.0

	fadeInSeconds  = 0.8
	fadeOutSeconds = 3.0
)

// buildChain assembles the ordered stage list for one render. The order
// is fixed; configuration only adds or omits optional stages.
func buildChain(cfg Config, params Parameters, sampleRate float64) ([]Stage, error) {
	var stages []Stage

	stages = append(stages, &gainStage{
		name: "input-trim",
		gain: dbToLinear(params.InputTrimDB),
	})

	stages = append(stages, newFilterStage("highpass", []biquad.Coefficients{
		design.Highpass(highpassFreqHz, highpassQ, sampleRate),
	}))

	fxStages, err := buildCreativeFX(cfg.CreativeFX, sampleRate)
	if err != nil {
		return nil, err
	}
	stages = append(stages, fxStages...)

	if cfg.EnableNaturalizer {
		stages = append(stages, newFilterStage("naturalizer", []biquad.Coefficients{
			design.Peak(2800, -5, 4, sampleRate),
			design.Peak(4500, -5.5, 5, sampleRate),
			design.Peak(6200, -4, 6, sampleRate),
			design.HighShelf(naturalizerShelfHz, -5, 0, sampleRate),
		}))
	}

	lowShelfDB := 0.5
	if cfg.Preset == PresetElectronic {
		lowShelfDB = 1.5
	}
	highShelfDB := 0.5
	if cfg.Preset == PresetPop {
		highShelfDB = 1.5
	}
	stages = append(stages, newFilterStage("tonal-shelves", []biquad.Coefficients{
		design.LowShelf(lowShelfHz, lowShelfDB, 0, sampleRate),
		design.HighShelf(highShelfHz, highShelfDB, 0, sampleRate),
	}))

	comp, err := buildCompressor(params, sampleRate)
	if err != nil {
		return nil, err
	}
	stages = append(stages, &compressorStage{name: "compressor", comp: comp})

	if cfg.EnableWarmth {
		shaper, err := waveshape.NewShaper(waveshape.Curve(waveshape.DefaultTableSize))
		if err != nil {
			return nil, fmt.Errorf("warmth: %w", err)
		}
		stages = append(stages, &shaperStage{name: "warmth", shaper: shaper})
	}

	stages = append(stages, &gainStage{
		name: "makeup-gain",
		gain: dbToLinear(params.MakeupDB),
	})

	lim, err := dynamics.NewLimiter(sampleRate, limiterCeilingDB)
	if err != nil {
		return nil, err
	}
	stages = append(stages, &limiterStage{name: "limiter", lim: lim})

	if cfg.EnableFades {
		stages = append(stages, &fadeStage{
			name:       "fades",
			sampleRate: sampleRate,
			fadeInSec:  fadeInSeconds,
			fadeOutSec: fadeOutSeconds,
		})
	}

	return stages, nil
}

// buildCreativeFX returns the enabled modulation stages in fixed order:
// chorus, then phaser, then flanger. A zero intensity omits the stage,
// which is bit-identical to running it at zero depth.
func buildCreativeFX(fx CreativeFX, sampleRate float64) ([]Stage, error) {
	var stages []Stage

	if fx.Chorus > 0 {
		unit, err := modfx.NewChorus(sampleRate, fx.Chorus)
		if err != nil {
			return nil, err
		}
		stages = append(stages, &fxStage{name: "chorus", unit: unit})
	}
	if fx.Phaser > 0 {
		unit, err := modfx.NewPhaser(sampleRate, fx.Phaser)
		if err != nil {
			return nil, err
		}
		stages = append(stages, &fxStage{name: "phaser", unit: unit})
	}
	if fx.Flanger > 0 {
		unit, err := modfx.NewFlanger(sampleRate, fx.Flanger)
		if err != nil {
			return nil, err
		}
		stages = append(stages, &fxStage{name: "flanger", unit: unit})
	}

	return stages, nil
}

// buildCompressor configures the musical compressor from the derived
// parameters. Makeup is applied by a dedicated gain stage afterwards, so
// the compressor itself runs without makeup.
func buildCompressor(params Parameters, sampleRate float64) (*dynamics.Compressor, error) {
	comp, err := dynamics.NewCompressor(sampleRate)
	if err != nil {
		return nil, err
	}

	steps := []func() error{
		func() error { return comp.SetThreshold(params.ThresholdDB) },
		func() error { return comp.SetRatio(params.Ratio) },
		func() error { return comp.SetKnee(compressorKneeDB) },
		func() error { return comp.SetAttack(compressorAttackMs) },
		func() error { return comp.SetRelease(compressorReleaseMs) },
		func() error { return comp.SetMakeupGain(0) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("compressor: %w", err)
		}
	}

	return comp, nil
}
