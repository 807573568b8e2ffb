package engine

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/soundsculpt/masterline/dsp/biquad"
	"github.com/soundsculpt/masterline/dsp/dynamics"
	"github.com/soundsculpt/masterline/dsp/waveshape"
)

// Stage is one processing step in the mastering chain. Process mutates
// both channel slices in place over the full render length. Stages are
// created fresh for every render and never shared.
type Stage interface {
	Name() string
	Process(left, right []float64)
}

// gainStage scales both channels by a constant linear factor.
type gainStage struct {
	name string
	gain float64
}

func (g *gainStage) Name() string { return g.name }

func (g *gainStage) Process(left, right []float64) {
	vecmath.ScaleBlockInPlace(left, g.gain)
	vecmath.ScaleBlockInPlace(right, g.gain)
}

// filterStage runs an identical biquad cascade over each channel with
// independent filter state.
type filterStage struct {
	name  string
	left  *biquad.Chain
	right *biquad.Chain
}

func newFilterStage(name string, coeffs []biquad.Coefficients) *filterStage {
	return &filterStage{
		name:  name,
		left:  biquad.NewChain(coeffs),
		right: biquad.NewChain(coeffs),
	}
}

func (f *filterStage) Name() string { return f.name }

func (f *filterStage) Process(left, right []float64) {
	f.left.ProcessBlock(left)
	f.right.ProcessBlock(right)
}

// stereoUnit is the contract shared by the modulation effects.
type stereoUnit interface {
	ProcessStereo(left, right []float64)
}

// fxStage adapts a modulation effect unit to the Stage interface.
type fxStage struct {
	name string
	unit stereoUnit
}

func (s *fxStage) Name() string { return s.name }

func (s *fxStage) Process(left, right []float64) {
	s.unit.ProcessStereo(left, right)
}

// compressorStage applies stereo-linked dynamics.
type compressorStage struct {
	name string
	comp *dynamics.Compressor
}

func (s *compressorStage) Name() string { return s.name }

func (s *compressorStage) Process(left, right []float64) {
	s.comp.ProcessStereoInPlace(left, right)
}

// limiterStage is the brickwall safety ceiling.
type limiterStage struct {
	name string
	lim  *dynamics.Limiter
}

func (s *limiterStage) Name() string { return s.name }

func (s *limiterStage) Process(left, right []float64) {
	s.lim.ProcessStereoInPlace(left, right)
}

// shaperStage applies the warmth saturation curve per sample.
type shaperStage struct {
	name   string
	shaper *waveshape.Shaper
}

func (s *shaperStage) Name() string { return s.name }

func (s *shaperStage) Process(left, right []float64) {
	s.shaper.ProcessInPlace(left)
	s.shaper.ProcessInPlace(right)
}

// fadeStage applies a linear fade-in over the opening and a linear
// fade-out over the closing stretch of the render. A render shorter than
// the fade-out has its fade-out start clamped to the first frame.
type fadeStage struct {
	name       string
	sampleRate float64
	fadeInSec  float64
	fadeOutSec float64
}

func (s *fadeStage) Name() string { return s.name }

func (s *fadeStage) Process(left, right []float64) {
	frames := len(left)
	fadeIn := int(s.fadeInSec * s.sampleRate)
	fadeOut := int(s.fadeOutSec * s.sampleRate)

	// A render shorter than the fade-out ramps over its whole length.
	if fadeOut > frames {
		fadeOut = frames
	}
	outStart := frames - fadeOut

	for i := 0; i < frames; i++ {
		gain := 1.0
		if fadeIn > 0 && i < fadeIn {
			gain = float64(i) / float64(fadeIn)
		}
		if fadeOut > 0 && i >= outStart {
			gain *= float64(frames-i) / float64(fadeOut)
		}
		if gain != 1.0 {
			left[i] *= gain
			right[i] *= gain
		}
	}
}
