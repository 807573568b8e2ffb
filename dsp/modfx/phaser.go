package modfx

import (
	"math"

	"github.com/soundsculpt/masterline/dsp/biquad"
	"github.com/soundsculpt/masterline/dsp/design"
)

const (
	phaserStages      = 4
	phaserBaseFreqHz  = 1000.0
	phaserLFOHz       = 0.5
	phaserDepthHz     = 800.0 // at full intensity
	phaserFeedback    = 0.4   // at full intensity
	phaserMix         = 0.5
	phaserMinFreqHz   = 20.0
	phaserNyquistSafe = 0.49
)

// Phaser chains four allpass biquads whose center frequency sweeps around
// 1 kHz, driven by a shared 0.5 Hz triangle LFO with depth 800*intensity
// Hz. A feedback path (gain 0.4*intensity) routes the last stage back
// into the first, realized as one-sample-delayed state per channel.
type Phaser struct {
	sampleRate float64
	intensity  float64
	depth      float64
	feedback   float64

	lfoPhase float64
	fbSample [2]float64

	stages [2][phaserStages]*biquad.Section
}

// NewPhaser creates a phaser for one render. Intensity must be in (0, 1].
func NewPhaser(sampleRate, intensity float64) (*Phaser, error) {
	if err := validateUnit("phaser", sampleRate, intensity); err != nil {
		return nil, err
	}

	p := &Phaser{
		sampleRate: sampleRate,
		intensity:  intensity,
		depth:      phaserDepthHz * intensity,
		feedback:   phaserFeedback * intensity,
	}

	coeffs := design.Allpass(phaserBaseFreqHz, 0, sampleRate)
	for ch := 0; ch < 2; ch++ {
		for i := range p.stages[ch] {
			p.stages[ch][i] = biquad.NewSection(coeffs)
		}
	}

	return p, nil
}

// ProcessStereo applies the phaser to one stereo block in place. The LFO
// is shared between the channels; filter state is per channel.
func (p *Phaser) ProcessStereo(left, right []float64) {
	phaseInc := 2 * math.Pi * phaserLFOHz / p.sampleRate
	maxFreq := phaserNyquistSafe * p.sampleRate

	for i := range left {
		freq := phaserBaseFreqHz + p.depth*triangle(p.lfoPhase)
		if freq < phaserMinFreqHz {
			freq = phaserMinFreqHz
		} else if freq > maxFreq {
			freq = maxFreq
		}

		coeffs := design.Allpass(freq, 0, p.sampleRate)
		for ch := 0; ch < 2; ch++ {
			for s := range p.stages[ch] {
				p.stages[ch][s].SetCoefficients(coeffs)
			}
		}

		left[i] = p.processChannel(0, left[i])
		right[i] = p.processChannel(1, right[i])

		p.lfoPhase += phaseInc
		if p.lfoPhase >= 2*math.Pi {
			p.lfoPhase -= 2 * math.Pi
		}
	}
}

func (p *Phaser) processChannel(ch int, in float64) float64 {
	x := in + p.fbSample[ch]*p.feedback
	for s := range p.stages[ch] {
		x = p.stages[ch][s].ProcessSample(x)
	}
	p.fbSample[ch] = x

	return in*(1-phaserMix) + x*phaserMix
}

// Reset clears filter state, feedback memory, and the LFO phase.
func (p *Phaser) Reset() {
	for ch := 0; ch < 2; ch++ {
		for s := range p.stages[ch] {
			p.stages[ch][s].Reset()
		}
	}
	p.fbSample = [2]float64{}
	p.lfoPhase = 0
}

// Intensity returns the configured intensity.
func (p *Phaser) Intensity() float64 { return p.intensity }

// triangle evaluates a triangle wave at phase (radians): zero at phase 0,
// rising to +1 at pi/2, falling through 0 at pi to -1 at 3*pi/2.
func triangle(phase float64) float64 {
	t := phase / (2 * math.Pi)
	t -= math.Floor(t)

	switch {
	case t < 0.25:
		return 4 * t
	case t < 0.75:
		return 2 - 4*t
	default:
		return 4*t - 4
	}
}
