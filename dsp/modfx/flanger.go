package modfx

import (
	"fmt"
	"math"

	"github.com/soundsculpt/masterline/dsp/delay"
)

const (
	flangerBaseDelaySeconds = 0.003
	flangerLFOHz            = 0.3
	flangerDepthSeconds     = 0.002 // at full intensity
	flangerFeedback         = 0.5   // at full intensity
	flangerMix              = 0.5
)

// Flanger mixes the input with a short modulated delay of itself. The
// delay sweeps around 3 ms, driven by a 0.3 Hz sine LFO with depth
// 2*intensity ms, and the delayed signal is fed back into the delay line
// with gain 0.5*intensity.
type Flanger struct {
	sampleRate float64
	intensity  float64
	depth      float64
	feedback   float64

	lfoPhase float64
	lastWet  [2]float64

	lines [2]*delay.Line
}

// NewFlanger creates a flanger for one render. Intensity must be in (0, 1].
func NewFlanger(sampleRate, intensity float64) (*Flanger, error) {
	if err := validateUnit("flanger", sampleRate, intensity); err != nil {
		return nil, err
	}

	maxDelay := (flangerBaseDelaySeconds + flangerDepthSeconds) * sampleRate
	size := int(math.Ceil(maxDelay)) + 8

	f := &Flanger{
		sampleRate: sampleRate,
		intensity:  intensity,
		depth:      flangerDepthSeconds * intensity,
		feedback:   flangerFeedback * intensity,
	}
	for ch := 0; ch < 2; ch++ {
		line, err := delay.New(size)
		if err != nil {
			return nil, fmt.Errorf("flanger: %w", err)
		}
		f.lines[ch] = line
	}

	return f, nil
}

// ProcessStereo applies the flanger to one stereo block in place. The LFO
// is shared between the channels; delay and feedback state are per channel.
func (f *Flanger) ProcessStereo(left, right []float64) {
	phaseInc := 2 * math.Pi * flangerLFOHz / f.sampleRate

	for i := range left {
		delaySamples := (flangerBaseDelaySeconds + f.depth*math.Sin(f.lfoPhase)) * f.sampleRate

		left[i] = f.processChannel(0, left[i], delaySamples)
		right[i] = f.processChannel(1, right[i], delaySamples)

		f.lfoPhase += phaseInc
		if f.lfoPhase >= 2*math.Pi {
			f.lfoPhase -= 2 * math.Pi
		}
	}
}

func (f *Flanger) processChannel(ch int, in, delaySamples float64) float64 {
	f.lines[ch].Write(in + f.lastWet[ch]*f.feedback)
	wet := f.lines[ch].ReadFractional(delaySamples)
	f.lastWet[ch] = wet

	return in*(1-flangerMix) + wet*flangerMix
}

// Reset clears the delay lines, feedback memory, and the LFO phase.
func (f *Flanger) Reset() {
	for ch := 0; ch < 2; ch++ {
		f.lines[ch].Reset()
	}
	f.lastWet = [2]float64{}
	f.lfoPhase = 0
}

// Intensity returns the configured intensity.
func (f *Flanger) Intensity() float64 { return f.intensity }
