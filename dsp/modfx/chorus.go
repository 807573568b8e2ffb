package modfx

import (
	"fmt"
	"math"

	"github.com/soundsculpt/masterline/dsp/delay"
)

const (
	chorusBaseDelayLeft  = 0.020 // seconds
	chorusBaseDelayRight = 0.025
	chorusLFOHz          = 1.5
	chorusDepthSeconds   = 0.002 // at full intensity
	chorusWetGain        = 0.5   // at full intensity
)

// Chorus is a dual-voice modulated-delay chorus. The left and right
// voices use different base delays (20 ms / 25 ms) and share one sine LFO
// whose modulation depth is inverted between the channels:
//
//	dL(t) = 0.020 + depth*sin(2*pi*1.5*t)
//	dR(t) = 0.025 - depth*sin(2*pi*1.5*t)
//
// with depth = 0.002*intensity seconds. The delayed voices are summed
// onto the dry signal at wet gain 0.5*intensity, widening the stereo
// image without detuning the center.
type Chorus struct {
	sampleRate float64
	intensity  float64
	depth      float64
	wet        float64

	lfoPhase float64

	lineL *delay.Line
	lineR *delay.Line
}

// NewChorus creates a chorus for one render. Intensity must be in (0, 1];
// a zero intensity means the caller should bypass the effect instead.
func NewChorus(sampleRate, intensity float64) (*Chorus, error) {
	if err := validateUnit("chorus", sampleRate, intensity); err != nil {
		return nil, err
	}

	size := int(math.Ceil((chorusBaseDelayRight+chorusDepthSeconds)*sampleRate)) + 4
	lineL, err := delay.New(size)
	if err != nil {
		return nil, fmt.Errorf("chorus: %w", err)
	}
	lineR, err := delay.New(size)
	if err != nil {
		return nil, fmt.Errorf("chorus: %w", err)
	}

	return &Chorus{
		sampleRate: sampleRate,
		intensity:  intensity,
		depth:      chorusDepthSeconds * intensity,
		wet:        chorusWetGain * intensity,
		lineL:      lineL,
		lineR:      lineR,
	}, nil
}

// ProcessStereo applies the chorus to one stereo block in place.
// Both slices must have equal length.
func (c *Chorus) ProcessStereo(left, right []float64) {
	phaseInc := 2 * math.Pi * chorusLFOHz / c.sampleRate

	for i := range left {
		mod := math.Sin(c.lfoPhase)

		delayL := (chorusBaseDelayLeft + c.depth*mod) * c.sampleRate
		delayR := (chorusBaseDelayRight - c.depth*mod) * c.sampleRate

		c.lineL.Write(left[i])
		c.lineR.Write(right[i])

		left[i] += c.lineL.ReadFractional(delayL) * c.wet
		right[i] += c.lineR.ReadFractional(delayR) * c.wet

		c.lfoPhase += phaseInc
		if c.lfoPhase >= 2*math.Pi {
			c.lfoPhase -= 2 * math.Pi
		}
	}
}

// Reset clears delay history and the LFO phase.
func (c *Chorus) Reset() {
	c.lineL.Reset()
	c.lineR.Reset()
	c.lfoPhase = 0
}

// Intensity returns the configured intensity.
func (c *Chorus) Intensity() float64 { return c.intensity }

// SampleRate returns the sample rate in Hz.
func (c *Chorus) SampleRate() float64 { return c.sampleRate }

func validateUnit(name string, sampleRate, intensity float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", name, sampleRate)
	}
	if intensity <= 0 || intensity > 1 || math.IsNaN(intensity) {
		return fmt.Errorf("%s intensity must be in (0, 1]: %f", name, intensity)
	}
	return nil
}
