package dynamics

import "fmt"

const (
	defaultLimiterCeilingDB = -2.0
	limiterRatio            = 20.0
	limiterKneeDB           = 0.0
	limiterAttackMs         = 1.0
	limiterReleaseMs        = 150.0
)

// Limiter is a hard-knee, high-ratio peak limiter built on the
// stereo-linked compressor. It applies no makeup gain: everything above
// the ceiling is pushed back down, nothing below it is touched.
type Limiter struct {
	comp      *Compressor
	ceilingDB float64
}

// NewLimiter creates a limiter with the given ceiling in dB (typically
// a small negative value such as -2).
func NewLimiter(sampleRate, ceilingDB float64) (*Limiter, error) {
	comp, err := NewCompressor(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}

	steps := []func() error{
		func() error { return comp.SetThreshold(ceilingDB) },
		func() error { return comp.SetRatio(limiterRatio) },
		func() error { return comp.SetKnee(limiterKneeDB) },
		func() error { return comp.SetAttack(limiterAttackMs) },
		func() error { return comp.SetRelease(limiterReleaseMs) },
		func() error { return comp.SetMakeupGain(0) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("limiter: %w", err)
		}
	}

	return &Limiter{comp: comp, ceilingDB: ceilingDB}, nil
}

// Ceiling returns the limiter ceiling in dB.
func (l *Limiter) Ceiling() float64 { return l.ceilingDB }

// ProcessStereoInPlace limits both channels in place with a shared
// envelope. Both slices must have equal length.
func (l *Limiter) ProcessStereoInPlace(left, right []float64) {
	l.comp.ProcessStereoInPlace(left, right)
}

// ProcessInPlace limits a mono buffer in place.
func (l *Limiter) ProcessInPlace(buf []float64) {
	l.comp.ProcessInPlace(buf)
}

// Reset clears the envelope follower.
func (l *Limiter) Reset() {
	l.comp.Reset()
}

// Metrics returns the underlying compressor metering values.
func (l *Limiter) Metrics() CompressorMetrics {
	return l.comp.Metrics()
}
