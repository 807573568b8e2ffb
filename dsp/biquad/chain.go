package biquad

// ChainOption configures a Chain at construction time.
type ChainOption func(*Chain)

// WithGain applies a linear output gain after the last section.
func WithGain(gain float64) ChainOption {
	return func(c *Chain) {
		c.gain = gain
	}
}

// Chain runs multiple Sections in series with an optional output gain.
type Chain struct {
	sections []*Section
	gain     float64
}

// NewChain builds a serial chain from section coefficients. An empty
// coefficient list yields a pass-through chain.
func NewChain(coeffs []Coefficients, opts ...ChainOption) *Chain {
	c := &Chain{gain: 1}
	for _, co := range coeffs {
		c.sections = append(c.sections, NewSection(co))
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Len returns the number of sections.
func (c *Chain) Len() int {
	return len(c.sections)
}

// ProcessSample runs one sample through every section in order.
func (c *Chain) ProcessSample(x float64) float64 {
	for _, s := range c.sections {
		x = s.ProcessSample(x)
	}
	return x * c.gain
}

// ProcessBlock filters a block in place through every section in order.
func (c *Chain) ProcessBlock(buf []float64) {
	for _, s := range c.sections {
		s.ProcessBlock(buf)
	}
	if c.gain != 1 {
		for i := range buf {
			buf[i] *= c.gain
		}
	}
}

// Reset clears the state of every section.
func (c *Chain) Reset() {
	for _, s := range c.sections {
		s.Reset()
	}
}
