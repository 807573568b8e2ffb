// Package delay provides a circular delay line with fractional reads,
// used by the modulation effects.
package delay

import (
	"fmt"
	"math"
)

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size in samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Delay 1 is the most recently
// written sample.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if size == 0 {
		return 0
	}
	readPos := ((d.writePos-delay)%size + size) % size
	return d.buffer[readPos]
}

// ReadFractional reads with cubic Hermite interpolation. The delay is
// clamped to the usable range of the line.
func (d *Line) ReadFractional(delay float64) float64 {
	size := len(d.buffer)
	if size < 4 {
		return 0
	}
	if delay < 1 {
		delay = 1
	}
	maxDelay := float64(size - 3)
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	xm1 := d.Read(maxInt(1, p-1))
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)
	return hermite4(t, xm1, x0, x1, x2)
}

// Reset zeroes the line contents.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

func hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
