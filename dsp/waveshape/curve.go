// Package waveshape implements the warmth saturation transfer function:
// a lookup-table waveshaper that is linear inside +/-0.7 and compresses
// the outer 30% of the range with a tanh soft knee.
package waveshape

import "math"

const (
	// DefaultTableSize matches the resolution used by the mastering chain.
	DefaultTableSize = 48000

	kneeStart = 0.7
	kneeScale = 0.25
)

// Curve builds an n-entry transfer table over the domain [-1, 1].
//
// For index i, the input is x = 2*i/n - 1. Inputs with |x| < 0.7 map to
// themselves; beyond that the output follows
//
//	sign(x) * (0.7 + tanh(|x| - 0.7) * 0.25)
//
// which approaches 0.95 asymptotically instead of hard clipping.
// Pure and deterministic.
func Curve(n int) []float64 {
	if n <= 0 {
		n = DefaultTableSize
	}

	table := make([]float64, n)
	for i := range table {
		x := 2*float64(i)/float64(n) - 1
		table[i] = shape(x)
	}
	return table
}

func shape(x float64) float64 {
	ax := math.Abs(x)
	if ax < kneeStart {
		return x
	}

	y := kneeStart + math.Tanh(ax-kneeStart)*kneeScale
	if x < 0 {
		return -y
	}
	return y
}
