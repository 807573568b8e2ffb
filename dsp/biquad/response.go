package biquad

import (
	"math"
	"math/cmplx"
)

// Response evaluates the complex frequency response H(e^jw) of a section's
// transfer function at freq Hz for the given sample rate.
func Response(c Coefficients, freq, sampleRate float64) complex128 {
	if sampleRate <= 0 {
		return complex(math.NaN(), 0)
	}

	w := 2 * math.Pi * freq / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := complex(1, 0) + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2

	return num / den
}

// MagnitudeDB returns the magnitude response in decibels at freq Hz.
func MagnitudeDB(c Coefficients, freq, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(Response(c, freq, sampleRate)))
}
