// Package resample converts audio between sample rates using windowed-sinc
// interpolation. Conversion is offline: the whole channel is available up
// front and the output length is fixed by the rate ratio.
package resample

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate is returned for non-positive sample rates.
var ErrInvalidRate = errors.New("resample: sample rate must be positive")

const (
	// baseHalfTaps is the one-sided kernel length at unity ratio. When
	// downsampling the kernel widens by the inverse scale to keep the
	// transition band below the output Nyquist.
	baseHalfTaps = 16

	// cutoffFactor places the filter cutoff at 90% of the narrower
	// Nyquist, leaving headroom for the finite transition band.
	cutoffFactor = 0.45

	// kaiserBeta trades stopband rejection against transition width.
	kaiserBeta = 8.0
)

// OutputLength returns the number of output frames produced when
// converting inLen frames from inRate to outRate. The duration is rounded
// up, never truncated.
func OutputLength(inLen, inRate, outRate int) int {
	if inLen <= 0 {
		return 0
	}
	return (inLen*outRate + inRate - 1) / inRate
}

// Resample converts one channel of samples from inRate to outRate.
// When the rates match, a copy of the input is returned.
func Resample(in []float64, inRate, outRate int) ([]float64, error) {
	if inRate <= 0 {
		return nil, fmt.Errorf("%w: in %d", ErrInvalidRate, inRate)
	}
	if outRate <= 0 {
		return nil, fmt.Errorf("%w: out %d", ErrInvalidRate, outRate)
	}
	if len(in) == 0 {
		return []float64{}, nil
	}
	if inRate == outRate {
		out := make([]float64, len(in))
		copy(out, in)
		return out, nil
	}

	// scale < 1 means downsampling; the kernel stretches accordingly.
	scale := float64(outRate) / float64(inRate)
	fc := cutoffFactor
	halfTaps := baseHalfTaps
	if scale < 1 {
		fc *= scale
		halfTaps = int(math.Ceil(float64(baseHalfTaps) / scale))
	}

	outLen := OutputLength(len(in), inRate, outRate)
	out := make([]float64, outLen)

	step := float64(inRate) / float64(outRate)
	for i := range out {
		center := float64(i) * step
		base := int(math.Floor(center))

		var acc, norm float64
		for k := base - halfTaps + 1; k <= base+halfTaps; k++ {
			if k < 0 || k >= len(in) {
				continue
			}
			x := center - float64(k)
			w := sinc(2*fc*x) * kaiser(x/float64(halfTaps))
			acc += in[k] * w
			norm += w
		}
		if norm != 0 {
			out[i] = acc / norm
		}
	}

	return out, nil
}

// sinc evaluates the normalized sinc function sin(pi*x)/(pi*x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// kaiser evaluates the Kaiser window at t in [-1, 1]; zero outside.
func kaiser(t float64) float64 {
	if t < -1 || t > 1 {
		return 0
	}
	return besselI0(kaiserBeta*math.Sqrt(1-t*t)) / besselI0(kaiserBeta)
}

// besselI0 computes the zeroth-order modified Bessel function of the
// first kind via its power series, converging quickly for small arguments.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	half := x / 2
	for k := 1; k < 32; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < sum*1e-16 {
			break
		}
	}
	return sum
}
