// Package measure computes level and spectral statistics over rendered
// audio, used for post-render reporting.
package measure

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/soundsculpt/masterline/audio"
	"github.com/soundsculpt/masterline/dsp/biquad"
	"github.com/soundsculpt/masterline/dsp/design"
)

const (
	// fftSize is the analysis window for the spectral statistics. At
	// 48 kHz this gives ~2.9 Hz bin resolution.
	fftSize = 16384

	// rolloffFraction defines the spectral rolloff point: the frequency
	// below which this share of the total magnitude lives.
	rolloffFraction = 0.85

	// K-weighting pre-filter corner frequencies (head-model shelf and
	// low-cut), matching the broadcast loudness convention.
	kShelfFreqHz   = 1681.0
	kShelfGainDB   = 4.0
	kHighpassHz    = 38.0
	kHighpassQ     = 0.5
	loudnessOffset = -0.691
)

// Report summarizes one buffer.
type Report struct {
	PeakDB     float64 // sample peak, dBFS
	RMSDB      float64 // root mean square, dBFS
	CrestDB    float64 // peak minus RMS
	LoudnessLU float64 // K-weighted program loudness, LUFS-style
	CentroidHz float64 // spectral centroid of the mono mix
	RolloffHz  float64 // 85% spectral rolloff of the mono mix
}

// Analyze computes a Report over the whole buffer. The spectral
// statistics use a single Hann-windowed FFT over the first analysis
// window of the mono mix; level statistics cover every sample.
func Analyze(buf *audio.Buffer) (Report, error) {
	if err := buf.Validate(); err != nil {
		return Report{}, fmt.Errorf("measure: %w", err)
	}

	var r Report

	peak := 0.0
	sumSquares := 0.0
	total := 0
	for _, ch := range buf.Data {
		if p := vecmath.MaxAbs(ch); p > peak {
			peak = p
		}
		sumSquares += vecmath.DotProduct(ch, ch)
		total += len(ch)
	}

	r.PeakDB = toDB(peak)
	rms := math.Sqrt(sumSquares / float64(total))
	r.RMSDB = toDB(rms)
	r.CrestDB = r.PeakDB - r.RMSDB

	mono := buf.MixMono()
	r.LoudnessLU = loudness(mono, float64(buf.SampleRate))

	centroid, rolloff, err := spectralStats(mono, float64(buf.SampleRate))
	if err != nil {
		return Report{}, fmt.Errorf("measure: %w", err)
	}
	r.CentroidHz = centroid
	r.RolloffHz = rolloff

	return r, nil
}

// loudness computes a K-weighted mean-square loudness over the mono mix.
func loudness(mono []float64, sampleRate float64) float64 {
	weighted := make([]float64, len(mono))
	copy(weighted, mono)

	pre := biquad.NewChain([]biquad.Coefficients{
		design.HighShelf(kShelfFreqHz, kShelfGainDB, 0, sampleRate),
		design.Highpass(kHighpassHz, kHighpassQ, sampleRate),
	})
	pre.ProcessBlock(weighted)

	ms := vecmath.DotProduct(weighted, weighted) / float64(len(weighted))
	if ms <= 0 {
		return math.Inf(-1)
	}
	return loudnessOffset + 10*math.Log10(ms)
}

// spectralStats computes centroid and rolloff from one Hann-windowed FFT.
func spectralStats(mono []float64, sampleRate float64) (centroid, rolloff float64, err error) {
	n := fftSize
	if len(mono) < n {
		n = nextPowerOfTwoBelow(len(mono))
		if n < 2 {
			return 0, 0, nil
		}
	}

	in := make([]complex128, n)
	for i := 0; i < n; i++ {
		// Hann window
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		in[i] = complex(mono[i]*w, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return 0, 0, err
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return 0, 0, err
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	totalMag := vecmath.Sum(mag)
	if totalMag == 0 {
		return 0, 0, nil
	}

	binHz := sampleRate / float64(n)

	var weighted float64
	for i, m := range mag {
		weighted += float64(i) * binHz * m
	}
	centroid = weighted / totalMag

	target := rolloffFraction * totalMag
	var acc float64
	for i, m := range mag {
		acc += m
		if acc >= target {
			rolloff = float64(i) * binHz
			break
		}
	}

	return centroid, rolloff, nil
}

func toDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

func nextPowerOfTwoBelow(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}
