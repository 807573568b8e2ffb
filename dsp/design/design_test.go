package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/soundsculpt/masterline/dsp/biquad"
)

const sampleRate = 48000.0

func TestPeakGainAtCenter(t *testing.T) {
	tests := []struct {
		freq   float64
		gainDB float64
		q      float64
	}{
		{2800, -5, 4},
		{4500, -5.5, 5},
		{6200, -4, 6},
		{1000, 6, 1},
	}

	for _, tt := range tests {
		c := Peak(tt.freq, tt.gainDB, tt.q, sampleRate)
		got := biquad.MagnitudeDB(c, tt.freq, sampleRate)
		if math.Abs(got-tt.gainDB) > 0.05 {
			t.Fatalf("Peak(%g Hz, %g dB, Q=%g): center gain = %g dB",
				tt.freq, tt.gainDB, tt.q, got)
		}
	}
}

func TestHighpassAttenuatesRumble(t *testing.T) {
	c := Highpass(85, 0.707, sampleRate)

	if got := biquad.MagnitudeDB(c, 20, sampleRate); got > -20 {
		t.Fatalf("highpass at 20 Hz = %g dB, want < -20 dB", got)
	}
	if got := biquad.MagnitudeDB(c, 1000, sampleRate); math.Abs(got) > 0.1 {
		t.Fatalf("highpass passband at 1 kHz = %g dB, want ~0 dB", got)
	}
}

func TestShelfGains(t *testing.T) {
	low := LowShelf(180, 1.5, 0, sampleRate)
	if got := biquad.MagnitudeDB(low, 20, sampleRate); math.Abs(got-1.5) > 0.2 {
		t.Fatalf("low shelf below corner = %g dB, want ~1.5 dB", got)
	}
	if got := biquad.MagnitudeDB(low, 10000, sampleRate); math.Abs(got) > 0.1 {
		t.Fatalf("low shelf far above corner = %g dB, want ~0 dB", got)
	}

	high := HighShelf(11000, 1.5, 0, sampleRate)
	if got := biquad.MagnitudeDB(high, 22000, sampleRate); math.Abs(got-1.5) > 0.2 {
		t.Fatalf("high shelf above corner = %g dB, want ~1.5 dB", got)
	}
	if got := biquad.MagnitudeDB(high, 100, sampleRate); math.Abs(got) > 0.1 {
		t.Fatalf("high shelf far below corner = %g dB, want ~0 dB", got)
	}
}

func TestAllpassUnityMagnitude(t *testing.T) {
	c := Allpass(1000, 0.707, sampleRate)

	for _, f := range []float64{50, 500, 1000, 5000, 20000} {
		mag := cmplx.Abs(biquad.Response(c, f, sampleRate))
		if math.Abs(mag-1) > 1e-9 {
			t.Fatalf("allpass |H| at %g Hz = %g, want 1", f, mag)
		}
	}
}

func TestNotchRejectsCenter(t *testing.T) {
	c := Notch(2800, 4, sampleRate)
	if got := biquad.MagnitudeDB(c, 2800, sampleRate); got > -40 {
		t.Fatalf("notch at center = %g dB, want < -40 dB", got)
	}
}

func TestLowpassPassesDC(t *testing.T) {
	c := Lowpass(1000, 0.707, sampleRate)
	if got := cmplx.Abs(biquad.Response(c, 0.01, sampleRate)); math.Abs(got-1) > 1e-3 {
		t.Fatalf("lowpass DC gain = %g, want 1", got)
	}
}

func TestDegenerateParametersFallBackToIdentity(t *testing.T) {
	tests := []biquad.Coefficients{
		Highpass(-10, 0.707, sampleRate),
		Highpass(30000, 0.707, sampleRate),
		Peak(1000, 3, 1, 0),
		LowShelf(math.NaN(), 1, 1, sampleRate),
	}

	for i, c := range tests {
		if c != biquad.Identity() {
			t.Fatalf("case %d: got %+v, want identity", i, c)
		}
	}
}
