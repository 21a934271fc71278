package design

import (
	"math"
	"testing"

	"github.com/Tasdelenn/voice-transformer/dsp/filter/biquad"
)

func TestLowpassDCGain(t *testing.T) {
	c := Lowpass(1000, defaultQ, 44100)

	if db := c.MagnitudeDB(1, 44100); math.Abs(db) > 0.01 {
		t.Errorf("lowpass gain near DC = %f dB, want ~0", db)
	}

	if db := c.MagnitudeDB(20000, 44100); db > -30 {
		t.Errorf("lowpass gain near nyquist = %f dB, want strong attenuation", db)
	}
}

func TestHighpassGain(t *testing.T) {
	c := Highpass(1000, defaultQ, 44100)

	if db := c.MagnitudeDB(20000, 44100); math.Abs(db) > 0.1 {
		t.Errorf("highpass gain near nyquist = %f dB, want ~0", db)
	}

	if db := c.MagnitudeDB(10, 44100); db > -60 {
		t.Errorf("highpass gain near DC = %f dB, want strong attenuation", db)
	}
}

func TestBandpassCenterGain(t *testing.T) {
	c := Bandpass(1000, 2, 44100)

	center := c.MagnitudeDB(1000, 44100)
	low := c.MagnitudeDB(50, 44100)
	high := c.MagnitudeDB(15000, 44100)

	if low > center-10 || high > center-10 {
		t.Errorf("bandpass skirt too shallow: center %f, low %f, high %f dB", center, low, high)
	}
}

func TestInvalidParametersYieldZeroCoefficients(t *testing.T) {
	tests := []struct {
		name       string
		freq       float64
		sampleRate float64
	}{
		{"zero freq", 0, 44100},
		{"negative freq", -10, 44100},
		{"freq at nyquist", 22050, 44100},
		{"zero sample rate", 1000, 0},
		{"NaN freq", math.NaN(), 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := Lowpass(tt.freq, defaultQ, tt.sampleRate); c != (biquad.Coefficients{}) {
				t.Errorf("Lowpass(%f, %f) = %+v, want zero value", tt.freq, tt.sampleRate, c)
			}
		})
	}
}

// TestButterworthCutoffGain verifies the -3 dB point of the cascades.
func TestButterworthCutoffGain(t *testing.T) {
	const (
		fc = 1000.0
		fs = 44100.0
	)

	for _, order := range []int{1, 2, 3, 4, 5} {
		lp := biquad.NewChain(ButterworthLP(fc, order, fs))
		hp := biquad.NewChain(ButterworthHP(fc, order, fs))

		if db := lp.MagnitudeDB(fc, fs); math.Abs(db+3.01) > 0.1 {
			t.Errorf("LP order %d gain at cutoff = %f dB, want -3.01", order, db)
		}

		if db := hp.MagnitudeDB(fc, fs); math.Abs(db+3.01) > 0.1 {
			t.Errorf("HP order %d gain at cutoff = %f dB, want -3.01", order, db)
		}
	}
}

// TestButterworthRolloff verifies the stopband slope steepens with order.
func TestButterworthRolloff(t *testing.T) {
	const (
		fc = 1000.0
		fs = 44100.0
	)

	for _, tt := range []struct {
		order  int
		minAtt float64 // dB attenuation expected one octave into the stopband
	}{
		{2, 10},
		{4, 20},
		{5, 28},
	} {
		lp := biquad.NewChain(ButterworthLP(fc, tt.order, fs))

		if db := lp.MagnitudeDB(2*fc, fs); db > -tt.minAtt {
			t.Errorf("LP order %d at 2*fc = %f dB, want below %f", tt.order, db, -tt.minAtt)
		}
	}
}

func TestButterworthInvalidOrder(t *testing.T) {
	if got := ButterworthLP(1000, 0, 44100); got != nil {
		t.Errorf("ButterworthLP(order=0) = %v, want nil", got)
	}

	if got := ButterworthHP(1000, -3, 44100); got != nil {
		t.Errorf("ButterworthHP(order=-3) = %v, want nil", got)
	}
}

func TestButterworthSectionCount(t *testing.T) {
	tests := []struct {
		order int
		want  int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
	}

	for _, tt := range tests {
		if got := len(ButterworthLP(1000, tt.order, 44100)); got != tt.want {
			t.Errorf("order %d: %d sections, want %d", tt.order, got, tt.want)
		}
	}
}
