package spectrum

import (
	"math"
	"testing"
)

func TestNewGoertzel(t *testing.T) {
	tests := []struct {
		name       string
		frequency  float64
		sampleRate float64
		wantErr    bool
	}{
		{"valid 1kHz", 1000, 44100, false},
		{"valid DC", 0, 44100, false},
		{"valid nyquist", 22050, 44100, false},
		{"negative frequency", -1, 44100, true},
		{"above nyquist", 23000, 44100, true},
		{"zero sample rate", 1000, 0, true},
		{"NaN frequency", math.NaN(), 44100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGoertzel(tt.frequency, tt.sampleRate)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGoertzel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && g.Frequency() != tt.frequency {
				t.Errorf("Frequency() = %f, want %f", g.Frequency(), tt.frequency)
			}
		})
	}
}

// TestGoertzelToneSelectivity verifies a matching tone yields far more power
// than a distant one.
func TestGoertzelToneSelectivity(t *testing.T) {
	const (
		fs = 44100.0
		n  = 4410 // 100 cycles of 1 kHz, integer bin alignment
	)

	tone := make([]float64, n)
	for i := range tone {
		tone[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / fs)
	}

	atTone, err := AnalyzeBlock(tone, 1000, fs)
	if err != nil {
		t.Fatalf("AnalyzeBlock() error = %v", err)
	}

	offTone, err := AnalyzeBlock(tone, 5000, fs)
	if err != nil {
		t.Fatalf("AnalyzeBlock() error = %v", err)
	}

	if atTone <= 0 {
		t.Fatalf("power at tone = %f, want > 0", atTone)
	}

	if ratio := offTone / atTone; ratio > 1e-3 {
		t.Errorf("off-tone/at-tone power ratio = %g, want < 1e-3", ratio)
	}
}

// TestGoertzelMatchesDFT verifies the power equals the squared DFT
// coefficient magnitude for an aligned bin.
func TestGoertzelMatchesDFT(t *testing.T) {
	const (
		fs = 8000.0
		n  = 800
		f  = 100.0 // bin 10 of an 800-point DFT at 8 kHz
	)

	in := make([]float64, n)
	for i := range in {
		in[i] = 0.7*math.Sin(2*math.Pi*f*float64(i)/fs) + 0.2*math.Cos(2*math.Pi*250*float64(i)/fs)
	}

	got, err := AnalyzeBlock(in, f, fs)
	if err != nil {
		t.Fatalf("AnalyzeBlock() error = %v", err)
	}

	var sumRe, sumIm float64
	for i, x := range in {
		phase := 2 * math.Pi * f * float64(i) / fs
		sumRe += x * math.Cos(phase)
		sumIm -= x * math.Sin(phase)
	}

	want := sumRe*sumRe + sumIm*sumIm
	if math.Abs(got-want)/want > 1e-9 {
		t.Errorf("Goertzel power = %g, DFT power = %g", got, want)
	}
}

func TestGoertzelReset(t *testing.T) {
	g, err := NewGoertzel(440, 44100)
	if err != nil {
		t.Fatalf("NewGoertzel() error = %v", err)
	}

	g.ProcessSample(1)
	g.ProcessSample(0.5)

	if g.Magnitude() == 0 {
		t.Fatal("magnitude should be non-zero after processing")
	}

	g.Reset()

	if got := g.Magnitude(); got != 0 {
		t.Errorf("Magnitude() after Reset = %f, want 0", got)
	}
}
