package effects

import (
	"math"
	"testing"

	"github.com/Tasdelenn/voice-transformer/dsp/core"
)

func TestNewShifter(t *testing.T) {
	tests := []struct {
		name       string
		shiftHz    float64
		sampleRate float64
		wantErr    bool
	}{
		{"valid 5Hz", 5, 44100, false},
		{"valid zero shift", 0, 44100, false},
		{"negative shift", -5, 44100, true},
		{"shift at nyquist", 22050, 44100, true},
		{"NaN shift", math.NaN(), 44100, true},
		{"zero sample rate", 5, 0, true},
		{"NaN sample rate", 5, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShifter(tt.shiftHz, tt.sampleRate)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewShifter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && (s.ShiftHz() != tt.shiftHz || s.SampleRate() != tt.sampleRate) {
				t.Errorf("accessors = %f/%f, want %f/%f",
					s.ShiftHz(), s.SampleRate(), tt.shiftHz, tt.sampleRate)
			}
		})
	}
}

// TestShifterModulation verifies the exact sample-wise modulation:
// out[i] = in[i] * cos(2*pi*shift*i/fs).
func TestShifterModulation(t *testing.T) {
	const (
		shift = 5.0
		fs    = 44100.0
	)

	s, err := NewShifter(shift, fs)
	if err != nil {
		t.Fatalf("NewShifter() error = %v", err)
	}

	in := make([]float64, 1024)
	for i := range in {
		in[i] = 0.5 * math.Sin(2*math.Pi*1000*float64(i)/fs)
	}

	out := append([]float64(nil), in...)
	s.Apply(out)

	step := 2 * math.Pi * shift / fs
	for i := range out {
		want := in[i] * math.Cos(step*float64(i))
		if !core.NearlyEqual(out[i], want, 1e-12) {
			t.Fatalf("out[%d] = %g, want %g", i, out[i], want)
		}
	}
}

// TestShifterEnvelopePreserved verifies the modulation only attenuates:
// |out[i]| <= |in[i]| for every sample, with the first samples untouched
// where the slow modulator is still near unity.
func TestShifterEnvelopePreserved(t *testing.T) {
	s, _ := NewShifter(5, 44100)

	in := make([]float64, 1024)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}

	out := append([]float64(nil), in...)
	s.Apply(out)

	for i := range out {
		if math.Abs(out[i]) > math.Abs(in[i])+1e-12 {
			t.Fatalf("sample %d grew: |%g| > |%g|", i, out[i], in[i])
		}
	}

	// cos(2*pi*5*i/44100) stays above 0.999 for the first ~300 samples.
	for i := 0; i < 300; i++ {
		if !core.NearlyEqual(out[i], in[i], 1e-2) {
			t.Fatalf("early sample %d changed too much: %g vs %g", i, out[i], in[i])
		}
	}
}

func TestShifterZeroShiftIsIdentity(t *testing.T) {
	s, err := NewShifter(0, 44100)
	if err != nil {
		t.Fatalf("NewShifter() error = %v", err)
	}

	buf := []float64{0.1, -0.2, 0.3, -0.4}
	want := append([]float64(nil), buf...)

	s.Apply(buf)

	for i := range buf {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %f, want %f", i, buf[i], want[i])
		}
	}
}
