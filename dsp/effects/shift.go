package effects

import (
	"fmt"
	"math"
)

// Shifter applies a small frequency shift by modulating the frame with a
// complex exponential and keeping the real part:
//
//	out[i] = Re(in[i] * exp(j*2*pi*shift*i/sampleRate)) = in[i] * cos(2*pi*shift*i/sampleRate)
//
// A few Hz of shift is imperceptible as a pitch change but decorrelates the
// output from any leaked acoustic copy of itself, breaking sustained
// feedback loops. The modulator phase restarts at zero for each frame.
type Shifter struct {
	shiftHz    float64
	sampleRate float64
	step       float64
}

// NewShifter creates a frequency shifter. shiftHz must be non-negative and
// below the Nyquist frequency of sampleRate.
func NewShifter(shiftHz, sampleRate float64) (*Shifter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("shifter sample rate must be positive and finite: %f", sampleRate)
	}

	if shiftHz < 0 || shiftHz >= sampleRate/2 || math.IsNaN(shiftHz) {
		return nil, fmt.Errorf("shifter frequency must be in [0, nyquist): %f", shiftHz)
	}

	return &Shifter{
		shiftHz:    shiftHz,
		sampleRate: sampleRate,
		step:       2 * math.Pi * shiftHz / sampleRate,
	}, nil
}

// Apply modulates buf in-place. A zero shift leaves buf unchanged.
func (s *Shifter) Apply(buf []float64) {
	if s.step == 0 {
		return
	}

	for i := range buf {
		buf[i] *= math.Cos(s.step * float64(i))
	}
}

// ShiftHz returns the configured frequency shift.
func (s *Shifter) ShiftHz() float64 { return s.shiftHz }

// SampleRate returns the configured sample rate.
func (s *Shifter) SampleRate() float64 { return s.sampleRate }
