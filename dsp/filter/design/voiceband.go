package design

import (
	"errors"
	"math"

	"github.com/Tasdelenn/voice-transformer/dsp/filter/biquad"
)

// ErrInvalidBand is returned when band edges do not satisfy
// 0 < low < high < sampleRate/2.
var ErrInvalidBand = errors.New("design: invalid band edges")

// ErrInvalidOrder is returned for a non-positive filter order.
var ErrInvalidOrder = errors.New("design: filter order must be positive")

// Voiceband designs a Butterworth band-pass cascade for speech, built as a
// highpass at lowHz followed by a lowpass at highHz, each of the given order.
//
// The returned sections are meant to run as a single biquad.Chain whose
// delay-line state persists across consecutive frames.
func Voiceband(lowHz, highHz float64, order int, sampleRate float64) ([]biquad.Coefficients, error) {
	if order <= 0 {
		return nil, ErrInvalidOrder
	}

	if !validBand(lowHz, highHz, sampleRate) {
		return nil, ErrInvalidBand
	}

	sections := ButterworthHP(lowHz, order, sampleRate)
	sections = append(sections, ButterworthLP(highHz, order, sampleRate)...)

	return sections, nil
}

func validBand(lowHz, highHz, sampleRate float64) bool {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return false
	}

	if math.IsNaN(lowHz) || math.IsNaN(highHz) || math.IsInf(lowHz, 0) || math.IsInf(highHz, 0) {
		return false
	}

	return lowHz > 0 && lowHz < highHz && highHz < sampleRate/2
}
