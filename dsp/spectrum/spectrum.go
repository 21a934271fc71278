package spectrum

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Magnitude returns |X[k]| for each complex spectrum bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re := make([]float64, len(in))
	im := make([]float64, len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)

	return out
}

// PeakFrequency estimates the dominant frequency of a real signal by taking
// the FFT over the zero-padded block and returning the frequency of the
// largest-magnitude bin below Nyquist. The DC bin is excluded.
//
// The resolution is sampleRate/fftSize, so short blocks give coarse
// estimates; 1024 samples at 44.1 kHz resolve to about 43 Hz.
func PeakFrequency(samples []float64, sampleRate float64) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("spectrum: empty input")
	}

	if sampleRate <= 0 {
		return 0, fmt.Errorf("spectrum: sample rate must be > 0: %f", sampleRate)
	}

	fftSize := nextPowerOf2(len(samples))

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, x := range samples {
		in[i] = complex(x, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return 0, fmt.Errorf("spectrum: forward FFT failed: %w", err)
	}

	mags := Magnitude(out[:fftSize/2+1])

	peakBin := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[peakBin] {
			peakBin = i
		}
	}

	return float64(peakBin) * sampleRate / float64(fftSize), nil
}

func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}
