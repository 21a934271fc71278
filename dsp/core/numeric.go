package core

import "math"

const defaultEpsilon = 1e-12

// Peak returns max(|x|) over buf, or 0 for an empty buffer.
func Peak(buf []float64) float64 {
	peak := 0.0
	for _, x := range buf {
		if x < 0 {
			x = -x
		}
		if x > peak {
			peak = x
		}
	}

	return peak
}

// RMS returns the root-mean-square level of buf, or 0 for an empty buffer.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}

	sum := 0.0
	for _, x := range buf {
		sum += x * x
	}

	return math.Sqrt(sum / float64(len(buf)))
}

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(amplitude float64) float64 {
	return 20 * math.Log10(amplitude)
}
