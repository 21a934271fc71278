package effects

import (
	"fmt"
	"math"
)

// Normalizer scales an active frame to a fixed target peak, keeping the
// perceived loudness stable regardless of input level while staying below
// clipping.
type Normalizer struct {
	gain float64
}

// NewNormalizer creates a peak normalizer with the given target peak.
// gain must be in (0, 1].
func NewNormalizer(gain float64) (*Normalizer, error) {
	if gain <= 0 || gain > 1 || math.IsNaN(gain) {
		return nil, fmt.Errorf("normalizer gain must be in (0, 1]: %f", gain)
	}

	return &Normalizer{gain: gain}, nil
}

// Apply scales buf in-place so its peak becomes the target gain, given the
// precomputed peak level of buf. A non-positive level leaves buf unchanged.
func (n *Normalizer) Apply(buf []float64, level float64) {
	if level <= 0 {
		return
	}

	scale := n.gain / level
	for i, x := range buf {
		buf[i] = x * scale
	}
}

// Gain returns the target peak.
func (n *Normalizer) Gain() float64 { return n.gain }
