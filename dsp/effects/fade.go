package effects

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Fader applies a linear fade-in ramp to the start of a frame, smoothing the
// transition when the pipeline moves from a decayed or silent frame into a
// newly active one. Without it the gate re-opening produces an audible click.
type Fader struct {
	ramp []float64
}

// NewFader creates a fader with the given ramp length in samples.
// The ramp runs linearly from 0 to 1 inclusive.
func NewFader(length int) (*Fader, error) {
	if length <= 0 {
		return nil, fmt.Errorf("fade length must be positive: %d", length)
	}

	ramp := make([]float64, length)
	if length == 1 {
		ramp[0] = 0
	} else {
		for i := range ramp {
			ramp[i] = float64(i) / float64(length-1)
		}
	}

	return &Fader{ramp: ramp}, nil
}

// Apply multiplies the first min(len(ramp), len(buf)) samples of buf by the
// ramp in-place and leaves the rest unchanged.
func (f *Fader) Apply(buf []float64) {
	n := len(f.ramp)
	if len(buf) < n {
		n = len(buf)
	}

	if n == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf[:n], f.ramp[:n])
}

// Length returns the ramp length in samples.
func (f *Fader) Length() int { return len(f.ramp) }
