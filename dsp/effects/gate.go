package effects

import (
	"fmt"
	"math"

	"github.com/Tasdelenn/voice-transformer/dsp/core"
)

const defaultSilenceFloor = 0.001

// Gate implements a peak-threshold noise gate with exponential residual
// decay. While the gate is closed the previous output frame is scaled down
// by the decay factor each frame, producing a fade-to-silence tail instead
// of an abrupt cut. Once the decayed peak falls below the silence floor the
// output snaps to exact zero, so a quiet tail cannot drift forever.
type Gate struct {
	threshold   float64
	decayFactor float64
	floor       float64
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithSilenceFloor overrides the peak level below which decayed output is
// forced to zero. Default is 0.001.
func WithSilenceFloor(floor float64) GateOption {
	return func(g *Gate) {
		if floor > 0 {
			g.floor = floor
		}
	}
}

// NewGate creates a noise gate.
//
// threshold is the peak level above which the gate opens; it must be
// positive and finite. decayFactor scales the previous output while the
// gate is closed and must be in [0, 1).
func NewGate(threshold, decayFactor float64, opts ...GateOption) (*Gate, error) {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("gate threshold must be positive and finite: %f", threshold)
	}

	if decayFactor < 0 || decayFactor >= 1 || math.IsNaN(decayFactor) {
		return nil, fmt.Errorf("gate decay factor must be in [0, 1): %f", decayFactor)
	}

	g := &Gate{
		threshold:   threshold,
		decayFactor: decayFactor,
		floor:       defaultSilenceFloor,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g, nil
}

// IsOpen reports whether a frame with the given peak level carries signal.
func (g *Gate) IsOpen(level float64) bool {
	return level > g.threshold
}

// DecayInto writes the closed-gate output for the current frame into dst:
// the previous output scaled by the decay factor, or exact silence once the
// scaled peak is below the floor. dst and prev must have the same length and
// may alias.
func (g *Gate) DecayInto(dst, prev []float64) {
	for i := range dst {
		dst[i] = prev[i] * g.decayFactor
	}

	if core.Peak(dst) < g.floor {
		core.Zero(dst)
	}
}

// Threshold returns the gate-opening peak level.
func (g *Gate) Threshold() float64 { return g.threshold }

// DecayFactor returns the closed-gate residual decay.
func (g *Gate) DecayFactor() float64 { return g.decayFactor }

// SilenceFloor returns the snap-to-zero peak level.
func (g *Gate) SilenceFloor() float64 { return g.floor }
