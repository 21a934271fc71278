// Package pipeline composes the per-frame voice transformation chain:
// bandpass filtering, noise gating with decay, peak normalization,
// frequency shifting and attack crossfading.
//
// The stage order is fixed. A Processor holds all per-stream state (filter
// memory, the previous output frame, the gate state machine) and is not safe
// for concurrent use; drive it from a single consumer goroutine.
package pipeline

import (
	"fmt"

	"github.com/Tasdelenn/voice-transformer/dsp/core"
	"github.com/Tasdelenn/voice-transformer/dsp/effects"
	"github.com/Tasdelenn/voice-transformer/dsp/filter/biquad"
	"github.com/Tasdelenn/voice-transformer/dsp/filter/design"
)

// State reports which branch of the gate the last frame took.
type State int

const (
	// StateActive means the last frame exceeded the noise threshold and went
	// through the normalize/shift/fade chain.
	StateActive State = iota

	// StateDecaying means the last frame was below the threshold and the
	// output was a decayed copy of the previous frame.
	StateDecaying
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDecaying:
		return "decaying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Processor runs one audio frame at a time through the transformation chain.
type Processor struct {
	cfg core.PipelineConfig

	filter *biquad.Chain
	gate   *effects.Gate
	norm   *effects.Normalizer
	shift  *effects.Shifter
	fade   *effects.Fader

	// prev holds the previous output frame, always exactly one block long.
	// It feeds the decay branch when the gate closes.
	prev []float64
	work []float64

	state State
}

// New builds a Processor from the configuration. The configuration is
// validated first; all stage constructors run on validated values, so their
// own errors indicate an internal inconsistency and are wrapped as such.
func New(cfg core.PipelineConfig) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	coeffs, err := design.Voiceband(cfg.VoiceLowHz, cfg.VoiceHighHz, cfg.FilterOrder, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("pipeline: voiceband design: %w", err)
	}

	gate, err := effects.NewGate(cfg.NoiseThreshold, cfg.DecayFactor,
		effects.WithSilenceFloor(cfg.SilenceFloor))
	if err != nil {
		return nil, fmt.Errorf("pipeline: gate: %w", err)
	}

	norm, err := effects.NewNormalizer(cfg.Gain)
	if err != nil {
		return nil, fmt.Errorf("pipeline: normalizer: %w", err)
	}

	shift, err := effects.NewShifter(cfg.ShiftHz, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("pipeline: shifter: %w", err)
	}

	fade, err := effects.NewFader(cfg.FadeLength)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fader: %w", err)
	}

	return &Processor{
		cfg:    cfg,
		filter: biquad.NewChain(coeffs),
		gate:   gate,
		norm:   norm,
		shift:  shift,
		fade:   fade,
		prev:   make([]float64, cfg.BlockSize),
		work:   make([]float64, cfg.BlockSize),
		state:  StateActive,
	}, nil
}

// Config returns the configuration the Processor was built with.
func (p *Processor) Config() core.PipelineConfig { return p.cfg }

// State returns the gate branch taken by the most recent frame.
func (p *Processor) State() State { return p.state }

// Reset clears the filter memory and the previous-frame history.
func (p *Processor) Reset() {
	p.filter.Reset()
	core.Zero(p.prev)
	p.state = StateActive
}

// ProcessFrame transforms one captured frame and returns the output frame.
//
// The returned slice is owned by the Processor and stays valid only until
// the next ProcessFrame call. Frames shorter or longer than the configured
// block size are processed at their own length; empty frames are rejected.
// Any panic raised inside the chain is recovered and returned as an error,
// leaving the previous-frame history untouched.
func (p *Processor) ProcessFrame(frame []float64) (out []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("pipeline: frame processing panic: %v", r)
		}
	}()

	if len(frame) == 0 {
		return nil, fmt.Errorf("pipeline: empty frame")
	}

	p.work = core.EnsureLen(p.work, len(frame))
	copy(p.work, frame)

	if len(p.prev) != len(p.work) {
		grown := make([]float64, len(p.work))
		copy(grown, p.prev)
		p.prev = grown
	}

	p.filter.ProcessBlock(p.work)

	level := core.Peak(p.work)
	if p.gate.IsOpen(level) {
		p.norm.Apply(p.work, level)
		p.shift.Apply(p.work)
		p.fade.Apply(p.work)
		p.state = StateActive
	} else {
		p.gate.DecayInto(p.work, p.prev)
		p.state = StateDecaying
	}

	copy(p.prev, p.work)

	return p.work, nil
}
