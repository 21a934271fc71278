// Package core holds the shared pipeline configuration and small numeric
// helpers used across the DSP packages. The configuration is immutable once
// built: construct it with ApplyPipelineOptions at startup and pass it by
// value to the components that need it.
package core

import (
	"fmt"
	"math"
)

// PipelineConfig defines the full parameter set of the voice pipeline.
type PipelineConfig struct {
	// Stream format.
	SampleRate float64
	BlockSize  int

	// Gate and loudness.
	NoiseThreshold float64 // peak level above which the gate opens
	Gain           float64 // target peak after normalization
	DecayFactor    float64 // residual decay applied while the gate is closed
	SilenceFloor   float64 // peak below which decayed output snaps to zero

	// Feedback suppression and transition smoothing.
	ShiftHz    float64 // frequency shift applied on the active path
	FadeLength int     // samples of linear fade-in on the active path

	// Voice band.
	VoiceLowHz  float64
	VoiceHighHz float64
	FilterOrder int
}

// PipelineOption mutates a PipelineConfig during construction.
type PipelineOption func(*PipelineConfig)

// DefaultPipelineConfig returns the stock voice-transformer parameters.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SampleRate:     44100,
		BlockSize:      1024,
		NoiseThreshold: 0.02,
		Gain:           0.8,
		DecayFactor:    0.1,
		SilenceFloor:   0.001,
		ShiftHz:        5,
		FadeLength:     128,
		VoiceLowHz:     85,
		VoiceHighHz:    3400,
		FilterOrder:    5,
	}
}

// WithSampleRate sets the stream sample rate in Hz.
func WithSampleRate(sampleRate float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the number of samples per frame.
func WithBlockSize(blockSize int) PipelineOption {
	return func(cfg *PipelineConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithNoiseThreshold sets the gate-opening peak level.
func WithNoiseThreshold(threshold float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if threshold > 0 {
			cfg.NoiseThreshold = threshold
		}
	}
}

// WithGain sets the normalization target peak.
func WithGain(gain float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if gain > 0 {
			cfg.Gain = gain
		}
	}
}

// WithDecayFactor sets the per-frame decay applied while the gate is closed.
func WithDecayFactor(decay float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if decay >= 0 && decay < 1 {
			cfg.DecayFactor = decay
		}
	}
}

// WithShift sets the feedback-breaking frequency shift in Hz.
func WithShift(shiftHz float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if shiftHz >= 0 {
			cfg.ShiftHz = shiftHz
		}
	}
}

// WithFadeLength sets the active-path fade-in length in samples.
func WithFadeLength(samples int) PipelineOption {
	return func(cfg *PipelineConfig) {
		if samples > 0 {
			cfg.FadeLength = samples
		}
	}
}

// WithVoiceBand sets the bandpass edges in Hz.
func WithVoiceBand(lowHz, highHz float64) PipelineOption {
	return func(cfg *PipelineConfig) {
		if lowHz > 0 && highHz > lowHz {
			cfg.VoiceLowHz = lowHz
			cfg.VoiceHighHz = highHz
		}
	}
}

// WithFilterOrder sets the Butterworth order of the voice-band filter.
func WithFilterOrder(order int) PipelineOption {
	return func(cfg *PipelineConfig) {
		if order > 0 {
			cfg.FilterOrder = order
		}
	}
}

// ApplyPipelineOptions applies zero or more options to the default config.
func ApplyPipelineOptions(opts ...PipelineOption) PipelineConfig {
	cfg := DefaultPipelineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Validate reports the first configuration error, or nil.
func (cfg PipelineConfig) Validate() error {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return fmt.Errorf("config: sample rate must be positive and finite: %f", cfg.SampleRate)
	}

	if cfg.BlockSize <= 0 {
		return fmt.Errorf("config: block size must be positive: %d", cfg.BlockSize)
	}

	if cfg.NoiseThreshold <= 0 || math.IsNaN(cfg.NoiseThreshold) {
		return fmt.Errorf("config: noise threshold must be positive: %f", cfg.NoiseThreshold)
	}

	if cfg.Gain <= 0 || cfg.Gain > 1 {
		return fmt.Errorf("config: gain must be in (0, 1]: %f", cfg.Gain)
	}

	if cfg.DecayFactor < 0 || cfg.DecayFactor >= 1 {
		return fmt.Errorf("config: decay factor must be in [0, 1): %f", cfg.DecayFactor)
	}

	if cfg.SilenceFloor <= 0 {
		return fmt.Errorf("config: silence floor must be positive: %f", cfg.SilenceFloor)
	}

	if cfg.ShiftHz < 0 || cfg.ShiftHz >= cfg.SampleRate/2 {
		return fmt.Errorf("config: shift must be in [0, nyquist): %f", cfg.ShiftHz)
	}

	if cfg.FadeLength <= 0 {
		return fmt.Errorf("config: fade length must be positive: %d", cfg.FadeLength)
	}

	if cfg.VoiceLowHz <= 0 || cfg.VoiceLowHz >= cfg.VoiceHighHz || cfg.VoiceHighHz >= cfg.SampleRate/2 {
		return fmt.Errorf("config: voice band must satisfy 0 < low < high < nyquist: [%f, %f]",
			cfg.VoiceLowHz, cfg.VoiceHighHz)
	}

	if cfg.FilterOrder <= 0 {
		return fmt.Errorf("config: filter order must be positive: %d", cfg.FilterOrder)
	}

	return nil
}
