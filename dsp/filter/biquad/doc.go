// Package biquad implements second-order IIR filter sections and cascades.
//
// A Section carries its own delay-line state, so block-wise processing of a
// continuous stream is equivalent to processing the concatenated signal in
// one call. This continuity is what the voice pipeline relies on: resetting
// the state between frames would produce an audible discontinuity at every
// block boundary.
package biquad
