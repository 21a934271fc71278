// Package effects implements the per-frame stages of the voice pipeline:
// the noise gate with residual decay, peak normalization, the feedback-
// breaking frequency shift, and the crossfade ramp.
//
// All stages operate on mono float64 blocks. None of them keeps cross-frame
// signal history; the pipeline owns the previous-output frame and passes it
// in where needed. The stages are single-threaded and not safe for
// concurrent use.
package effects
