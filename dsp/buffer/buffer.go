// Package buffer provides pooled sample-frame reuse for the real-time
// capture path. Audio callbacks fire at a fixed cadence and every capture
// block must be copied before it crosses a goroutine boundary; recycling
// those copies through a sync.Pool keeps the hot path allocation-free.
package buffer

import "sync"

// FramePool recycles fixed-length sample frames.
//
// All frames handed out by a pool share the same length. Frames obtained
// from Get or Clone should be returned via Put once the consumer is done
// with them; frames of a different length are silently discarded.
type FramePool struct {
	frameLen int
	pool     sync.Pool
}

// NewFramePool returns a pool producing frames of frameLen samples.
// A frameLen below 1 is treated as 1.
func NewFramePool(frameLen int) *FramePool {
	if frameLen < 1 {
		frameLen = 1
	}

	p := &FramePool{frameLen: frameLen}
	p.pool.New = func() any {
		frame := make([]float64, frameLen)
		return &frame
	}

	return p
}

// FrameLen returns the length of frames produced by this pool.
func (p *FramePool) FrameLen() int { return p.frameLen }

// Get returns a zero-filled frame of FrameLen samples.
func (p *FramePool) Get() []float64 {
	frame := *p.pool.Get().(*[]float64)
	for i := range frame {
		frame[i] = 0
	}

	return frame
}

// Clone returns a pooled frame holding a copy of src. When src is shorter
// than the frame length the tail stays zeroed; when longer, the copy is
// truncated.
func (p *FramePool) Clone(src []float64) []float64 {
	frame := p.Get()
	copy(frame, src)

	return frame
}

// Put returns a frame to the pool. The caller must not use the frame
// afterwards. Nil frames and frames with a mismatched length are dropped.
func (p *FramePool) Put(frame []float64) {
	if len(frame) != p.frameLen {
		return
	}

	p.pool.Put(&frame)
}
