// Package stream moves captured audio frames from a device callback to the
// processing loop and back out to playback. The capture side must never
// block, so frames cross the goroutine boundary through a Queue that copies
// on push; the Bridge owns the consumer loop.
package stream

import (
	"sync"

	"github.com/Tasdelenn/voice-transformer/dsp/buffer"
	"github.com/Tasdelenn/voice-transformer/dsp/core"
)

// Queue is a FIFO of sample frames for one producer and one consumer.
//
// Push copies the frame, so the producer may reuse its buffer immediately.
// Pop blocks until a frame arrives or the queue is closed. Closing discards
// any pending frames: for live audio, frames captured before shutdown have
// no value once playback stops.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	frames [][]float64
	closed bool

	maxDepth int
	dropped  uint64

	pool *buffer.FramePool
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithMaxDepth bounds the queue to n pending frames. When a push would
// exceed the bound, the oldest pending frame is dropped and counted; the
// newest audio always gets through. n below 1 leaves the queue unbounded.
func WithMaxDepth(n int) QueueOption {
	return func(q *Queue) {
		if n >= 1 {
			q.maxDepth = n
		}
	}
}

// NewQueue returns an open queue for frames of frameLen samples. Frames of
// other lengths are still accepted but bypass the internal frame pool.
func NewQueue(frameLen int, opts ...QueueOption) *Queue {
	q := &Queue{pool: buffer.NewFramePool(frameLen)}
	q.cond = sync.NewCond(&q.mu)

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Push enqueues a copy of frame. Pushing to a closed queue is a no-op.
func (q *Queue) Push(frame []float64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	if q.maxDepth > 0 && len(q.frames) >= q.maxDepth {
		q.pool.Put(q.frames[0])
		q.frames = q.frames[1:]
		q.dropped++
	}

	q.frames = append(q.frames, q.clone(frame))
	q.cond.Signal()
}

// Pop removes and returns the oldest frame, blocking until one is available.
// It returns ok=false once the queue has been closed, regardless of frames
// that were still pending at close time.
func (q *Queue) Pop() (frame []float64, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.frames) == 0 && !q.closed {
		q.cond.Wait()
	}

	if q.closed {
		return nil, false
	}

	frame = q.frames[0]
	q.frames[0] = nil
	q.frames = q.frames[1:]

	return frame, true
}

// Recycle returns a popped frame to the internal pool. Optional; frames of
// a non-pool length are dropped.
func (q *Queue) Recycle(frame []float64) {
	q.pool.Put(frame)
}

// Len returns the number of pending frames.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.frames)
}

// Dropped returns the number of frames discarded by the depth bound.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.dropped
}

// Close marks the queue closed, discards pending frames and wakes any
// blocked Pop. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	for _, f := range q.frames {
		q.pool.Put(f)
	}
	q.frames = nil

	q.cond.Broadcast()
}

func (q *Queue) clone(frame []float64) []float64 {
	if len(frame) == q.pool.FrameLen() {
		return q.pool.Clone(frame)
	}

	return core.CloneFrame(frame)
}
