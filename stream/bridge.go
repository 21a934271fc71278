package stream

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Tasdelenn/voice-transformer/dsp/core"
	"github.com/Tasdelenn/voice-transformer/dsp/spectrum"
)

// Processor transforms one captured frame into one output frame.
// dsp/pipeline.Processor satisfies this.
type Processor interface {
	ProcessFrame(frame []float64) ([]float64, error)
}

// Transport is the audio device boundary: Start begins delivering captured
// frames to onFrame from the device's own goroutine, Write plays one frame
// back and blocks until the device accepts it.
type Transport interface {
	Start(onFrame func(frame []float64)) error
	Write(frame []float64) error
	Close() error
}

// Bridge connects a Transport to a Processor through a Queue. The capture
// callback only copies and enqueues; all processing and playback happens on
// the consumer goroutine, so a slow frame never blocks the device.
type Bridge struct {
	transport Transport
	proc      Processor
	cfg       core.PipelineConfig
	queue     *Queue
	log       zerolog.Logger

	probeEvery int
	silence    []float64
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the logger for frame diagnostics. The default discards
// everything.
func WithLogger(log zerolog.Logger) BridgeOption {
	return func(b *Bridge) { b.log = log }
}

// WithQueueDepth bounds the frame queue, dropping the oldest pending frame
// on overflow. Unbounded by default.
func WithQueueDepth(n int) BridgeOption {
	return func(b *Bridge) {
		b.queue = NewQueue(b.cfg.BlockSize, WithMaxDepth(n))
	}
}

// WithSpectralProbe logs the output peak level and dominant frequency every
// n processed frames. Disabled by default.
func WithSpectralProbe(n int) BridgeOption {
	return func(b *Bridge) {
		if n >= 1 {
			b.probeEvery = n
		}
	}
}

// NewBridge wires transport and processor together. cfg supplies the block
// size for the queue and silence frame and the sample rate for the probe.
func NewBridge(transport Transport, proc Processor, cfg core.PipelineConfig, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		transport: transport,
		proc:      proc,
		cfg:       cfg,
		log:       zerolog.Nop(),
		silence:   make([]float64, cfg.BlockSize),
	}
	b.queue = NewQueue(cfg.BlockSize)

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Dropped returns the number of capture frames discarded by the queue bound.
func (b *Bridge) Dropped() uint64 { return b.queue.Dropped() }

// Run starts the transport and processes frames until ctx is cancelled or a
// playback write fails. Cancellation is a clean shutdown and returns nil;
// a write failure is fatal and returned. Frames that fail processing are
// logged and replaced with silence so the output stream never stalls.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.transport.Start(b.onCapture); err != nil {
		return fmt.Errorf("bridge: transport start: %w", err)
	}
	defer b.transport.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		b.queue.Close()

		return nil
	})

	g.Go(b.consume)

	return g.Wait()
}

func (b *Bridge) onCapture(frame []float64) {
	b.queue.Push(frame)
}

func (b *Bridge) consume() error {
	processed := 0

	for {
		frame, ok := b.queue.Pop()
		if !ok {
			b.log.Info().Int("frames", processed).Msg("stream stopped")

			return nil
		}

		out, err := b.proc.ProcessFrame(frame)
		if err != nil {
			b.log.Warn().Err(err).Msg("frame processing failed, substituting silence")
			out = b.silence
		}

		werr := b.transport.Write(out)
		b.queue.Recycle(frame)

		if werr != nil {
			return fmt.Errorf("bridge: playback write: %w", werr)
		}

		processed++
		if b.probeEvery > 0 && processed%b.probeEvery == 0 {
			b.probe(processed, out)
		}
	}
}

func (b *Bridge) probe(processed int, out []float64) {
	ev := b.log.Info().
		Int("frames", processed).
		Float64("peak", core.Peak(out)).
		Uint64("dropped", b.queue.Dropped())

	if freq, err := spectrum.PeakFrequency(out, b.cfg.SampleRate); err == nil {
		ev = ev.Float64("dominant_hz", freq)
	}

	ev.Msg("probe")
}
