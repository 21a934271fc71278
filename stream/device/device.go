// Package device provides the miniaudio-backed capture and playback
// transport. A Duplex owns one capture and one playback device and adapts
// their callback-driven byte buffers to the float64 sample frames the rest
// of the pipeline works with.
package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// ErrInvalidDevice reports a device selection index outside the enumerated
// range.
var ErrInvalidDevice = errors.New("device: invalid device index")

const bytesPerSample = 4 // f32

// Duplex is a capture+playback pair on the system's audio backend,
// implementing the stream.Transport contract: captured audio arrives on a
// registered callback in fixed-size frames, Write blocks until the playback
// side accepts the frame.
type Duplex struct {
	ctx *malgo.AllocatedContext

	sampleRate uint32
	blockSize  int
	channels   int

	captureIdx  int
	playbackIdx int

	capture  *malgo.Device
	playback *malgo.Device

	onFrame func([]float64)
	pending []float64

	out      chan []float64
	leftover []float64

	closed    chan struct{}
	closeOnce sync.Once
}

// Option configures a Duplex.
type Option func(*Duplex)

// WithCaptureDevice selects the capture device by enumeration index.
// Negative means the system default.
func WithCaptureDevice(index int) Option {
	return func(d *Duplex) { d.captureIdx = index }
}

// WithPlaybackDevice selects the playback device by enumeration index.
// Negative means the system default.
func WithPlaybackDevice(index int) Option {
	return func(d *Duplex) { d.playbackIdx = index }
}

// WithCaptureChannels sets the number of interleaved capture channels.
// Multi-channel input is averaged down to mono. Default 1.
func WithCaptureChannels(n int) Option {
	return func(d *Duplex) {
		if n >= 1 {
			d.channels = n
		}
	}
}

// WithPlaybackBacklog sets how many frames Write may queue before it
// blocks. Default 4.
func WithPlaybackBacklog(n int) Option {
	return func(d *Duplex) {
		if n >= 1 {
			d.out = make(chan []float64, n)
		}
	}
}

// NewDuplex initializes the audio context and both devices. The devices are
// created but not started; call Start to begin streaming.
func NewDuplex(sampleRate float64, blockSize int, opts ...Option) (*Duplex, error) {
	if sampleRate <= 0 || blockSize < 1 {
		return nil, fmt.Errorf("device: invalid stream parameters: rate %f, block %d", sampleRate, blockSize)
	}

	d := &Duplex{
		sampleRate:  uint32(sampleRate),
		blockSize:   blockSize,
		channels:    1,
		captureIdx:  -1,
		playbackIdx: -1,
		out:         make(chan []float64, 4),
		closed:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("device: audio context init: %w", err)
	}
	d.ctx = ctx

	captureID, err := resolveID(ctx, malgo.Capture, d.captureIdx)
	if err != nil {
		d.teardown()
		return nil, err
	}

	playbackID, err := resolveID(ctx, malgo.Playback, d.playbackIdx)
	if err != nil {
		d.teardown()
		return nil, err
	}

	if err := d.initCapture(captureID); err != nil {
		d.teardown()
		return nil, fmt.Errorf("device: capture init: %w", err)
	}

	if err := d.initPlayback(playbackID); err != nil {
		d.teardown()
		return nil, fmt.Errorf("device: playback init: %w", err)
	}

	return d, nil
}

func (d *Duplex) initCapture(id *malgo.DeviceID) error {
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = uint32(d.channels)
	cfg.SampleRate = d.sampleRate
	cfg.PeriodSizeInFrames = uint32(d.blockSize)
	cfg.Alsa.NoMMap = 1

	if id != nil {
		cfg.Capture.DeviceID = id.Pointer()
	}

	dev, err := malgo.InitDevice(d.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: d.onCaptureData,
	})
	if err != nil {
		return err
	}

	d.capture = dev

	return nil
}

func (d *Duplex) initPlayback(id *malgo.DeviceID) error {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 1
	cfg.SampleRate = d.sampleRate
	cfg.PeriodSizeInFrames = uint32(d.blockSize)
	cfg.Alsa.NoMMap = 1

	if id != nil {
		cfg.Playback.DeviceID = id.Pointer()
	}

	dev, err := malgo.InitDevice(d.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: d.onPlaybackData,
	})
	if err != nil {
		return err
	}

	d.playback = dev

	return nil
}

// Start registers the capture callback and starts both devices.
func (d *Duplex) Start(onFrame func(frame []float64)) error {
	if onFrame == nil {
		return fmt.Errorf("device: nil capture callback")
	}
	d.onFrame = onFrame

	if err := d.playback.Start(); err != nil {
		return fmt.Errorf("device: playback start: %w", err)
	}

	if err := d.capture.Start(); err != nil {
		_ = d.playback.Stop()
		return fmt.Errorf("device: capture start: %w", err)
	}

	return nil
}

// Write queues one frame for playback, blocking while the backlog is full.
// It fails once the Duplex has been closed.
func (d *Duplex) Write(frame []float64) error {
	buf := make([]float64, len(frame))
	copy(buf, frame)

	select {
	case d.out <- buf:
		return nil
	case <-d.closed:
		return fmt.Errorf("device: write on closed transport")
	}
}

// Close stops and releases both devices and the audio context. Close is
// idempotent.
func (d *Duplex) Close() error {
	d.closeOnce.Do(func() {
		close(d.closed)
		d.teardown()
	})

	return nil
}

func (d *Duplex) teardown() {
	if d.capture != nil {
		d.capture.Uninit()
		d.capture = nil
	}

	if d.playback != nil {
		d.playback.Uninit()
		d.playback = nil
	}

	if d.ctx != nil {
		_ = d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
	}
}

// onCaptureData decodes the interleaved f32 input, downmixes to mono and
// emits complete blocks to the registered callback. Runs on the device's
// audio thread.
func (d *Duplex) onCaptureData(_, input []byte, frameCount uint32) {
	if d.onFrame == nil {
		return
	}

	d.pending = appendMono(d.pending, input, int(frameCount), d.channels)

	for len(d.pending) >= d.blockSize {
		d.onFrame(d.pending[:d.blockSize])
		n := copy(d.pending, d.pending[d.blockSize:])
		d.pending = d.pending[:n]
	}
}

// onPlaybackData fills the device buffer from queued frames, carrying a
// partially consumed frame across callbacks and zero-filling on underrun.
func (d *Duplex) onPlaybackData(output, _ []byte, frameCount uint32) {
	need := int(frameCount)
	filled := 0

	for filled < need {
		if len(d.leftover) == 0 {
			select {
			case frame := <-d.out:
				d.leftover = frame
			default:
			}

			if len(d.leftover) == 0 {
				break
			}
		}

		take := len(d.leftover)
		if take > need-filled {
			take = need - filled
		}

		encodeF32(output[filled*bytesPerSample:], d.leftover[:take])
		filled += take
		d.leftover = d.leftover[take:]
	}

	for i := filled * bytesPerSample; i < need*bytesPerSample; i++ {
		output[i] = 0
	}
}

// appendMono decodes frameCount interleaved f32 frames from raw, averaging
// channels down to one sample per frame.
func appendMono(dst []float64, raw []byte, frameCount, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}

	for f := 0; f < frameCount; f++ {
		var sum float64

		for c := 0; c < channels; c++ {
			off := (f*channels + c) * bytesPerSample
			if off+bytesPerSample > len(raw) {
				return dst
			}

			bits := binary.LittleEndian.Uint32(raw[off:])
			sum += float64(math.Float32frombits(bits))
		}

		dst = append(dst, sum/float64(channels))
	}

	return dst
}

// encodeF32 writes samples as little-endian f32 into out.
func encodeF32(out []byte, samples []float64) {
	for i, x := range samples {
		binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(float32(x)))
	}
}

// resolveID maps an enumeration index to a device id. A negative index
// selects the backend default and returns nil.
func resolveID(ctx *malgo.AllocatedContext, kind malgo.DeviceType, index int) (*malgo.DeviceID, error) {
	if index < 0 {
		return nil, nil
	}

	infos, err := ctx.Devices(kind)
	if err != nil {
		return nil, fmt.Errorf("device: enumerate: %w", err)
	}

	if index >= len(infos) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrInvalidDevice, index, len(infos))
	}

	id := infos[index].ID

	return &id, nil
}
