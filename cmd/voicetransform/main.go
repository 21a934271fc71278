// Command voicetransform runs the live voice transformation loop: it
// captures microphone audio, pushes each block through the bandpass, noise
// gate, normalize, frequency shift and crossfade stages, and plays the
// result back.
//
// Usage:
//
//	voicetransform [flags]
//
// Stop with Ctrl-C; shutdown is clean and pending frames are discarded.
//
// Examples:
//
//	voicetransform
//	voicetransform -list-devices
//	voicetransform -device 2 -shift 8
//	voicetransform -threshold 0.05 -gain 0.6 -probe 100
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Tasdelenn/voice-transformer/dsp/core"
	"github.com/Tasdelenn/voice-transformer/dsp/pipeline"
	"github.com/Tasdelenn/voice-transformer/stream"
	"github.com/Tasdelenn/voice-transformer/stream/device"
)

func main() {
	listDevices := flag.Bool("list-devices", false, "list audio devices and exit")
	captureIdx := flag.Int("device", -1, "capture device index (-1 for system default)")
	playbackIdx := flag.Int("output", -1, "playback device index (-1 for system default)")
	sampleRate := flag.Float64("sample-rate", 44100, "sample rate in Hz")
	blockSize := flag.Int("block", 1024, "frame size in samples")
	threshold := flag.Float64("threshold", 0.02, "noise gate peak threshold")
	gain := flag.Float64("gain", 0.8, "normalization target peak (0..1]")
	shift := flag.Float64("shift", 5, "frequency shift in Hz")
	probe := flag.Int("probe", 0, "log level and dominant frequency every N frames (0 disables)")
	queueDepth := flag.Int("queue", 0, "max pending capture frames, dropping oldest (0 for unbounded)")
	quiet := flag.Bool("quiet", false, "only log warnings and errors")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: voicetransform [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Captures, transforms and plays back voice audio in real time.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  voicetransform -list-devices\n")
		fmt.Fprintf(os.Stderr, "  voicetransform -device 2 -shift 8\n")
		fmt.Fprintf(os.Stderr, "  voicetransform -threshold 0.05 -probe 100\n")
	}
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *quiet {
		log = log.Level(zerolog.WarnLevel)
	}

	if *listDevices {
		if err := device.Fprint(os.Stdout); err != nil {
			log.Error().Err(err).Msg("device enumeration failed")
			os.Exit(1)
		}

		return
	}

	cfg := core.ApplyPipelineOptions(
		core.WithSampleRate(*sampleRate),
		core.WithBlockSize(*blockSize),
		core.WithNoiseThreshold(*threshold),
		core.WithGain(*gain),
		core.WithShift(*shift),
	)

	proc, err := pipeline.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	transport, err := device.NewDuplex(cfg.SampleRate, cfg.BlockSize,
		device.WithCaptureDevice(*captureIdx),
		device.WithPlaybackDevice(*playbackIdx),
	)
	if err != nil {
		if errors.Is(err, device.ErrInvalidDevice) {
			log.Error().Err(err).Msg("no such device; use -list-devices")
		} else {
			log.Error().Err(err).Msg("audio device setup failed")
		}

		os.Exit(1)
	}

	opts := []stream.BridgeOption{stream.WithLogger(log)}
	if *probe > 0 {
		opts = append(opts, stream.WithSpectralProbe(*probe))
	}

	if *queueDepth > 0 {
		opts = append(opts, stream.WithQueueDepth(*queueDepth))
	}

	bridge := stream.NewBridge(transport, proc, cfg, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Float64("sample_rate", cfg.SampleRate).
		Int("block", cfg.BlockSize).
		Float64("shift_hz", cfg.ShiftHz).
		Float64("threshold", cfg.NoiseThreshold).
		Msg("streaming; press Ctrl-C to stop")

	if err := bridge.Run(ctx); err != nil {
		log.Error().Err(err).Msg("stream failed")
		os.Exit(1)
	}

	log.Info().Uint64("dropped_frames", bridge.Dropped()).Msg("shutdown complete")
}
