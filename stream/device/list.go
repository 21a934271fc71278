package device

import (
	"fmt"
	"io"

	"github.com/gen2brain/malgo"
)

// Info describes one enumerated device. Index is the position used by
// WithCaptureDevice and WithPlaybackDevice.
type Info struct {
	Index   int
	Name    string
	Default bool
	Formats []malgo.DataFormat
}

// List enumerates the devices of one kind on an existing context.
func List(ctx *malgo.AllocatedContext, kind malgo.DeviceType) ([]Info, error) {
	if ctx == nil {
		return nil, fmt.Errorf("device: nil context")
	}

	infos, err := ctx.Devices(kind)
	if err != nil {
		return nil, fmt.Errorf("device: enumerate: %w", err)
	}

	result := make([]Info, 0, len(infos))

	for i, info := range infos {
		entry := Info{
			Index:   i,
			Name:    info.Name(),
			Default: info.IsDefault != 0,
		}

		if full, err := ctx.DeviceInfo(kind, info.ID, malgo.Shared); err == nil {
			entry.Formats = full.Formats
		}

		result = append(result, entry)
	}

	return result, nil
}

// Fprint writes the capture and playback device tables to w, creating a
// short-lived audio context for the enumeration.
func Fprint(w io.Writer) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("device: audio context init: %w", err)
	}

	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	if err := fprintKind(w, ctx, "Capture devices", malgo.Capture); err != nil {
		return err
	}

	fmt.Fprintln(w)

	return fprintKind(w, ctx, "Playback devices", malgo.Playback)
}

func fprintKind(w io.Writer, ctx *malgo.AllocatedContext, title string, kind malgo.DeviceType) error {
	devices, err := List(ctx, kind)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s:\n", title)

	for _, dev := range devices {
		marker := " "
		if dev.Default {
			marker = "*"
		}

		fmt.Fprintf(w, "  %s %d: %s\n", marker, dev.Index, dev.Name)
	}

	return nil
}
