package device

import (
	"encoding/binary"
	"math"
	"testing"
)

func f32Bytes(samples ...float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, x := range samples {
		binary.LittleEndian.PutUint32(out[i*bytesPerSample:], math.Float32bits(x))
	}

	return out
}

func TestAppendMono(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		frames   int
		channels int
		want     []float64
	}{
		{"mono passthrough", f32Bytes(0.5, -0.25), 2, 1, []float64{0.5, -0.25}},
		{"stereo average", f32Bytes(1, 0, 0.5, -0.5), 2, 2, []float64{0.5, 0}},
		{"quad average", f32Bytes(1, 1, 1, 1), 1, 4, []float64{1}},
		{"truncated input stops early", f32Bytes(0.5), 2, 1, []float64{0.5}},
		{"zero channels treated as mono", f32Bytes(0.5), 1, 0, []float64{0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := appendMono(nil, tt.raw, tt.frames, tt.channels)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}

			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-7 {
					t.Errorf("sample %d = %g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAppendMonoAppends(t *testing.T) {
	dst := []float64{1, 2}

	got := appendMono(dst, f32Bytes(0.5), 1, 1)
	if len(got) != 3 || got[0] != 1 || got[2] != 0.5 {
		t.Errorf("got %v, want [1 2 0.5]", got)
	}
}

func TestEncodeF32Roundtrip(t *testing.T) {
	in := []float64{0, 0.5, -0.5, 0.125}

	out := make([]byte, len(in)*bytesPerSample)
	encodeF32(out, in)

	back := appendMono(nil, out, len(in), 1)
	for i := range in {
		if math.Abs(back[i]-in[i]) > 1e-7 {
			t.Errorf("sample %d = %g, want %g", i, back[i], in[i])
		}
	}
}

// TestCaptureBlockAssembly feeds odd-sized callback chunks and checks that
// complete fixed-size blocks come out with no samples lost or reordered.
func TestCaptureBlockAssembly(t *testing.T) {
	var frames [][]float64

	d := &Duplex{
		blockSize: 4,
		channels:  1,
		onFrame: func(frame []float64) {
			cp := make([]float64, len(frame))
			copy(cp, frame)
			frames = append(frames, cp)
		},
	}

	// 3 + 3 + 2 samples = two full blocks of 4.
	d.onCaptureData(nil, f32Bytes(1, 2, 3), 3)
	if len(frames) != 0 {
		t.Fatalf("emitted %d frames after 3 samples, want 0", len(frames))
	}

	d.onCaptureData(nil, f32Bytes(4, 5, 6), 3)
	d.onCaptureData(nil, f32Bytes(7, 8), 2)

	if len(frames) != 2 {
		t.Fatalf("emitted %d frames, want 2", len(frames))
	}

	want := [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}}
	for i, frame := range frames {
		for j := range want[i] {
			if math.Abs(frame[j]-want[i][j]) > 1e-7 {
				t.Errorf("frame %d sample %d = %g, want %g", i, j, frame[j], want[i][j])
			}
		}
	}
}

// TestPlaybackFillAndUnderrun drives the playback callback directly: queued
// frames fill the buffer, partially consumed frames carry over, and an empty
// queue zero-fills.
func TestPlaybackFillAndUnderrun(t *testing.T) {
	d := &Duplex{
		blockSize: 4,
		out:       make(chan []float64, 4),
	}

	d.out <- []float64{0.1, 0.2, 0.3, 0.4}

	// First callback asks for 3 frames: consumes part of the queued block.
	buf := make([]byte, 3*bytesPerSample)
	d.onPlaybackData(buf, nil, 3)

	got := appendMono(nil, buf, 3, 1)
	want := []float64{0.1, 0.2, 0.3}

	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-7 {
			t.Errorf("sample %d = %g, want %g", i, got[i], want[i])
		}
	}

	// Second callback gets the leftover sample, then underruns to silence.
	buf = make([]byte, 3*bytesPerSample)
	for i := range buf {
		buf[i] = 0xFF
	}

	d.onPlaybackData(buf, nil, 3)

	got = appendMono(nil, buf, 3, 1)
	if math.Abs(got[0]-0.4) > 1e-7 {
		t.Errorf("leftover sample = %g, want 0.4", got[0])
	}

	if got[1] != 0 || got[2] != 0 {
		t.Errorf("underrun samples = %v, want zero fill", got[1:])
	}
}

func TestNewDuplexInvalidParameters(t *testing.T) {
	if _, err := NewDuplex(0, 1024); err == nil {
		t.Error("NewDuplex with zero sample rate should fail")
	}

	if _, err := NewDuplex(44100, 0); err == nil {
		t.Error("NewDuplex with zero block size should fail")
	}
}
