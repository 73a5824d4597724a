package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"
)

// recordingStream 记录每次 Write 时绑定缓冲区的内容
type recordingStream struct {
	frames   []int16
	written  [][]int16
	started  bool
	stopped  bool
	aborted  bool
	closed   bool
	writeErr error
	onWrite  func(n int)
}

func (s *recordingStream) Start() error {
	s.started = true
	return nil
}

func (s *recordingStream) Write() error {
	if s.writeErr != nil {
		return s.writeErr
	}
	chunk := make([]int16, len(s.frames))
	copy(chunk, s.frames)
	s.written = append(s.written, chunk)
	if s.onWrite != nil {
		s.onWrite(len(s.written))
	}
	return nil
}

func (s *recordingStream) Abort() error {
	s.aborted = true
	return nil
}

func (s *recordingStream) Stop() error {
	s.stopped = true
	return nil
}

func (s *recordingStream) Close() error {
	s.closed = true
	return nil
}

func TestPlaySamples_ChunksAndPads(t *testing.T) {
	frames := make([]int16, 4)
	stream := &recordingStream{frames: frames}
	samples := []int16{1, 2, 3, 4, 5, 6}

	if err := playSamples(context.Background(), stream, frames, samples); err != nil {
		t.Fatalf("playSamples failed: %v", err)
	}

	if len(stream.written) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(stream.written))
	}
	want := [][]int16{{1, 2, 3, 4}, {5, 6, 0, 0}}
	for i := range want {
		for j := range want[i] {
			if stream.written[i][j] != want[i][j] {
				t.Fatalf("write %d: expected %v, got %v", i, want[i], stream.written[i])
			}
		}
	}
	if !stream.started || !stream.stopped || !stream.closed {
		t.Fatalf("expected start/stop/close, got %+v", stream)
	}
}

func TestPlaySamples_Canceled(t *testing.T) {
	frames := make([]int16, 2)
	ctx, cancel := context.WithCancel(context.Background())
	stream := &recordingStream{frames: frames}
	stream.onWrite = func(n int) {
		if n == 1 {
			cancel()
		}
	}

	err := playSamples(ctx, stream, frames, make([]int16, 10))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(stream.written) != 1 {
		t.Fatalf("expected playback to stop after first write, got %d writes", len(stream.written))
	}
	if !stream.aborted || !stream.closed {
		t.Fatalf("expected stream to be aborted and closed")
	}
}

func TestPlaySamples_WriteError(t *testing.T) {
	frames := make([]int16, 2)
	stream := &recordingStream{frames: frames, writeErr: errors.New("underflow")}

	if err := playSamples(context.Background(), stream, frames, []int16{1, 2}); err == nil {
		t.Fatalf("expected write error")
	}
	if !stream.closed {
		t.Fatalf("expected stream to be closed")
	}
}

func TestToInt16(t *testing.T) {
	out, err := toInt16(&audio.IntBuffer{Data: []int{127, -128, 1}, SourceBitDepth: 8})
	if err != nil {
		t.Fatalf("toInt16 failed: %v", err)
	}
	want := []int16{127 << 8, -128 << 8, 256}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], out[i])
		}
	}

	out, err = toInt16(&audio.IntBuffer{Data: []int{32767, -32768, 40000}, SourceBitDepth: 16})
	if err != nil {
		t.Fatalf("toInt16 failed: %v", err)
	}
	if out[0] != 32767 || out[1] != -32768 || out[2] != 32767 {
		t.Fatalf("unexpected 16-bit conversion: %v", out)
	}

	if _, err := toInt16(&audio.IntBuffer{SourceBitDepth: 24}); err == nil {
		t.Fatalf("expected unsupported bit depth error")
	}
}

func TestMatchOutputDevice(t *testing.T) {
	devices := []*portaudio.DeviceInfo{
		{Name: "Built-in Microphone", MaxInputChannels: 2},
		{Name: "MacBook Pro Speakers", MaxOutputChannels: 2},
	}

	dev, err := matchOutputDevice(devices, "speakers")
	if err != nil {
		t.Fatalf("matchOutputDevice failed: %v", err)
	}
	if dev.Name != "MacBook Pro Speakers" {
		t.Fatalf("unexpected device %q", dev.Name)
	}

	if _, err := matchOutputDevice(devices, "microphone"); err == nil {
		t.Fatalf("expected input-only device to be skipped")
	}
}

func TestPlayRejectsStereo(t *testing.T) {
	player := NewPlayer(Config{}, nil)
	buf := &audio.IntBuffer{Format: &audio.Format{NumChannels: 2, SampleRate: 44100}}
	if err := player.Play(context.Background(), buf); err == nil {
		t.Fatalf("expected stereo to be rejected")
	}
}
