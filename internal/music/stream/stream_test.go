package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
)

type countingEncoder struct {
	frames int
}

func (c *countingEncoder) Encode(pcm []int16, frameSize, _ int) ([]byte, error) {
	c.frames++
	if len(pcm) != frameSize*Channels {
		return nil, errors.New("bad frame")
	}
	return []byte{byte(pcm[0])}, nil
}

func pcmFrames(n int) []byte {
	buf := make([]byte, n*frameBytes)
	for i := 0; i < n; i++ {
		buf[i*frameBytes] = byte(i + 1)
	}
	return buf
}

func TestFFmpegArgs(t *testing.T) {
	got := FFmpegArgs("https://media", 12.5)
	want := []string{
		"-ss", "12.500",
		"-reconnect", "1", "-reconnect_streamed", "1", "-reconnect_delay_max", "5",
		"-i", "https://media",
		"-f", "s16le", "-ar", "48000", "-ac", "2",
		"-loglevel", "warning", "pipe:1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FFmpegArgs = %v", got)
	}
	if args := FFmpegArgs("x", 0); args[0] != "-reconnect" {
		t.Errorf("seek flag present at position 0: %v", args)
	}
}

func TestSendOpus(t *testing.T) {
	send := make(chan []byte, 10)
	enc := &countingEncoder{}
	first := 0

	err := SendOpus(context.Background(), bytes.NewReader(pcmFrames(3)), enc, send, func() { first++ })
	if err != nil {
		t.Fatalf("SendOpus: %v", err)
	}
	if enc.frames != 3 || len(send) != 3 || first != 1 {
		t.Errorf("frames=%d sent=%d first=%d", enc.frames, len(send), first)
	}
	if p := <-send; p[0] != 1 {
		t.Errorf("first packet = %v", p)
	}
}

func TestSendOpusEmptyStream(t *testing.T) {
	err := SendOpus(context.Background(), bytes.NewReader(nil), &countingEncoder{}, make(chan []byte, 1), nil)
	if err == nil {
		t.Fatal("expected an error for a stream without audio")
	}
}

func TestSendOpusStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	send := make(chan []byte) // never drained
	done := make(chan error, 1)
	go func() {
		done <- SendOpus(ctx, bytes.NewReader(pcmFrames(5)), &countingEncoder{}, send, nil)
	}()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("SendOpus after cancel = %v", err)
	}
}

type chunk struct {
	r      io.Reader
	closed bool
}

func (c *chunk) Read(p []byte) (int, error) { return c.r.Read(p) }
func (c *chunk) Close() error               { c.closed = true; return nil }

func TestRecoveryStreamReopensAtPosition(t *testing.T) {
	// A 10 second track whose source dies after one second.
	var seeks []float64
	var opened []*chunk
	open := func(_ context.Context, seek float64) (io.ReadCloser, error) {
		seeks = append(seeks, seek)
		size := bytesPerSecond
		if len(seeks) > 1 {
			size = 9 * bytesPerSecond
		}
		c := &chunk{r: bytes.NewReader(make([]byte, size))}
		opened = append(opened, c)
		return c, nil
	}

	rs := NewRecoveryStream(context.Background(), open, 10)
	if err := rs.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, err := io.Copy(io.Discard, rs)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 10*bytesPerSecond {
		t.Errorf("read %d bytes, want %d", n, 10*bytesPerSecond)
	}
	if !reflect.DeepEqual(seeks, []float64{0, 1}) {
		t.Errorf("seeks = %v", seeks)
	}
	if !opened[0].closed {
		t.Error("dead source not closed")
	}
	rs.Close()
	if !opened[1].closed {
		t.Error("Close did not close the current source")
	}
}

func TestRecoveryStreamGivesUp(t *testing.T) {
	opens := 0
	open := func(context.Context, float64) (io.ReadCloser, error) {
		opens++
		return &chunk{r: bytes.NewReader(nil)}, nil
	}
	rs := NewRecoveryStream(context.Background(), open, 100)
	if err := rs.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := io.Copy(io.Discard, rs); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if opens != 1+maxRecoveryAttempts {
		t.Errorf("opens = %d, want %d", opens, 1+maxRecoveryAttempts)
	}
}

func TestRecoveryStreamLiveIsNotReopened(t *testing.T) {
	opens := 0
	open := func(context.Context, float64) (io.ReadCloser, error) {
		opens++
		return &chunk{r: bytes.NewReader(make([]byte, 100))}, nil
	}
	rs := NewRecoveryStream(context.Background(), open, 0)
	_ = rs.Open(context.Background())
	_, _ = io.Copy(io.Discard, rs)
	if opens != 1 {
		t.Errorf("opens = %d, want 1", opens)
	}
}
