// Package stream decodes media URLs to PCM with ffmpeg and sends them to a
// voice connection as opus frames.
package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz

	frameBytes     = FrameSize * Channels * 2
	bytesPerSecond = SampleRate * Channels * 2
)

// Opener opens PCM (s16le, 48kHz, stereo) starting at seekSec.
type Opener func(ctx context.Context, seekSec float64) (io.ReadCloser, error)

// FFmpegArgs builds the ffmpeg command line for link.
func FFmpegArgs(link string, seekSec float64) []string {
	args := []string{}
	if seekSec > 0 {
		args = append(args, "-ss", strconv.FormatFloat(seekSec, 'f', 3, 64))
	}
	return append(args,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", link,
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

// FFmpeg starts ffmpeg on link. Closing the reader kills the process.
func FFmpeg(link string, seekSec float64) (io.ReadCloser, error) {
	cmd := exec.Command("ffmpeg", FFmpegArgs(link, seekSec)...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return &process{ReadCloser: out, cmd: cmd, stderr: stderr}, nil
}

type process struct {
	io.ReadCloser
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	once   sync.Once
	err    error
}

func (p *process) Close() error {
	p.once.Do(func() {
		_ = p.cmd.Process.Kill()
		_ = p.ReadCloser.Close()
		// Only an exit on its own is a failure; the kill above is not.
		var exit *exec.ExitError
		if err := p.cmd.Wait(); errors.As(err, &exit) && exit.Exited() {
			p.err = fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(p.stderr.String()))
		}
	})
	return p.err
}
