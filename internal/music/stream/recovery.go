package stream

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"lonely/internal/logging"
)

const maxRecoveryAttempts = 3

// RecoveryStream reopens a bounded track at the current position when the
// source ends before the track's known duration.
type RecoveryStream struct {
	open     Opener
	ctx      context.Context
	duration float64
	log      *zap.SugaredLogger

	mu       sync.Mutex
	rc       io.ReadCloser
	read     int64
	attempts int
	closed   bool
}

// NewRecoveryStream wraps open. durationSec 0 marks a live stream, which is
// never reopened. ctx bounds reopen attempts.
func NewRecoveryStream(ctx context.Context, open Opener, durationSec int) *RecoveryStream {
	return &RecoveryStream{
		open:     open,
		ctx:      ctx,
		duration: float64(durationSec),
		log:      logging.Named("stream"),
	}
}

// Open opens the stream from the start.
func (rs *RecoveryStream) Open(ctx context.Context) error {
	rc, err := rs.open(ctx, 0)
	if err != nil {
		return err
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		rc.Close()
		return errors.New("stream closed")
	}
	rs.rc = rc
	return nil
}

// Position is the playback position in seconds.
func (rs *RecoveryStream) Position() float64 {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return float64(rs.read) / bytesPerSecond
}

func (rs *RecoveryStream) Read(p []byte) (int, error) {
	rs.mu.Lock()
	rc := rs.rc
	rs.mu.Unlock()
	if rc == nil {
		return 0, errors.New("stream not opened")
	}

	n, err := rc.Read(p)
	rs.mu.Lock()
	rs.read += int64(n)
	rs.mu.Unlock()

	if n == 0 && errors.Is(err, io.EOF) && rs.endedEarly() {
		if rerr := rs.reopen(); rerr != nil {
			rs.log.Warnw("recovery failed", "error", rerr)
			return 0, io.EOF
		}
		return rs.Read(p)
	}
	return n, err
}

// endedEarly leaves a second of slack for container rounding.
func (rs *RecoveryStream) endedEarly() bool {
	if rs.duration <= 0 {
		return false
	}
	return rs.Position() < rs.duration-1
}

func (rs *RecoveryStream) reopen() error {
	rs.mu.Lock()
	if rs.closed {
		rs.mu.Unlock()
		return errors.New("stream closed")
	}
	if rs.attempts >= maxRecoveryAttempts {
		rs.mu.Unlock()
		return errors.New("max recovery attempts reached")
	}
	rs.attempts++
	attempt := rs.attempts
	old := rs.rc
	rs.rc = nil
	seek := float64(rs.read) / bytesPerSecond
	rs.mu.Unlock()

	if old != nil {
		old.Close()
	}
	rs.log.Infow("stream ended early, reopening", "attempt", attempt, "position", seek, "duration", rs.duration)

	rc, err := rs.open(rs.ctx, seek)
	if err != nil {
		return err
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closed {
		rc.Close()
		return errors.New("stream closed")
	}
	rs.rc = rc
	return nil
}

func (rs *RecoveryStream) Close() error {
	rs.mu.Lock()
	rs.closed = true
	rc := rs.rc
	rs.rc = nil
	rs.mu.Unlock()
	if rc != nil {
		return rc.Close()
	}
	return nil
}
