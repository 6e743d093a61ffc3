// Package player streams queue songs into voice connections.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"lonely/internal/logging"
	"lonely/internal/music/queue"
	"lonely/internal/music/stream"
)

var ErrNotVoice = errors.New("connection cannot carry audio")

// Voice is a queue connection that accepts opus frames.
type Voice interface {
	queue.Connection
	Speaking(speaking bool) error
	OpusSend() chan<- []byte
}

// Linker resolves the playable media URL of a song. It is called again on
// every stream recovery, media URLs expire.
type Linker interface {
	StreamURL(ctx context.Context, song queue.Song) (string, error)
}

// OpenFunc turns a media URL into PCM starting at seekSec.
type OpenFunc func(link string, seekSec float64) (io.ReadCloser, error)

// Player implements queue.Driver.
type Player struct {
	linker     Linker
	open       OpenFunc
	newEncoder func() (stream.Encoder, error)
	log        *zap.SugaredLogger
}

func New(linker Linker) *Player {
	return NewWith(linker, stream.FFmpeg, stream.NewOpusEncoder)
}

func NewWith(linker Linker, open OpenFunc, newEncoder func() (stream.Encoder, error)) *Player {
	return &Player{
		linker:     linker,
		open:       open,
		newEncoder: newEncoder,
		log:        logging.Named("player"),
	}
}

// Start opens song and returns once its first frame went out, or fails when
// ctx ends first.
func (p *Player) Start(ctx context.Context, conn queue.Connection, song queue.Song) (queue.Playback, error) {
	voice, ok := conn.(Voice)
	if !ok {
		return nil, ErrNotVoice
	}
	enc, err := p.newEncoder()
	if err != nil {
		return nil, err
	}

	pctx, cancel := context.WithCancel(context.Background())
	opener := func(octx context.Context, seek float64) (io.ReadCloser, error) {
		link, err := p.linker.StreamURL(octx, song)
		if err != nil {
			return nil, fmt.Errorf("stream url: %w", err)
		}
		return p.open(link, seek)
	}
	rs := stream.NewRecoveryStream(pctx, opener, song.Duration)
	if err := rs.Open(ctx); err != nil {
		cancel()
		return nil, err
	}

	pb := &playback{
		cancel: cancel,
		stream: rs,
		done:   make(chan struct{}),
	}
	started := make(chan struct{})
	result := make(chan error, 1)
	log := p.log.With("title", song.Title, "channel", conn.ChannelID())

	go func() {
		defer close(pb.done)
		if err := voice.Speaking(true); err != nil {
			log.Debugw("speaking on failed", "error", err)
		}
		err := stream.SendOpus(pctx, rs, enc, voice.OpusSend(), func() { close(started) })
		if pctx.Err() != nil {
			err = nil
		}
		if err != nil {
			log.Warnw("playback ended with error", "error", err)
		}
		_ = voice.Speaking(false)
		_ = rs.Close()
		result <- err
	}()

	select {
	case <-started:
		log.Infow("playback started")
		return pb, nil
	case err := <-result:
		select {
		case <-started:
			return pb, nil
		default:
		}
		if err == nil {
			err = errors.New("stream ended before playback started")
		}
		return nil, err
	case <-ctx.Done():
		_ = pb.Stop()
		return nil, ctx.Err()
	}
}

type playback struct {
	cancel context.CancelFunc
	stream io.Closer
	done   chan struct{}
	once   sync.Once
}

func (pb *playback) Done() <-chan struct{} { return pb.done }

// Stop ends the stream and waits for the send loop to exit.
func (pb *playback) Stop() error {
	var err error
	pb.once.Do(func() {
		pb.cancel()
		err = pb.stream.Close()
	})
	<-pb.done
	return err
}
