package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type State int

const (
	StateConnecting State = iota
	StatePlaying
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Events handled by the guild loop.
type (
	evEnqueue struct {
		song  Song
		reply chan enqueueReply
	}
	evConnected struct {
		conn Connection
		err  error
	}
	evStarted struct {
		gen uint64
		pb  Playback
		err error
	}
	evIdle struct {
		gen uint64
	}
	evGraceExpired struct {
		gen uint64
	}
	evMembership struct{}
	evSkip       struct {
		channelID string
		reply     chan skipReply
	}
	evRepeat struct {
		enabled *bool
		reply   chan bool
	}
	evList struct {
		reply chan Listing
	}
	evShutdown struct{}
	// evAbandon closes a queue whose creating request never got its song
	// in. Queues that picked up songs meanwhile are left alone.
	evAbandon struct{}
)

type enqueueReply struct {
	res EnqueueResult
	err error
}

type skipReply struct {
	song Song
	err  error
}

// EnqueueResult describes where an enqueued song ended up.
type EnqueueResult struct {
	Song     Song
	Position int
	// Created is set for the request that brought the queue up. Its song was
	// announced by the now playing notification already.
	Created bool
}

// Text is the reply for the requester; empty when nothing needs saying.
func (r EnqueueResult) Text() string {
	if r.Created && r.Position == 0 {
		return ""
	}
	return queuedText(r.Song)
}

// Listing is a snapshot of a guild queue.
type Listing struct {
	Songs     []Song
	Repeating bool
	State     State
}

func (l Listing) Count() int {
	return len(l.Songs)
}

func (l Listing) TotalSeconds() int {
	return lo.SumBy(l.Songs, func(s Song) int { return s.Duration })
}

func (l Listing) FormattedTotal() string {
	return FormatDuration(l.TotalSeconds())
}

// GuildQueue is the queue of one guild. Every field below events is owned by
// the run goroutine.
type GuildQueue struct {
	m            *Manager
	id           string
	guildID      string
	voiceChannel string
	textChannel  string
	log          *zap.SugaredLogger

	events chan any
	done   chan struct{}

	state       State
	songs       []Song
	conn        Connection
	isPlaying   bool
	isRepeating bool
	nowPlaying  string

	connecting    bool
	connectCancel context.CancelFunc

	gen          uint64
	playback     Playback
	startCancel  context.CancelFunc
	startSkipped bool

	graceGen uint64
	grace    Timer

	creator     chan enqueueReply
	creatorSong Song
}

func newGuildQueue(m *Manager, guildID, voiceChannel, textChannel string) *GuildQueue {
	id := uuid.NewString()
	return &GuildQueue{
		m:            m,
		id:           id,
		guildID:      guildID,
		voiceChannel: voiceChannel,
		textChannel:  textChannel,
		log:          m.log.With("guild", guildID, "queue", id),
		events:       make(chan any),
		done:         make(chan struct{}),
		state:        StateConnecting,
	}
}

// post hands ev to the loop. It fails with ErrQueueClosed once the queue
// is terminated.
func (q *GuildQueue) post(ctx context.Context, ev any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.events <- ev:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *GuildQueue) run() {
	q.log.Infow("queue created", "voice_channel", q.voiceChannel)
	for q.state != StateTerminated {
		switch ev := (<-q.events).(type) {
		case evEnqueue:
			q.handleEnqueue(ev)
		case evConnected:
			q.handleConnected(ev)
		case evStarted:
			q.handleStarted(ev)
		case evIdle:
			q.handleIdle(ev)
		case evGraceExpired:
			q.handleGraceExpired(ev)
		case evMembership:
			q.handleMembership()
		case evSkip:
			q.handleSkip(ev)
		case evRepeat:
			if ev.enabled == nil {
				q.isRepeating = !q.isRepeating
			} else {
				q.isRepeating = *ev.enabled
			}
			ev.reply <- q.isRepeating
		case evList:
			ev.reply <- Listing{
				Songs:     append([]Song(nil), q.songs...),
				Repeating: q.isRepeating,
				State:     q.state,
			}
		case evShutdown:
			q.terminate("")
		case evAbandon:
			if len(q.songs) == 0 && q.state == StateConnecting {
				q.terminate("")
			}
		}
	}
	q.log.Infow("queue terminated")
}

func (q *GuildQueue) handleEnqueue(ev evEnqueue) {
	q.songs = append(q.songs, ev.song)
	pos := len(q.songs) - 1

	switch q.state {
	case StateConnecting:
		if q.conn == nil && !q.connecting {
			q.creator = ev.reply
			q.creatorSong = ev.song
			q.beginConnect()
			return
		}
	case StateDraining:
		q.stopGrace()
		q.startHead()
	}
	q.log.Debugw("song queued", "title", ev.song.Title, "position", pos)
	ev.reply <- enqueueReply{res: EnqueueResult{Song: ev.song, Position: pos}}
}

func (q *GuildQueue) beginConnect() {
	ctx, cancel := context.WithTimeout(context.Background(), q.m.opts.ConnectTimeout)
	q.connecting = true
	q.connectCancel = cancel

	go func() {
		defer cancel()
		conn, err := q.m.gateway.Connect(ctx, q.guildID, q.voiceChannel)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrConnectTimeout
		}
		if perr := q.post(context.Background(), evConnected{conn: conn, err: err}); perr != nil && conn != nil {
			// The queue went away while we were connecting.
			if derr := conn.Destroy(); derr != nil {
				q.log.Warnw("destroy late connection", "error", derr)
			}
		}
	}()
}

func (q *GuildQueue) handleConnected(ev evConnected) {
	q.connecting = false
	q.connectCancel = nil

	if ev.err != nil {
		q.log.Warnw("voice connect failed", "error", ev.err)
		q.reportFailure(ev.err, "")
		q.terminate("")
		return
	}
	q.conn = ev.conn
	q.log.Infow("voice connected", "voice_channel", q.voiceChannel)
	q.advance()
}

// startHead starts the driver on songs[0] in a helper goroutine.
func (q *GuildQueue) startHead() {
	q.gen++
	gen := q.gen
	q.state = StatePlaying
	q.isPlaying = false
	q.startSkipped = false

	ctx, cancel := context.WithTimeout(context.Background(), q.m.opts.PlaybackStartTimeout)
	q.startCancel = cancel
	conn, song := q.conn, q.songs[0]

	go func() {
		defer cancel()
		pb, err := q.m.driver.Start(ctx, conn, song)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrPlaybackStartTimeout
		}
		if perr := q.post(context.Background(), evStarted{gen: gen, pb: pb, err: err}); perr != nil && pb != nil {
			_ = pb.Stop()
		}
	}()
}

func (q *GuildQueue) handleStarted(ev evStarted) {
	if ev.gen != q.gen || q.state != StatePlaying {
		if ev.pb != nil {
			_ = ev.pb.Stop()
		}
		return
	}
	q.startCancel = nil

	if q.startSkipped {
		q.startSkipped = false
		if ev.pb != nil {
			_ = ev.pb.Stop()
		}
		q.finishHead()
		return
	}

	song := q.songs[0]
	if ev.err != nil {
		q.log.Warnw("playback start failed", "title", song.Title, "error", ev.err)
		q.reportFailure(ev.err, song.Title)
		q.songs = q.songs[1:]
		q.advance()
		return
	}

	q.playback = ev.pb
	q.isPlaying = true
	q.announce(song)
	if q.creator != nil {
		q.creator <- enqueueReply{res: EnqueueResult{Song: q.creatorSong, Created: true}}
		q.creator = nil
	}

	go func(pb Playback, gen uint64) {
		<-pb.Done()
		_ = q.post(context.Background(), evIdle{gen: gen})
	}(ev.pb, q.gen)
}

func (q *GuildQueue) handleIdle(ev evIdle) {
	if ev.gen != q.gen || q.state != StatePlaying || q.playback == nil {
		return
	}
	q.playback = nil
	q.isPlaying = false
	q.finishHead()
}

// finishHead pops the current song, rotating it to the tail when repeating.
func (q *GuildQueue) finishHead() {
	head := q.songs[0]
	q.songs = q.songs[1:]
	if q.isRepeating {
		q.songs = append(q.songs, head)
	}
	q.advance()
}

func (q *GuildQueue) advance() {
	if len(q.songs) > 0 {
		q.startHead()
		return
	}
	q.enterDraining()
}

func (q *GuildQueue) enterDraining() {
	q.state = StateDraining
	q.isPlaying = false

	if q.m.gateway.MemberCount(q.guildID, q.voiceChannel) == 0 {
		q.terminate(allMembersLeftText)
		return
	}

	q.graceGen++
	gen := q.graceGen
	q.grace = q.m.opts.AfterFunc(q.m.opts.GracePeriod, func() {
		_ = q.post(context.Background(), evGraceExpired{gen: gen})
	})
	q.log.Debugw("queue drained, grace period started", "grace", q.m.opts.GracePeriod)
}

func (q *GuildQueue) stopGrace() {
	if q.grace != nil {
		q.grace.Stop()
		q.grace = nil
	}
	q.graceGen++
}

func (q *GuildQueue) handleGraceExpired(ev evGraceExpired) {
	if ev.gen != q.graceGen || q.state != StateDraining || len(q.songs) > 0 {
		return
	}
	q.log.Infow("grace period elapsed, leaving")
	q.grace = nil
	q.terminate("")
}

func (q *GuildQueue) handleMembership() {
	if q.m.gateway.MemberCount(q.guildID, q.voiceChannel) == 0 {
		q.terminate(allMembersLeftText)
	}
}

func (q *GuildQueue) handleSkip(ev evSkip) {
	switch {
	case ev.channelID == "":
		ev.reply <- skipReply{err: ErrNotInVoiceChannel}
		return
	case ev.channelID != q.voiceChannel:
		ev.reply <- skipReply{err: ErrWrongChannel}
		return
	}

	if len(q.songs) == 0 {
		q.terminate("")
		ev.reply <- skipReply{}
		return
	}
	head := q.songs[0]

	switch {
	case q.state == StateConnecting:
		q.songs = q.songs[1:]
		if len(q.songs) == 0 {
			q.terminate("")
		}
	case q.playback != nil:
		pb := q.playback
		q.playback = nil
		q.isPlaying = false
		q.gen++
		if err := pb.Stop(); err != nil {
			q.log.Errorw("stop playback on skip", "error", err)
			q.songs = nil
			q.terminate("")
			break
		}
		q.finishHead()
	case q.startCancel != nil:
		q.startSkipped = true
		q.startCancel()
	}
	ev.reply <- skipReply{song: head}
}

// announce posts the now playing message and removes the previous one.
func (q *GuildQueue) announce(song Song) {
	prev := q.nowPlaying
	q.nowPlaying = ""

	id, err := q.m.notifier.Send(q.textChannel, nowPlayingText(song))
	if err != nil {
		q.log.Warnw("send now playing", "error", err)
	} else {
		q.nowPlaying = id
	}
	if prev != "" {
		if err := q.m.notifier.Delete(q.textChannel, prev); err != nil {
			q.log.Debugw("delete previous now playing", "error", err)
		}
	}
}

func (q *GuildQueue) notify(text string) {
	if _, err := q.m.notifier.Send(q.textChannel, text); err != nil {
		q.log.Warnw("send notification", "error", err)
	}
}

// reportFailure hands err to a waiting creator, or posts it to the text
// channel when nobody is waiting.
func (q *GuildQueue) reportFailure(err error, title string) {
	if q.creator != nil {
		q.creator <- enqueueReply{err: err}
		q.creator = nil
		return
	}
	if title != "" {
		q.notify(fmt.Sprintf("Could not play **%s**: %s", title, UserMessage(err)))
		return
	}
	q.notify(UserMessage(err))
}

// terminate tears the queue down. It runs at most once.
func (q *GuildQueue) terminate(notice string) {
	if q.state == StateTerminated {
		return
	}
	q.state = StateTerminated
	q.isPlaying = false

	q.stopGrace()
	if q.connectCancel != nil {
		q.connectCancel()
		q.connectCancel = nil
	}
	if q.startCancel != nil {
		q.startCancel()
		q.startCancel = nil
	}
	if q.playback != nil {
		if err := q.playback.Stop(); err != nil {
			q.log.Warnw("stop playback", "error", err)
		}
		q.playback = nil
	}
	if q.conn != nil {
		if err := q.conn.Destroy(); err != nil {
			q.log.Warnw("destroy voice connection", "error", err)
		}
		q.conn = nil
	}
	q.songs = nil

	if notice != "" {
		q.notify(notice)
	}
	q.m.remove(q)
	if q.creator != nil {
		q.creator <- enqueueReply{err: ErrQueueClosed}
		q.creator = nil
	}
	close(q.done)
}
