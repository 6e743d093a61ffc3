package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, query string) (Song, error) {
	if query == "bad" {
		return Song{}, errors.New("no results")
	}
	return Song{Title: query, URL: "https://example.com/" + query, Duration: 125, Stream: query}, nil
}

type fakeConn struct {
	channel   string
	destroyed atomic.Bool
}

func (c *fakeConn) ChannelID() string { return c.channel }

func (c *fakeConn) Destroy() error {
	c.destroyed.Store(true)
	return nil
}

type fakeGateway struct {
	mu        sync.Mutex
	members   int
	deny      bool
	connects  int
	conns     []*fakeConn
	block     chan struct{}
	ignoreCtx bool
}

func (g *fakeGateway) Connect(ctx context.Context, _, channelID string) (Connection, error) {
	g.mu.Lock()
	g.connects++
	block, ignoreCtx := g.block, g.ignoreCtx
	g.mu.Unlock()

	if block != nil {
		if ignoreCtx {
			<-block
		} else {
			select {
			case <-block:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	c := &fakeConn{channel: channelID}
	g.mu.Lock()
	g.conns = append(g.conns, c)
	g.mu.Unlock()
	return c, nil
}

func (g *fakeGateway) CanJoin(_, _ string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.deny
}

func (g *fakeGateway) MemberCount(_, _ string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members
}

func (g *fakeGateway) setMembers(n int) {
	g.mu.Lock()
	g.members = n
	g.mu.Unlock()
}

func (g *fakeGateway) connectCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connects
}

func (g *fakeGateway) conn(i int) *fakeConn {
	g.mu.Lock()
	defer g.mu.Unlock()
	if i >= len(g.conns) {
		return nil
	}
	return g.conns[i]
}

type fakePlayback struct {
	done    chan struct{}
	once    sync.Once
	stopErr error
	stopped atomic.Bool
}

func (p *fakePlayback) Done() <-chan struct{} { return p.done }

func (p *fakePlayback) Stop() error {
	if p.stopErr != nil {
		return p.stopErr
	}
	p.stopped.Store(true)
	p.finish()
	return nil
}

// finish simulates the track reaching its end.
func (p *fakePlayback) finish() {
	p.once.Do(func() { close(p.done) })
}

type fakeDriver struct {
	mu         sync.Mutex
	started    []string
	playbacks  []*fakePlayback
	fail       map[string]error
	blockStart bool
	// blockTitle blocks only the start of the song with this title.
	blockTitle string
	stopErr    error
}

func (d *fakeDriver) Start(ctx context.Context, _ Connection, song Song) (Playback, error) {
	d.mu.Lock()
	d.started = append(d.started, song.Title)
	failErr := d.fail[song.Title]
	block := d.blockStart || (d.blockTitle != "" && d.blockTitle == song.Title)
	d.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if failErr != nil {
		return nil, failErr
	}

	pb := &fakePlayback{done: make(chan struct{}), stopErr: d.stopErr}
	d.mu.Lock()
	d.playbacks = append(d.playbacks, pb)
	d.mu.Unlock()
	return pb, nil
}

func (d *fakeDriver) starts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.started...)
}

func (d *fakeDriver) playbackCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.playbacks)
}

func (d *fakeDriver) last() *fakePlayback {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playbacks[len(d.playbacks)-1]
}

type sentMessage struct {
	channel string
	text    string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	deleted []string
}

func (n *fakeNotifier) Send(channelID, text string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{channel: channelID, text: text})
	return fmt.Sprintf("m%d", len(n.sent)), nil
}

func (n *fakeNotifier) Delete(_, messageID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, messageID)
	return nil
}

func (n *fakeNotifier) texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	for i, m := range n.sent {
		out[i] = m.text
	}
	return out
}

func (n *fakeNotifier) deletes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.deleted...)
}

func (n *fakeNotifier) hasText(text string) bool {
	for _, s := range n.texts() {
		if s == text {
			return true
		}
	}
	return false
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped atomic.Bool
}

func (t *manualTimer) Stop() bool {
	return !t.stopped.Swap(true)
}

type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{d: d, f: f}
	c.mu.Lock()
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return t
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fire runs timer i regardless of whether it was stopped, like a timer that
// already fired when Stop was called.
func (c *manualClock) fire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.f()
}

type harness struct {
	m        *Manager
	gateway  *fakeGateway
	driver   *fakeDriver
	notifier *fakeNotifier
	clock    *manualClock
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		gateway:  &fakeGateway{members: 1},
		driver:   &fakeDriver{fail: map[string]error{}},
		notifier: &fakeNotifier{},
		clock:    &manualClock{},
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = h.clock.AfterFunc
	}
	h.m = NewManager(fakeResolver{}, h.gateway, h.driver, h.notifier, opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.m.Shutdown(ctx)
	})
	return h
}

func (h *harness) enqueue(t *testing.T, guild, query string) (EnqueueResult, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return h.m.Enqueue(ctx, EnqueueRequest{
		GuildID:        guild,
		Query:          query,
		VoiceChannelID: "vc",
		TextChannelID:  "text",
		RequestedBy:    "user",
	})
}

func (h *harness) list(t *testing.T, guild string) Listing {
	t.Helper()
	l, err := h.m.List(context.Background(), guild)
	if err != nil {
		t.Fatalf("List(%s): %v", guild, err)
	}
	return l
}

func titles(songs []Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Title
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
