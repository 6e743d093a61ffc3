// Package queue keeps one music queue per guild and drives it through
// connecting, playing, draining and termination.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"lonely/internal/logging"
	"lonely/pkg/util"
)

// EnqueueRequest is a play request coming from a text command.
type EnqueueRequest struct {
	GuildID        string
	Query          string
	VoiceChannelID string
	TextChannelID  string
	RequestedBy    string
}

// Manager owns the guild id to queue mapping.
type Manager struct {
	resolver Resolver
	gateway  Gateway
	driver   Driver
	notifier Notifier
	opts     Options
	log      *zap.SugaredLogger

	mu     sync.Mutex
	queues map[string]*GuildQueue
}

func NewManager(resolver Resolver, gateway Gateway, driver Driver, notifier Notifier, opts Options) *Manager {
	return &Manager{
		resolver: resolver,
		gateway:  gateway,
		driver:   driver,
		notifier: notifier,
		opts:     opts.withDefaults(),
		log:      logging.Named("queue"),
		queues:   make(map[string]*GuildQueue),
	}
}

// shutdownWorkers caps how many queues are torn down at once.
const shutdownWorkers = 8

// maxPostAttempts bounds retries when a request races a terminating queue.
const maxPostAttempts = 3

// Enqueue resolves the query and appends the song to the guild's queue,
// creating the queue when there is none. The request that creates the queue
// returns once its song started playing (or failed to).
func (m *Manager) Enqueue(ctx context.Context, req EnqueueRequest) (EnqueueResult, error) {
	if req.VoiceChannelID == "" {
		return EnqueueResult{}, ErrNotInVoiceChannel
	}
	if m.get(req.GuildID) == nil && !m.gateway.CanJoin(req.GuildID, req.VoiceChannelID) {
		return EnqueueResult{}, ErrPermissionDenied
	}

	song, err := m.resolver.Resolve(ctx, req.Query)
	if err != nil {
		m.log.Debugw("resolve failed", "guild", req.GuildID, "query", req.Query, "error", err)
		return EnqueueResult{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	song.RequestedBy = req.RequestedBy

	for attempt := 0; attempt < maxPostAttempts; attempt++ {
		q, created, err := m.getOrCreate(req)
		if err != nil {
			return EnqueueResult{}, err
		}

		reply := make(chan enqueueReply, 1)
		if err := q.post(ctx, evEnqueue{song: song, reply: reply}); err != nil {
			if errors.Is(err, ErrQueueClosed) {
				continue
			}
			if created {
				_ = q.post(context.Background(), evAbandon{})
			}
			return EnqueueResult{}, err
		}

		select {
		case r := <-reply:
			return r.res, r.err
		case <-ctx.Done():
			return EnqueueResult{}, ctx.Err()
		}
	}
	return EnqueueResult{}, ErrQueueClosed
}

// Skip stops the current song. The returned song is the one skipped; it is
// zero when the queue was idle and has been closed instead.
func (m *Manager) Skip(ctx context.Context, guildID, requesterVoiceChannelID string) (Song, error) {
	q := m.get(guildID)
	if q == nil {
		return Song{}, ErrNoActiveQueue
	}

	reply := make(chan skipReply, 1)
	if err := q.post(ctx, evSkip{channelID: requesterVoiceChannelID, reply: reply}); err != nil {
		return Song{}, noQueue(err)
	}
	select {
	case r := <-reply:
		return r.song, r.err
	case <-ctx.Done():
		return Song{}, ctx.Err()
	}
}

// SetRepeat turns repeat on or off and returns the new setting.
func (m *Manager) SetRepeat(ctx context.Context, guildID string, enabled bool) (bool, error) {
	return m.repeat(ctx, guildID, &enabled)
}

// ToggleRepeat flips repeat and returns the new setting.
func (m *Manager) ToggleRepeat(ctx context.Context, guildID string) (bool, error) {
	return m.repeat(ctx, guildID, nil)
}

func (m *Manager) repeat(ctx context.Context, guildID string, enabled *bool) (bool, error) {
	q := m.get(guildID)
	if q == nil {
		return false, ErrNoActiveQueue
	}

	reply := make(chan bool, 1)
	if err := q.post(ctx, evRepeat{enabled: enabled, reply: reply}); err != nil {
		return false, noQueue(err)
	}
	select {
	case on := <-reply:
		return on, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// List returns a snapshot of the guild's queue.
func (m *Manager) List(ctx context.Context, guildID string) (Listing, error) {
	q := m.get(guildID)
	if q == nil {
		return Listing{}, ErrNoActiveQueue
	}

	reply := make(chan Listing, 1)
	if err := q.post(ctx, evList{reply: reply}); err != nil {
		return Listing{}, noQueue(err)
	}
	select {
	case l := <-reply:
		return l, nil
	case <-ctx.Done():
		return Listing{}, ctx.Err()
	}
}

// OnMembershipChanged re-checks the guild's voice channel population.
func (m *Manager) OnMembershipChanged(guildID string) {
	q := m.get(guildID)
	if q == nil {
		return
	}
	_ = q.post(context.Background(), evMembership{})
}

// Shutdown terminates every queue and waits for them to finish.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	queues := make([]*GuildQueue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	err := util.Parallel(ctx, queues, shutdownWorkers, func(ctx context.Context, q *GuildQueue) error {
		if err := q.post(ctx, evShutdown{}); err != nil && !errors.Is(err, ErrQueueClosed) {
			return err
		}
		select {
		case <-q.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return err
	}
	m.log.Infow("all queues terminated", "count", len(queues))
	return nil
}

// Len returns the number of live queues.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

func (m *Manager) get(guildID string) *GuildQueue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queues[guildID]
}

func (m *Manager) getOrCreate(req EnqueueRequest) (*GuildQueue, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q, ok := m.queues[req.GuildID]; ok {
		return q, false, nil
	}
	if !m.gateway.CanJoin(req.GuildID, req.VoiceChannelID) {
		return nil, false, ErrPermissionDenied
	}
	q := newGuildQueue(m, req.GuildID, req.VoiceChannelID, req.TextChannelID)
	m.queues[req.GuildID] = q
	go q.run()
	return q, true, nil
}

// remove drops q from the mapping unless a newer queue already replaced it.
func (m *Manager) remove(q *GuildQueue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queues[q.guildID] == q {
		delete(m.queues, q.guildID)
	}
}

func noQueue(err error) error {
	if errors.Is(err, ErrQueueClosed) {
		return ErrNoActiveQueue
	}
	return err
}
