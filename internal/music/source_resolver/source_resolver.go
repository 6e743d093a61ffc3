// Package source_resolver turns a play request into a queue.Song: direct
// URLs go to the source that claims them, anything else is searched. A URL
// no source can resolve is searched as well.
package source_resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"lonely/internal/logging"
	"lonely/internal/music/queue"
	"lonely/internal/music/sources"
	"lonely/internal/music/sources/radio"
	"lonely/internal/music/sources/soundcloud"
	"lonely/internal/music/sources/youtube"
	"lonely/pkg/retrylimit"
)

type SourceResolver struct {
	// sources in match order; the first one claiming a URL wins.
	sources  []sources.Source
	fallback sources.Source
	searcher sources.Searcher
	search   sources.Source

	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.RetryConfig
	log     *zap.SugaredLogger
}

// New wires YouTube, SoundCloud and radio sources with the default search
// chain. searchRate caps search requests per second.
func New(searchRate float64) *SourceResolver {
	yt := youtube.New()
	return NewWith(
		[]sources.Source{yt, soundcloud.New()},
		radio.New(),
		youtube.NewChain(),
		yt,
		searchRate,
	)
}

// NewWith builds a resolver from explicit parts. fallback handles URLs no
// other source matches; search results are resolved through searchSource.
func NewWith(srcs []sources.Source, fallback sources.Source, searcher sources.Searcher, searchSource sources.Source, searchRate float64) *SourceResolver {
	limit := rate.Limit(searchRate)
	log := logging.Named("resolver")
	retry := retrylimit.DefaultRetryConfig()
	retry.Logger = log
	return &SourceResolver{
		sources:  srcs,
		fallback: fallback,
		searcher: searcher,
		search:   searchSource,
		limiter:  retrylimit.NewAdaptiveLimiter(limit, limit/4, limit*2, limit/4, 0.5),
		retry:    retry,
		log:      log,
	}
}

// Resolve implements queue.Resolver.
func (r *SourceResolver) Resolve(ctx context.Context, query string) (queue.Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return queue.Song{}, errors.New("empty query")
	}

	var (
		tr  sources.Track
		err error
	)
	if sources.IsURL(query) {
		tr, err = r.resolveURL(ctx, query)
		if err != nil && ctx.Err() == nil {
			r.log.Debugw("url resolution failed, searching instead", "query", query, "error", err)
			tr, err = r.resolveSearch(ctx, query)
		}
	} else {
		tr, err = r.resolveSearch(ctx, query)
	}
	if err != nil {
		return queue.Song{}, err
	}

	r.log.Debugw("resolved", "query", query, "title", tr.Title, "source", tr.Source, "duration", tr.Duration)
	return queue.Song{
		Title:    tr.Title,
		URL:      tr.URL,
		Duration: tr.Duration,
		Stream:   tr.Handle,
		Source:   tr.Source,
	}, nil
}

func (r *SourceResolver) resolveURL(ctx context.Context, rawURL string) (sources.Track, error) {
	for _, s := range r.sources {
		if s.Match(rawURL) {
			return s.Resolve(ctx, rawURL)
		}
	}
	if r.fallback != nil && r.fallback.Match(rawURL) {
		return r.fallback.Resolve(ctx, rawURL)
	}
	return sources.Track{}, fmt.Errorf("%w: unsupported url %s", sources.ErrNoMatch, rawURL)
}

func (r *SourceResolver) resolveSearch(ctx context.Context, query string) (sources.Track, error) {
	var tr sources.Track
	err := retrylimit.Do(ctx, r.limiter, r.retry, func(ctx context.Context) error {
		u, err := r.searcher.Search(ctx, query)
		if err != nil {
			if errors.Is(err, sources.ErrNoMatch) && !errors.Is(err, retrylimit.ErrRateLimited) {
				return retrylimit.Permanent(err)
			}
			return err
		}
		tr, err = r.search.Resolve(ctx, u)
		return err
	})
	return tr, err
}

// StreamURL returns the media URL for a queued song; it is what the
// player hands to ffmpeg.
func (r *SourceResolver) StreamURL(ctx context.Context, song queue.Song) (string, error) {
	for _, s := range r.all() {
		if s.Name() == song.Source {
			return s.StreamURL(ctx, song.Stream)
		}
	}
	return "", fmt.Errorf("no source named %q", song.Source)
}

func (r *SourceResolver) all() []sources.Source {
	out := append([]sources.Source(nil), r.sources...)
	if r.fallback != nil {
		out = append(out, r.fallback)
	}
	return out
}
