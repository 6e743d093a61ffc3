package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppalone/ytsearch"
	"go.uber.org/zap"

	"lonely/internal/logging"
	"lonely/internal/music/sources"
	"lonely/internal/music/sources/ytdlp"
)

// SearchFunc adapts a function to sources.Searcher.
type SearchFunc func(ctx context.Context, query string) (string, error)

func (f SearchFunc) Search(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// APISearch uses the ytsearch client and returns the first video.
func APISearch(ctx context.Context, query string) (string, error) {
	res, err := ytsearch.NewClient(nil).Search(ctx, query)
	if err != nil {
		return "", err
	}
	for _, v := range res.Results {
		if v.VideoID != "" {
			return WatchURL(v.VideoID), nil
		}
	}
	return "", sources.ErrNoMatch
}

// Chain tries each searcher in order and returns the first hit.
type Chain struct {
	searchers []namedSearcher
	log       *zap.SugaredLogger
}

type namedSearcher struct {
	name string
	s    sources.Searcher
}

// NewChain builds the default chain: search client, yt-dlp, results page.
func NewChain() *Chain {
	return (&Chain{log: logging.Named("search")}).
		With("ytsearch", SearchFunc(APISearch)).
		With("yt-dlp", SearchFunc(ytdlp.Search)).
		With("page", NewPageSearcher())
}

// With appends a searcher to the chain.
func (c *Chain) With(name string, s sources.Searcher) *Chain {
	c.searchers = append(c.searchers, namedSearcher{name: name, s: s})
	return c
}

func (c *Chain) Search(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: empty query", sources.ErrNoMatch)
	}

	var errs []error
	for _, ns := range c.searchers {
		u, err := ns.s.Search(ctx, query)
		if err == nil && u != "" {
			return CleanVideoURL(u), nil
		}
		if err == nil {
			err = sources.ErrNoMatch
		}
		if c.log != nil {
			c.log.Debugw("searcher failed", "searcher", ns.name, "query", query, "error", err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", ns.name, err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", sources.ErrNoMatch
	}
	return "", errors.Join(errs...)
}
