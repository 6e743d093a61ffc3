// Package sources turns URLs into playable tracks. Each Source knows one
// kind of link and how to get a media URL ffmpeg can open for it.
package sources

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

const (
	SourceYouTube    = "youtube"
	SourceSoundCloud = "soundcloud"
	SourceRadio      = "radio"
)

var ErrNoMatch = errors.New("no track found")

// Track is what a source knows about one playable item.
type Track struct {
	Title string
	// URL is the canonical page URL shown to users.
	URL string
	// Duration in seconds; 0 for live streams.
	Duration int
	// Handle is passed back to StreamURL at play time.
	Handle string
	Source string
}

type Source interface {
	Name() string
	// Match reports whether rawURL belongs to this source.
	Match(rawURL string) bool
	Resolve(ctx context.Context, rawURL string) (Track, error)
	// StreamURL returns a media URL for handle. Media URLs expire, so this
	// is called right before playback.
	StreamURL(ctx context.Context, handle string) (string, error)
}

// Searcher finds the page URL of the best match for a free text query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// IsURL reports whether s is an absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
