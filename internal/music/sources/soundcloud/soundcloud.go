// Package soundcloud resolves SoundCloud links through yt-dlp.
package soundcloud

import (
	"context"
	"fmt"

	"lonely/internal/music/sources"
	"lonely/internal/music/sources/ytdlp"
)

// Source handles soundcloud.com track links.
type Source struct {
	probe     func(ctx context.Context, rawURL string) (ytdlp.Metadata, error)
	streamURL func(ctx context.Context, rawURL string) (string, error)
}

func New() *Source {
	return &Source{probe: ytdlp.Probe, streamURL: ytdlp.StreamURL}
}

func (s *Source) Name() string { return sources.SourceSoundCloud }

func (s *Source) Match(rawURL string) bool {
	return isSoundCloudURL(rawURL)
}

func (s *Source) Resolve(ctx context.Context, rawURL string) (sources.Track, error) {
	clean := cleanURL(rawURL)
	md, err := s.probe(ctx, clean)
	if err != nil {
		return sources.Track{}, fmt.Errorf("soundcloud %s: %w", clean, err)
	}
	page := md.URL
	if page == "" {
		page = clean
	}
	return sources.Track{
		Title:    md.Title,
		URL:      page,
		Duration: md.Duration,
		Handle:   page,
		Source:   sources.SourceSoundCloud,
	}, nil
}

func (s *Source) StreamURL(ctx context.Context, handle string) (string, error) {
	return s.streamURL(ctx, handle)
}
