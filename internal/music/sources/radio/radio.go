// Package radio plays plain audio stream URLs (internet radio, mp3 links).
package radio

import (
	"context"
	"net/url"
	"path"

	"lonely/internal/music/sources"
)

// Source accepts any http(s) URL whose headers say it is audio. It is the
// fallback for links no other source claims.
type Source struct {
	prober *Prober
}

func New() *Source {
	return &Source{prober: NewProber()}
}

func (s *Source) Name() string { return sources.SourceRadio }

func (s *Source) Match(rawURL string) bool {
	return sources.IsURL(rawURL)
}

// Resolve probes the URL. Streams have no known end, so Duration stays 0.
func (s *Source) Resolve(ctx context.Context, rawURL string) (sources.Track, error) {
	pr, err := s.prober.Check(ctx, rawURL)
	if err != nil {
		return sources.Track{}, err
	}
	return sources.Track{
		Title:  title(pr),
		URL:    rawURL,
		Handle: pr.FinalURL,
		Source: sources.SourceRadio,
	}, nil
}

func (s *Source) StreamURL(_ context.Context, handle string) (string, error) {
	return handle, nil
}

func title(pr Probe) string {
	if pr.Name != "" {
		return pr.Name
	}
	u, err := url.Parse(pr.FinalURL)
	if err != nil {
		return pr.FinalURL
	}
	if base := path.Base(u.Path); base != "/" && base != "." {
		return u.Host + "/" + base
	}
	return u.Host
}
