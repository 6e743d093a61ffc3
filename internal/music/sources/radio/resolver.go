package radio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

var validContentTypes = []string{
	"audio/",
	"video/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/ogg",
	"application/x-scpls",
	"application/xspf+xml",
	"application/octet-stream",
}

// Probe is what a HEAD (or GET) on a stream URL told us.
type Probe struct {
	ContentType string
	FinalURL    string
	// Name is the icy-name header some stations send.
	Name string
}

// Prober checks stream URLs by their headers.
type Prober struct {
	Client *http.Client
}

func NewProber() *Prober {
	return &Prober{
		Client: &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Check returns the probe when rawURL looks like an audio stream or playlist.
func (p *Prober) Check(ctx context.Context, rawURL string) (Probe, error) {
	pr, err := p.fetch(ctx, rawURL)
	if err != nil {
		return Probe{}, fmt.Errorf("probe stream: %w", err)
	}
	if isAllowedType(pr.ContentType) || isLikelyPlaylist(pr.FinalURL) {
		return pr, nil
	}
	return Probe{}, fmt.Errorf("not an audio stream: content-type %q, url %s", pr.ContentType, pr.FinalURL)
}

func (p *Prober) fetch(ctx context.Context, rawURL string) (Probe, error) {
	resp, err := p.do(ctx, http.MethodHead, rawURL)
	if err != nil || resp.StatusCode >= 400 {
		if resp != nil {
			resp.Body.Close()
		}
		// Many stream servers reject HEAD.
		resp, err = p.do(ctx, http.MethodGet, rawURL)
		if err != nil {
			return Probe{}, err
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return Probe{}, fmt.Errorf("status %d", resp.StatusCode)
		}
	}
	defer resp.Body.Close()
	// A live stream never ends; read only a little before closing.
	_, _ = io.CopyN(io.Discard, resp.Body, 512)

	return Probe{
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
		Name:        strings.TrimSpace(resp.Header.Get("icy-name")),
	}, nil
}

func (p *Prober) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Icy-MetaData", "1")
	return p.Client.Do(req)
}

func isAllowedType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range validContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func isLikelyPlaylist(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u", ".m3u8", ".pls", ".xspf", ".asx":
		return true
	}
	return false
}
