package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"lonely/internal/music/sources"
)

var videoPattern = regexp.MustCompile(`"url":"/watch\?v=([a-zA-Z0-9_-]{11})`)

// PageSearcher scrapes the YouTube results page. It is the last resort when
// neither the search API client nor yt-dlp produce a result.
type PageSearcher struct {
	BaseURL string
	Client  *http.Client
}

func NewPageSearcher() *PageSearcher {
	return &PageSearcher{
		BaseURL: "https://www.youtube.com",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PageSearcher) Search(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/results?search_query=%s", p.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube search page returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	m := videoPattern.FindSubmatch(body)
	if m == nil {
		return "", sources.ErrNoMatch
	}
	return WatchURL(string(m[1])), nil
}
