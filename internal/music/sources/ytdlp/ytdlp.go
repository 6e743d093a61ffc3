// Package ytdlp wraps the yt-dlp binary for metadata, media URLs and search.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

var ErrNoOutput = errors.New("yt-dlp returned no usable output")

type Metadata struct {
	URL      string
	Title    string
	Uploader string
	ID       string
	// Duration in whole seconds, 0 when unknown or live.
	Duration int
}

const metadataTemplate = "%(webpage_url)s\t%(title)s\t%(uploader)s\t%(duration)s\t%(id)s"

// Probe reads the metadata of a single media page.
func Probe(ctx context.Context, rawURL string) (Metadata, error) {
	res, err := ytdlp.New().
		Print(metadataTemplate).
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Run(ctx, "--skip-download", rawURL)
	if err != nil {
		return Metadata{}, runError(res, err)
	}
	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if md, err := ParseMetadataLine(line); err == nil {
			return md, nil
		}
	}
	return Metadata{}, ErrNoOutput
}

// StreamURL returns a direct media URL of the best audio format.
func StreamURL(ctx context.Context, rawURL string) (string, error) {
	res, err := ytdlp.New().
		Format("bestaudio/best").
		Print("%(url)s").
		NoPlaylist().
		NoWarnings().
		IgnoreConfig().
		Run(ctx, "--skip-download", rawURL)
	if err != nil {
		return "", runError(res, err)
	}
	link := firstLine(res.Stdout)
	if link == "" || link == "NA" {
		return "", ErrNoOutput
	}
	return link, nil
}

// Search returns the page URL of the first YouTube result for query.
func Search(ctx context.Context, query string) (string, error) {
	res, err := ytdlp.New().
		FlatPlaylist().
		Print("%(url)s\t%(title)s").
		PlaylistItems("1").
		NoWarnings().
		IgnoreConfig().
		Run(ctx, "ytsearch1:"+query)
	if err != nil {
		return "", runError(res, err)
	}
	url, _, _ := strings.Cut(firstLine(res.Stdout), "\t")
	if url == "" || url == "NA" {
		return "", ErrNoOutput
	}
	return url, nil
}

// ParseMetadataLine parses one line printed with metadataTemplate.
func ParseMetadataLine(line string) (Metadata, error) {
	parts := strings.Split(strings.TrimSpace(line), "\t")
	if len(parts) < 5 {
		return Metadata{}, fmt.Errorf("metadata line has %d fields", len(parts))
	}
	md := Metadata{
		URL:      na(parts[0]),
		Title:    na(parts[1]),
		Uploader: na(parts[2]),
		ID:       na(parts[4]),
	}
	if d, err := strconv.ParseFloat(parts[3], 64); err == nil && d > 0 {
		md.Duration = int(math.Round(d))
	}
	if md.URL == "" || md.Title == "" {
		return Metadata{}, errors.New("metadata line misses url or title")
	}
	return md, nil
}

func na(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

func runError(res *ytdlp.Result, err error) error {
	if res != nil {
		if msg := firstLine(res.Stderr); msg != "" {
			return fmt.Errorf("yt-dlp: %w: %s", err, msg)
		}
	}
	return fmt.Errorf("yt-dlp: %w", err)
}
