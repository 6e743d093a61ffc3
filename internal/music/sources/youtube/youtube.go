package youtube

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kkdai/youtube/v2"

	"lonely/internal/music/sources"
)

// Source resolves YouTube links with the kkdai client.
type Source struct {
	client *youtube.Client
}

func New() *Source {
	return &Source{client: &youtube.Client{}}
}

func (s *Source) Name() string { return sources.SourceYouTube }

func (s *Source) Match(rawURL string) bool {
	return isYouTubeURL(rawURL)
}

func (s *Source) Resolve(ctx context.Context, rawURL string) (sources.Track, error) {
	id, err := youtube.ExtractVideoID(strings.TrimSpace(rawURL))
	if err != nil {
		return sources.Track{}, fmt.Errorf("%w: %v", sources.ErrNoMatch, err)
	}
	video, err := s.client.GetVideoContext(ctx, id)
	if err != nil {
		return sources.Track{}, fmt.Errorf("youtube video %s: %w", id, err)
	}

	duration := int(math.Round(video.Duration.Seconds()))
	if video.HLSManifestURL != "" {
		duration = 0
	}
	return sources.Track{
		Title:    video.Title,
		URL:      WatchURL(id),
		Duration: duration,
		Handle:   id,
		Source:   sources.SourceYouTube,
	}, nil
}

// StreamURL picks the audio format with the highest bitrate. Live videos
// are played from their HLS manifest.
func (s *Source) StreamURL(ctx context.Context, id string) (string, error) {
	video, err := s.client.GetVideoContext(ctx, id)
	if err != nil {
		return "", fmt.Errorf("youtube video %s: %w", id, err)
	}
	if video.HLSManifestURL != "" {
		return video.HLSManifestURL, nil
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", errors.New("no audio formats found for video")
	}
	best := &formats[0]
	for i := range formats {
		if formats[i].Bitrate > best.Bitrate {
			best = &formats[i]
		}
	}

	link, err := s.client.GetStreamURLContext(ctx, video, best)
	if err != nil {
		return "", fmt.Errorf("youtube stream url: %w", err)
	}
	return link, nil
}
