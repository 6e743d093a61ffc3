package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var youtubeURLPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.|music\.)?(?:youtube\.com|youtu\.be)/\S+`)

func isYouTubeURL(s string) bool {
	return youtubeURLPattern.MatchString(strings.TrimSpace(s))
}

// WatchURL is the canonical page URL for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// CleanVideoURL drops everything but the video id from a YouTube link, so
// timestamps and playlist parameters do not leak into the queue.
func CleanVideoURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	switch u.Hostname() {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return WatchURL(id)
		}
	case "www.youtube.com", "youtube.com", "m.youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			if id := u.Query().Get("v"); id != "" {
				return WatchURL(id)
			}
		}
		if id, ok := strings.CutPrefix(u.Path, "/shorts/"); ok && id != "" {
			return WatchURL(strings.Trim(id, "/"))
		}
	}
	return raw
}
