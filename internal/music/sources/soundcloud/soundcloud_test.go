package soundcloud

import (
	"context"
	"errors"
	"testing"

	"lonely/internal/music/sources"
	"lonely/internal/music/sources/ytdlp"
)

func TestMatch(t *testing.T) {
	s := New()
	tests := map[string]bool{
		"https://soundcloud.com/artist/track":     true,
		"https://m.soundcloud.com/artist/track":   true,
		"https://on.soundcloud.com/xyz":           true,
		"https://notsoundcloud.com/artist/track":  false,
		"https://www.youtube.com/watch?v=abc":     false,
		"soundcloud.com/artist/track (no scheme)": false,
	}
	for in, want := range tests {
		if got := s.Match(in); got != want {
			t.Errorf("Match(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	var probed string
	s := &Source{
		probe: func(_ context.Context, u string) (ytdlp.Metadata, error) {
			probed = u
			return ytdlp.Metadata{URL: "https://soundcloud.com/artist/track", Title: "Track", Duration: 200}, nil
		},
	}

	tr, err := s.Resolve(context.Background(), "https://soundcloud.com/artist/track?si=abc#t=1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if probed != "https://soundcloud.com/artist/track" {
		t.Errorf("probed %q", probed)
	}
	want := sources.Track{
		Title:    "Track",
		URL:      "https://soundcloud.com/artist/track",
		Duration: 200,
		Handle:   "https://soundcloud.com/artist/track",
		Source:   sources.SourceSoundCloud,
	}
	if tr != want {
		t.Errorf("Resolve = %+v, want %+v", tr, want)
	}
}

func TestResolveError(t *testing.T) {
	boom := errors.New("private track")
	s := &Source{probe: func(context.Context, string) (ytdlp.Metadata, error) { return ytdlp.Metadata{}, boom }}
	if _, err := s.Resolve(context.Background(), "https://soundcloud.com/a/b"); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
