package source_resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lonely/internal/music/queue"
	"lonely/internal/music/sources"
)

type fakeSource struct {
	name     string
	prefix   string
	resolved []string
	err      error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Match(rawURL string) bool {
	return strings.HasPrefix(rawURL, f.prefix)
}

func (f *fakeSource) Resolve(_ context.Context, rawURL string) (sources.Track, error) {
	f.resolved = append(f.resolved, rawURL)
	if f.err != nil {
		return sources.Track{}, f.err
	}
	return sources.Track{Title: f.name + " track", URL: rawURL, Duration: 61, Handle: "h:" + rawURL, Source: f.name}, nil
}

func (f *fakeSource) StreamURL(_ context.Context, handle string) (string, error) {
	return "media:" + handle, nil
}

type fakeSearcher struct {
	calls int
	errs  []error
	url   string
}

func (f *fakeSearcher) Search(context.Context, string) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return f.url, nil
}

func newTestResolver() (*SourceResolver, *fakeSource, *fakeSource, *fakeSearcher) {
	yt := &fakeSource{name: "youtube", prefix: "https://youtube.test/"}
	fallback := &fakeSource{name: "radio", prefix: "http"}
	search := &fakeSearcher{url: "https://youtube.test/found"}
	r := NewWith([]sources.Source{yt}, fallback, search, yt, 1000)
	r.retry.InitialDelay = 0
	r.retry.Jitter = false
	return r, yt, fallback, search
}

func TestResolveDirectURL(t *testing.T) {
	r, yt, fallback, search := newTestResolver()

	song, err := r.Resolve(context.Background(), " https://youtube.test/abc ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := queue.Song{Title: "youtube track", URL: "https://youtube.test/abc", Duration: 61, Stream: "h:https://youtube.test/abc", Source: "youtube"}
	if song != want {
		t.Errorf("song = %+v, want %+v", song, want)
	}
	if search.calls != 0 || len(fallback.resolved) != 0 || len(yt.resolved) != 1 {
		t.Error("direct URL went through search or fallback")
	}
}

func TestResolveUnknownURLUsesFallback(t *testing.T) {
	r, _, fallback, _ := newTestResolver()

	song, err := r.Resolve(context.Background(), "http://radio.test/live")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if song.Source != "radio" || len(fallback.resolved) != 1 {
		t.Errorf("song = %+v", song)
	}
}

func TestResolveBrokenURLFallsBackToSearch(t *testing.T) {
	r, yt, _, search := newTestResolver()
	yt.err = errors.New("video unavailable")
	search.url = "https://soundcloud.test/found"
	sc := &fakeSource{name: "soundcloud", prefix: "https://soundcloud.test/"}
	r.search = sc

	song, err := r.Resolve(context.Background(), "https://youtube.test/broken")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if search.calls != 1 || len(yt.resolved) != 1 {
		t.Errorf("search calls = %d, youtube resolves = %d", search.calls, len(yt.resolved))
	}
	if song.Source != "soundcloud" || song.URL != "https://soundcloud.test/found" {
		t.Errorf("song = %+v", song)
	}
}

func TestResolveCancelledURLDoesNotSearch(t *testing.T) {
	r, yt, _, search := newTestResolver()
	yt.err = context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Resolve(ctx, "https://youtube.test/abc"); err == nil {
		t.Fatal("expected an error")
	}
	if search.calls != 0 {
		t.Errorf("search calls = %d, want 0", search.calls)
	}
}

func TestResolveSearchTakesFirstHit(t *testing.T) {
	r, yt, _, search := newTestResolver()

	song, err := r.Resolve(context.Background(), "never gonna give you up")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if song.URL != "https://youtube.test/found" || search.calls != 1 || len(yt.resolved) != 1 {
		t.Errorf("song = %+v, calls = %d", song, search.calls)
	}
}

func TestResolveSearchRetriesTransientErrors(t *testing.T) {
	r, _, _, search := newTestResolver()
	search.errs = []error{errors.New("connection reset")}

	if _, err := r.Resolve(context.Background(), "query"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if search.calls != 2 {
		t.Errorf("calls = %d, want 2", search.calls)
	}
}

func TestResolveSearchNoMatchIsNotRetried(t *testing.T) {
	r, _, _, search := newTestResolver()
	search.errs = []error{sources.ErrNoMatch, sources.ErrNoMatch, sources.ErrNoMatch}

	_, err := r.Resolve(context.Background(), "query")
	if !errors.Is(err, sources.ErrNoMatch) {
		t.Fatalf("err = %v", err)
	}
	if search.calls != 1 {
		t.Errorf("calls = %d, want 1", search.calls)
	}
}

func TestResolveEmptyQuery(t *testing.T) {
	r, _, _, _ := newTestResolver()
	if _, err := r.Resolve(context.Background(), "   "); err == nil {
		t.Fatal("expected an error")
	}
}

func TestStreamURLDispatchesBySource(t *testing.T) {
	r, _, _, _ := newTestResolver()

	got, err := r.StreamURL(context.Background(), queue.Song{Source: "radio", Stream: "http://x"})
	if err != nil || got != "media:http://x" {
		t.Errorf("StreamURL = %q, %v", got, err)
	}
	if _, err := r.StreamURL(context.Background(), queue.Song{Source: "bandcamp"}); err == nil {
		t.Error("unknown source accepted")
	}
}
