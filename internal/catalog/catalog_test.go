package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"melody/internal/httputil"
)

const listingPage = `<html><body><ul>
<li><a href="a.mp3">a.mp3</a></li>
<li><a href="notes.txt">notes.txt</a></li>
<li><a href="b.mp3">b.mp3</a></li>
</ul></body></html>`

func newTestLoader(url string, retries int) *Loader {
	client := httputil.NewClient(httputil.Options{Timeout: 5 * time.Second, Retries: retries})
	return NewLoader(url, client, nil)
}

func TestLoad(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	tracks, err := newTestLoader(srv.URL, 0).Load(context.Background(), "songs/ncs")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if gotPath != "/songs/ncs/" {
		t.Errorf("requested %q, want /songs/ncs/", gotPath)
	}
	assertTracks(t, tracks, []string{"a.mp3", "b.mp3"})
}

func TestLoadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	tracks, err := newTestLoader(srv.URL, 0).Load(context.Background(), "songs/missing")
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("Load() error = %v, want ErrCatalogUnavailable", err)
	}
	if len(tracks) != 0 {
		t.Errorf("expected no tracks, got %q", tracks)
	}
}

func TestLoadServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestLoader(url, 0).Load(context.Background(), "songs/ncs")
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("Load() error = %v, want ErrCatalogUnavailable", err)
	}
}

func TestLoadRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	tracks, err := newTestLoader(srv.URL, 2).Load(context.Background(), "songs/ncs")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
	assertTracks(t, tracks, []string{"a.mp3", "b.mp3"})
}

func TestLoadInvalidFolder(t *testing.T) {
	_, err := newTestLoader("http://127.0.0.1:1", 0).Load(context.Background(), "../secrets")
	if err == nil {
		t.Fatal("Load() should reject traversal")
	}
	if errors.Is(err, ErrCatalogUnavailable) {
		t.Error("validation errors should not be reported as unavailable")
	}
}

func TestTrackURL(t *testing.T) {
	l := newTestLoader("http://127.0.0.1:3000", 0)
	got := l.TrackURL("songs/ncs", "My%20Song.mp3")
	if got != "http://127.0.0.1:3000/songs/ncs/My%20Song.mp3" {
		t.Errorf("TrackURL() = %q", got)
	}
	if IndexOf([]string{"x.mp3", "My%20Song.mp3"}, got) != 1 {
		t.Error("TrackURL result should resolve back to its track")
	}
}
