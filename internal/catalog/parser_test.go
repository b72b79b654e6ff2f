package catalog

import (
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func loadTestDoc(t *testing.T, filename string) *goquery.Document {
	t.Helper()
	data, err := os.ReadFile("testdata/" + filename)
	if err != nil {
		t.Fatalf("reading test fixture %s: %v", filename, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("parsing test fixture %s: %v", filename, err)
	}
	return doc
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func assertTracks(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tracks %q, want %d %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("track[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseListingRelative(t *testing.T) {
	doc := loadTestDoc(t, "listing_relative.html")
	tracks := parseListing(doc, mustParseURL(t, "http://127.0.0.1:3000/songs/ncs/"), []string{".mp3"})

	assertTracks(t, tracks, []string{
		"Alan%20Walker%20-%20Fade.mp3",
		"Cartoon%20-%20On%20%26%20On.mp3",
		"Janji%20-%20Heroes%20Tonight.MP3",
		"Spektrem%20-%20Shine.mp3",
	})
}

func TestParseListingAbsolute(t *testing.T) {
	doc := loadTestDoc(t, "listing_absolute.html")
	tracks := parseListing(doc, mustParseURL(t, "http://127.0.0.1:3000/songs/Softly/"), []string{".mp3"})

	// Links to other folders, other hosts and non-audio files are dropped;
	// query strings are not part of the identifier.
	assertTracks(t, tracks, []string{
		"Softly.mp3",
		"Softly%20(Slowed).mp3",
		"Softly%20(Live).mp3",
	})
}

func TestParseListingExtensions(t *testing.T) {
	doc := loadTestDoc(t, "listing_relative.html")
	tracks := parseListing(doc, mustParseURL(t, "http://127.0.0.1:3000/songs/ncs/"), []string{".jpg", ".json"})

	assertTracks(t, tracks, []string{"cover.jpg", "info.json"})
}

func TestParseListingEmpty(t *testing.T) {
	doc := loadTestDoc(t, "listing_empty.html")
	tracks := parseListing(doc, mustParseURL(t, "http://127.0.0.1:3000/songs/Zarror/"), []string{".mp3"})

	if tracks == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(tracks) != 0 {
		t.Errorf("expected no tracks, got %q", tracks)
	}
}

func TestParseListingMalicious(t *testing.T) {
	doc := loadTestDoc(t, "listing_malicious.html")
	tracks := parseListing(doc, mustParseURL(t, "http://127.0.0.1:3000/songs/ncs/"), []string{".mp3"})

	// Hostile names stay opaque identifiers; scheme and traversal links are dropped.
	assertTracks(t, tracks, []string{
		"%27%3B%20rm%20-rf%20%2F%20%23.mp3",
		"$(whoami).mp3",
	})
}

func TestIndexOf(t *testing.T) {
	tracks := []string{"a.mp3", "b.mp3", "My%20Song.mp3"}

	tests := []struct {
		src      string
		expected int
	}{
		{"http://127.0.0.1:3000/songs/ncs/a.mp3", 0},
		{"http://127.0.0.1:3000/songs/ncs/b.mp3", 1},
		{"http://127.0.0.1:3000/songs/ncs/My%20Song.mp3", 2},
		{"http://127.0.0.1:3000/songs/other/b.mp3", 1},
		{"http://127.0.0.1:3000/songs/ncs/c.mp3", -1},
		{"b.mp3", 1},
		{"", -1},
	}

	for _, tt := range tests {
		if got := IndexOf(tracks, tt.src); got != tt.expected {
			t.Errorf("IndexOf(%q) = %d, want %d", tt.src, got, tt.expected)
		}
	}
}
