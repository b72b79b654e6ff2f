package httputil

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"valid HTTP", "http://127.0.0.1:3000/songs/ncs/", false},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"file rejected", "file:///etc/passwd", true},
		{"empty string", "", true},
		{"no host", "http://", true},
		{"valid with query", "https://example.com/path?q=test&a=b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFolder(t *testing.T) {
	tests := []struct {
		name    string
		folder  string
		wantErr bool
	}{
		{"library", "songs/ncs", false},
		{"dotted artist", "songs/BestOFK.K", false},
		{"dotted album", "songs/BestOfA.RRahman", false},
		{"space", "songs/My Album", false},
		{"single segment", "music", false},
		{"empty", "", true},
		{"parent traversal", "songs/../../etc", true},
		{"dot segment", "songs/./ncs", true},
		{"leading slash", "/songs/ncs", true},
		{"trailing slash", "songs/ncs/", true},
		{"double slash", "songs//ncs", true},
		{"query injection", "songs/ncs?x=1", true},
		{"backslash", `songs\ncs`, true},
		{"newline", "songs/ncs\n", true},
		{"too long", strings.Repeat("a", 300), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFolder(tt.folder)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFolder(%q) error = %v, wantErr %v", tt.folder, err, tt.wantErr)
			}
		})
	}
}

func TestFolderURL(t *testing.T) {
	tests := []struct {
		base, folder string
		expected     string
	}{
		{"http://127.0.0.1:3000", "songs/ncs", "http://127.0.0.1:3000/songs/ncs/"},
		{"http://127.0.0.1:3000/", "songs/ncs", "http://127.0.0.1:3000/songs/ncs/"},
		{"http://host", "songs/My Album", "http://host/songs/My%20Album/"},
	}

	for _, tt := range tests {
		if got := FolderURL(tt.base, tt.folder); got != tt.expected {
			t.Errorf("FolderURL(%q, %q) = %q, want %q", tt.base, tt.folder, got, tt.expected)
		}
	}
}

func TestTrackURLKeepsEncoding(t *testing.T) {
	got := TrackURL("http://host", "songs/ncs", "My%20Song.mp3")
	want := "http://host/songs/ncs/My%20Song.mp3"
	if got != want {
		t.Errorf("TrackURL() = %q, want %q", got, want)
	}
}
