// Package media defines shared types for the melody application.
package media

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// ErrInvalidDuration is returned by FormatTime for negative or non-numeric input.
var ErrInvalidDuration = errors.New("invalid duration")

// FolderKind groups folder categories in the catalog sidebar.
type FolderKind int

const (
	Library FolderKind = iota
	Artist
	Album
)

func (k FolderKind) String() string {
	switch k {
	case Library:
		return "library"
	case Artist:
		return "artist"
	case Album:
		return "album"
	default:
		return "unknown"
	}
}

// ParseFolderKind maps a config string to a FolderKind.
func ParseFolderKind(s string) (FolderKind, error) {
	switch strings.ToLower(s) {
	case "library", "":
		return Library, nil
	case "artist":
		return Artist, nil
	case "album":
		return Album, nil
	default:
		return Library, fmt.Errorf("unknown folder kind %q (valid: library, artist, album)", s)
	}
}

// Folder is a named catalog category mapped 1:1 to a server-side path.
type Folder struct {
	Name string `toml:"name" json:"name"`
	Kind string `toml:"kind" json:"kind"` // library | artist | album
	Path string `toml:"path" json:"path"` // e.g., "songs/ncs"
}

// EventKind identifies a notification emitted by a media handle.
type EventKind int

const (
	TimeUpdate EventKind = iota
	Ended
	PlaybackFailed
)

func (k EventKind) String() string {
	switch k {
	case TimeUpdate:
		return "timeupdate"
	case Ended:
		return "ended"
	case PlaybackFailed:
		return "playback-failed"
	default:
		return "unknown"
	}
}

// Event is an autonomous notification from a media handle.
type Event struct {
	Kind EventKind
	Err  error // set for PlaybackFailed
}

// FormatTime renders seconds as "MM:SS". Minutes are not capped at 59.
func FormatTime(seconds float64) (string, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidDuration, seconds)
	}
	minutes := int64(math.Floor(seconds / 60))
	rest := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", minutes, rest), nil
}

// DisplayTitle decodes a percent-encoded track identifier for display.
// Identifiers that fail to decode fall back to replacing "%20" only.
func DisplayTitle(track string) string {
	if s, err := url.PathUnescape(track); err == nil {
		return s
	}
	return strings.ReplaceAll(track, "%20", " ")
}
