// Package player provides media handles backed by external players.
// Players are launched with exec.Command and explicit argument slices,
// never through a shell.
package player

import (
	"context"

	"melody/internal/media"
)

// Player is a long-running audio player the controller can drive.
type Player interface {
	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool

	// Start launches the player and connects to it.
	Start(ctx context.Context) error

	// Close stops the player and releases its resources.
	Close() error

	// Events delivers time updates, track ends and playback failures.
	// The channel is closed when the connection to the player ends.
	Events() <-chan media.Event

	Source() string
	SetSource(src string) error
	Play() error
	Pause() error
	Paused() bool
	CurrentTime() float64
	SetCurrentTime(seconds float64) error
	Duration() float64
	Volume() float64
	SetVolume(v float64) error
}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return NewMPV()
	default:
		return NewMPV() // Default to mpv
	}
}
