package controller

import (
	"fmt"
	"log"

	"melody/internal/media"
)

// EventName identifies an input to the state machine.
type EventName string

const (
	FolderLoaded   EventName = "folder-loaded"
	TrackClick     EventName = "track-click"
	PlayPause      EventName = "play-pause"
	KeySpace       EventName = "key-space"
	PreviousTrack  EventName = "previous"
	NextTrack      EventName = "next"
	Ended          EventName = "ended"
	TimeUpdate     EventName = "timeupdate"
	SeekBar        EventName = "seek"
	VolumeInput    EventName = "volume"
	MuteClick      EventName = "mute"
	PlaybackFailed EventName = "playback-failed"
)

// Event is a UI or media notification. Only the fields relevant to Name are set.
type Event struct {
	Name EventName

	Folder string   // FolderLoaded
	Tracks []string // FolderLoaded
	Err    error    // FolderLoaded, PlaybackFailed

	Index      int // TrackClick
	Generation int // TrackClick

	Fraction float64 // SeekBar
	Percent  int     // VolumeInput
}

type handler func(c *Controller, e Event) error

// transitions maps every event to the state machine operation it triggers.
var transitions = map[EventName]handler{
	FolderLoaded: func(c *Controller, e Event) error {
		// The loader already logged the failure; an error means no tracks.
		tracks := e.Tracks
		if e.Err != nil {
			tracks = nil
		}
		return c.ReplacePlaylist(e.Folder, tracks)
	},
	TrackClick: func(c *Controller, e Event) error {
		if e.Generation != c.generation {
			log.Printf("controller: ignoring click on stale list %d (current %d)", e.Generation, c.generation)
			return nil
		}
		return c.PlayTrack(e.Index)
	},
	PlayPause:     func(c *Controller, _ Event) error { return c.TogglePlayPause() },
	KeySpace:      func(c *Controller, _ Event) error { return c.TogglePlayPause() },
	PreviousTrack: func(c *Controller, _ Event) error { return c.Previous() },
	NextTrack:     func(c *Controller, _ Event) error { return c.Next() },
	Ended:         func(c *Controller, _ Event) error { return c.OnTrackEnded() },
	TimeUpdate: func(c *Controller, _ Event) error {
		c.OnTimeUpdate()
		return nil
	},
	SeekBar:     func(c *Controller, e Event) error { return c.Seek(e.Fraction) },
	VolumeInput: func(c *Controller, e Event) error { return c.SetVolume(e.Percent) },
	MuteClick:   func(c *Controller, _ Event) error { return c.ToggleMute() },
	PlaybackFailed: func(c *Controller, e Event) error {
		c.OnPlaybackFailed(e.Err)
		return nil
	},
}

// Dispatch runs the transition for e. Errors are logged and returned; the
// controller is left in a consistent state either way.
func (c *Controller) Dispatch(e Event) error {
	h, ok := transitions[e.Name]
	if !ok {
		return fmt.Errorf("unknown event %q", e.Name)
	}
	if err := h(c, e); err != nil {
		log.Printf("controller: %s: %v", e.Name, err)
		return err
	}
	return nil
}

// FromMedia converts a media handle notification into a controller event.
func FromMedia(ev media.Event) Event {
	switch ev.Kind {
	case media.Ended:
		return Event{Name: Ended}
	case media.PlaybackFailed:
		return Event{Name: PlaybackFailed, Err: ev.Err}
	default:
		return Event{Name: TimeUpdate}
	}
}
