// Package controller implements the player state machine: it owns the current
// playlist and mute state, drives a media handle in response to UI and media
// events, and keeps a View in sync with playback.
//
// A Controller is not safe for concurrent use. All methods are expected to run
// on a single event loop.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"melody/internal/catalog"
	"melody/internal/media"
)

var (
	// ErrTrackOutOfRange is returned when a track index is not in the current playlist.
	ErrTrackOutOfRange = errors.New("track index out of range")

	// ErrPlaybackFailure marks a media handle that rejected a request.
	ErrPlaybackFailure = errors.New("playback failure")
)

// zeroTime is shown whenever a new track is loaded.
const zeroTime = "00:00 / 00:00"

// Media is the playback capability the controller drives.
// Duration returns NaN while the duration is unknown.
type Media interface {
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

// Catalog lists folder contents and maps tracks to media sources.
type Catalog interface {
	Load(ctx context.Context, folder string) ([]string, error)
	TrackURL(folder, track string) string
}

// Icon is the affordance shown on the play/pause button.
type Icon int

const (
	IconPlay Icon = iota
	IconPause
)

func (i Icon) String() string {
	if i == IconPause {
		return "pause"
	}
	return "play"
}

// View is the presentation surface the controller writes to.
type View interface {
	SetNowPlaying(title string)
	SetTime(text string)
	SetSeek(percent float64)
	SetPlayIcon(icon Icon)
	SetMuted(muted bool, sliderValue int)
	// SetTracks discards the visible list and rebuilds it. Clicks on the new
	// items must carry generation.
	SetTracks(tracks []string, generation int)
	SetHighlight(index int)
}

// State is the coarse playback state.
type State int

const (
	Idle State = iota
	Loaded
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Options configures a Controller.
type Options struct {
	// VolumeDisplay is the slider value shown after unmuting.
	VolumeDisplay int
}

// Controller is the player state machine.
type Controller struct {
	catalog Catalog
	media   Media
	view    View

	folder     string
	playlist   []string
	generation int

	muted         bool
	preMuteVolume float64
	volumeDisplay int
}

// New creates a Controller in the Idle state.
func New(c Catalog, m Media, v View, opts Options) *Controller {
	return &Controller{
		catalog:       c,
		media:         m,
		view:          v,
		preMuteVolume: 1,
		volumeDisplay: opts.VolumeDisplay,
	}
}

// Folder returns the folder the current playlist was loaded from.
func (c *Controller) Folder() string { return c.folder }

// Playlist returns a copy of the current playlist.
func (c *Controller) Playlist() []string {
	return append([]string(nil), c.playlist...)
}

// Generation identifies the current visible list.
func (c *Controller) Generation() int { return c.generation }

// Muted reports whether the controller muted the media.
func (c *Controller) Muted() bool { return c.muted }

// CurrentIndex returns the playlist index of the loaded track, or -1.
// The media source is the ground truth; no index is stored.
func (c *Controller) CurrentIndex() int {
	return catalog.IndexOf(c.playlist, c.media.Source())
}

// State derives the playback state from the playlist and media handle.
func (c *Controller) State() State {
	if c.CurrentIndex() < 0 {
		return Idle
	}
	if c.media.Paused() {
		return Loaded
	}
	return Playing
}

// SelectFolder loads folder's catalog and replaces the playlist with it.
// A failed load leaves an empty playlist and returns the catalog error.
func (c *Controller) SelectFolder(ctx context.Context, folder string) error {
	tracks, err := c.catalog.Load(ctx, folder)
	if err != nil {
		tracks = nil
	}
	if rerr := c.ReplacePlaylist(folder, tracks); rerr != nil {
		return rerr
	}
	return err
}

// ReplacePlaylist swaps in a new playlist and rebuilds the visible list.
// The first track is loaded paused; an empty playlist leaves the controller Idle.
func (c *Controller) ReplacePlaylist(folder string, tracks []string) error {
	c.folder = folder
	c.playlist = append([]string(nil), tracks...)
	c.generation++
	c.view.SetTracks(c.Playlist(), c.generation)
	c.view.SetSeek(0)
	c.view.SetPlayIcon(IconPlay)

	if len(c.playlist) == 0 {
		if err := c.media.Pause(); err != nil {
			log.Printf("controller: pausing for empty playlist: %v", err)
		}
		c.view.SetNowPlaying("")
		c.view.SetTime(zeroTime)
		c.view.SetHighlight(-1)
		return nil
	}

	return c.load(0)
}

// PlayTrack loads the track at index and starts playback.
func (c *Controller) PlayTrack(index int) error {
	if index < 0 || index >= len(c.playlist) {
		return fmt.Errorf("%w: %d (playlist has %d)", ErrTrackOutOfRange, index, len(c.playlist))
	}
	if err := c.load(index); err != nil {
		return err
	}
	c.play()
	return nil
}

// TogglePlayPause resumes a paused track or pauses a playing one.
func (c *Controller) TogglePlayPause() error {
	if c.State() == Idle {
		return nil
	}
	if c.media.Paused() {
		c.play()
		return nil
	}
	if err := c.media.Pause(); err != nil {
		return fmt.Errorf("%w: pause: %v", ErrPlaybackFailure, err)
	}
	c.view.SetPlayIcon(IconPlay)
	return nil
}

// Previous plays the track before the current one, staying on the first track.
func (c *Controller) Previous() error {
	if len(c.playlist) == 0 {
		return nil
	}
	idx := c.CurrentIndex()
	if idx-1 >= 0 {
		return c.PlayTrack(idx - 1)
	}
	return c.PlayTrack(0)
}

// Next plays the track after the current one. On the last track it replays
// that track instead of wrapping; see OnTrackEnded for the wrapping variant.
func (c *Controller) Next() error {
	if len(c.playlist) == 0 {
		return nil
	}
	if err := c.media.Pause(); err != nil {
		log.Printf("controller: pausing before next: %v", err)
	}
	idx := c.CurrentIndex()
	if idx+1 < len(c.playlist) {
		return c.PlayTrack(idx + 1)
	}
	return c.PlayTrack(idx)
}

// OnTrackEnded advances after the media finished a track, wrapping to the
// first track at the end of the playlist.
func (c *Controller) OnTrackEnded() error {
	if len(c.playlist) == 0 {
		return nil
	}
	idx := c.CurrentIndex()
	if idx+1 < len(c.playlist) {
		return c.PlayTrack(idx + 1)
	}
	return c.PlayTrack(0)
}

// OnTimeUpdate refreshes the elapsed/duration text and the seek indicator.
func (c *Controller) OnTimeUpdate() {
	cur := c.media.CurrentTime()
	dur := c.media.Duration()

	c.view.SetTime(formatOrZero(cur) + " / " + formatOrZero(dur))

	percent := 0.0
	if knownDuration(dur) && !math.IsNaN(cur) {
		percent = clamp(cur/dur*100, 0, 100)
	}
	c.view.SetSeek(percent)
}

// Seek jumps to fraction (0.0–1.0) of the track. The indicator moves at once,
// ahead of the next time update.
func (c *Controller) Seek(fraction float64) error {
	if math.IsNaN(fraction) {
		return fmt.Errorf("seek fraction is not a number")
	}
	fraction = clamp(fraction, 0, 1)
	c.view.SetSeek(fraction * 100)

	dur := c.media.Duration()
	if !knownDuration(dur) {
		log.Printf("controller: seek to %.0f%% ignored: duration unknown", fraction*100)
		return nil
	}
	if err := c.media.SetCurrentTime(fraction * dur); err != nil {
		return fmt.Errorf("%w: seek: %v", ErrPlaybackFailure, err)
	}
	return nil
}

// SetVolume sets the media volume from a 0–100 slider value.
// The mute flag is left alone.
func (c *Controller) SetVolume(percent int) error {
	percent = int(clamp(float64(percent), 0, 100))
	if err := c.media.SetVolume(float64(percent) / 100); err != nil {
		return fmt.Errorf("%w: volume: %v", ErrPlaybackFailure, err)
	}
	return nil
}

// ToggleMute mutes (remembering the volume) or restores the remembered volume.
// When unmuted the slider shows the configured display value, not the
// restored volume.
func (c *Controller) ToggleMute() error {
	if c.muted {
		if err := c.media.SetVolume(c.preMuteVolume); err != nil {
			return fmt.Errorf("%w: unmute: %v", ErrPlaybackFailure, err)
		}
		c.muted = false
		c.view.SetMuted(false, c.volumeDisplay)
		return nil
	}

	prev := c.media.Volume()
	if err := c.media.SetVolume(0); err != nil {
		return fmt.Errorf("%w: mute: %v", ErrPlaybackFailure, err)
	}
	c.preMuteVolume = prev
	c.muted = true
	c.view.SetMuted(true, 0)
	return nil
}

// OnPlaybackFailed handles an asynchronous rejection from the media handle.
func (c *Controller) OnPlaybackFailed(err error) {
	c.playbackFailed(err)
}

// load points the media at the track at index without starting playback.
func (c *Controller) load(index int) error {
	track := c.playlist[index]
	if err := c.media.SetSource(c.catalog.TrackURL(c.folder, track)); err != nil {
		return fmt.Errorf("%w: loading %s: %v", ErrPlaybackFailure, track, err)
	}
	c.view.SetNowPlaying(media.DisplayTitle(track))
	c.view.SetTime(zeroTime)
	c.view.SetHighlight(index)
	return nil
}

func (c *Controller) play() {
	if err := c.media.Play(); err != nil {
		c.playbackFailed(err)
		return
	}
	c.view.SetPlayIcon(IconPause)
}

func (c *Controller) playbackFailed(err error) {
	log.Printf("controller: %v: %v", ErrPlaybackFailure, err)
	if perr := c.media.Pause(); perr != nil {
		log.Printf("controller: pausing after failure: %v", perr)
	}
	c.view.SetPlayIcon(IconPlay)
}

func formatOrZero(seconds float64) string {
	s, err := media.FormatTime(seconds)
	if err != nil {
		return "00:00"
	}
	return s
}

func knownDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
