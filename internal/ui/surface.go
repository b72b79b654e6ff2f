package ui

import "melody/internal/controller"

// surface is the controller.View the TUI renders from. The controller writes
// to it during Update; View reads it.
type surface struct {
	nowPlaying string
	time       string
	seek       float64 // percent
	icon       controller.Icon
	muted      bool
	slider     int

	tracks     []string
	generation int
	highlight  int
	listDirty  bool
}

func newSurface(slider int) *surface {
	return &surface{
		time:      "00:00 / 00:00",
		icon:      controller.IconPlay,
		slider:    slider,
		highlight: -1,
	}
}

func (s *surface) SetNowPlaying(title string)       { s.nowPlaying = title }
func (s *surface) SetTime(text string)              { s.time = text }
func (s *surface) SetSeek(percent float64)          { s.seek = percent }
func (s *surface) SetPlayIcon(icon controller.Icon) { s.icon = icon }

func (s *surface) SetMuted(muted bool, sliderValue int) {
	s.muted = muted
	s.slider = sliderValue
}

func (s *surface) SetTracks(tracks []string, generation int) {
	s.tracks = tracks
	s.generation = generation
	s.listDirty = true
}

func (s *surface) SetHighlight(index int) {
	if s.highlight != index {
		s.highlight = index
		s.listDirty = true
	}
}
