package media

import (
	"errors"
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "00:00"},
		{3, "00:03"},
		{59.9, "00:59"},
		{60, "01:00"},
		{65, "01:05"},
		{125.7, "02:05"},
		{3599, "59:59"},
		{6000, "100:00"},
	}

	for _, tt := range tests {
		got, err := FormatTime(tt.input)
		if err != nil {
			t.Errorf("FormatTime(%v) error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatTimeInvalid(t *testing.T) {
	for _, v := range []float64{-1, -0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := FormatTime(v); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("FormatTime(%v) error = %v, want ErrInvalidDuration", v, err)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a.mp3", "a.mp3"},
		{"My%20Song.mp3", "My Song.mp3"},
		{"Tum%20Hi%20Ho%20%28Live%29.mp3", "Tum Hi Ho (Live).mp3"},
		{"broken%2%20name.mp3", "broken%2 name.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayTitle(tt.input); got != tt.expected {
				t.Errorf("DisplayTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFolderKind(t *testing.T) {
	tests := []struct {
		input   string
		want    FolderKind
		wantErr bool
	}{
		{"library", Library, false},
		{"", Library, false},
		{"Artist", Artist, false},
		{"album", Album, false},
		{"podcast", Library, true},
	}

	for _, tt := range tests {
		got, err := ParseFolderKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFolderKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFolderKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
