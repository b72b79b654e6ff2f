// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"melody/internal/httputil"
	"melody/internal/media"
)

// Config holds all application configuration.
type Config struct {
	Base          string         `toml:"base"`
	Player        string         `toml:"player"`
	DefaultFolder string         `toml:"default_folder"`
	Extensions    []string       `toml:"extensions"`
	VolumeDisplay int            `toml:"volume_display"`
	Retries       int            `toml:"retries"`
	Timeout       int            `toml:"timeout"` // seconds
	LogFile       string         `toml:"log_file"`
	Debug         bool           `toml:"debug"`
	Folders       []media.Folder `toml:"folders"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Base:          "http://127.0.0.1:3000",
		Player:        "mpv",
		DefaultFolder: "songs/ncs",
		Extensions:    []string{".mp3"},
		VolumeDisplay: 10,
		Retries:       2,
		Timeout:       30,
		Debug:         false,
		Folders:       DefaultFolders(),
	}
}

// DefaultFolders returns the built-in library, artist and album categories.
func DefaultFolders() []media.Folder {
	return []media.Folder{
		{Name: "Library", Kind: "library", Path: "songs/ncs"},

		{Name: "Best of K.K", Kind: "artist", Path: "songs/BestOFK.K"},
		{Name: "Best of Arijit Singh", Kind: "artist", Path: "songs/BestOfArijitSingh"},
		{Name: "Best of A.R. Rahman", Kind: "artist", Path: "songs/BestOfA.RRahman"},
		{Name: "Best of Sachin-Jigar", Kind: "artist", Path: "songs/BestofSachinjigar"},
		{Name: "Best of Anirudh", Kind: "artist", Path: "songs/BestofAnirudha"},
		{Name: "Best of Vishal Mishra", Kind: "artist", Path: "songs/BestofVishalMishra"},
		{Name: "Best of Atif Aslam", Kind: "artist", Path: "songs/BestofAtifAslam"},

		{Name: "Sajni", Kind: "album", Path: "songs/Sajni"},
		{Name: "Zaroor", Kind: "album", Path: "songs/Zarror"},
		{Name: "Heeriye", Kind: "album", Path: "songs/Heeriye"},
		{Name: "Tujh Mein", Kind: "album", Path: "songs/TujhMey"},
		{Name: "Suniya Suniya", Kind: "album", Path: "songs/SuniyaSuniya"},
		{Name: "Channa Ve", Kind: "album", Path: "songs/ChannaVe"},
		{Name: "Softly", Kind: "album", Path: "songs/Softly"},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "melody"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "melody"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
// A [[folders]] table in the file replaces the built-in categories entirely.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	defaults := cfg.Folders
	cfg.Folders = nil
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if !md.IsDefined("folders") {
		cfg.Folders = defaults
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Base == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if err := httputil.ValidateURL(c.Base); err != nil {
		return fmt.Errorf("base URL: %w", err)
	}

	if strings.ToLower(c.Player) != "mpv" {
		return fmt.Errorf("unsupported player %q (valid: mpv)", c.Player)
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("at least one playable extension is required")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	if c.VolumeDisplay < 0 || c.VolumeDisplay > 100 {
		return fmt.Errorf("volume_display %d out of range 0-100", c.VolumeDisplay)
	}
	if c.Retries < 0 || c.Retries > 10 {
		return fmt.Errorf("retries %d out of range 0-10", c.Retries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}

	if err := httputil.ValidateFolder(c.DefaultFolder); err != nil {
		return fmt.Errorf("default_folder: %w", err)
	}

	seen := make(map[string]bool, len(c.Folders))
	for _, f := range c.Folders {
		if f.Name == "" {
			return fmt.Errorf("folder %q has no name", f.Path)
		}
		if _, err := media.ParseFolderKind(f.Kind); err != nil {
			return fmt.Errorf("folder %q: %w", f.Name, err)
		}
		if err := httputil.ValidateFolder(f.Path); err != nil {
			return fmt.Errorf("folder %q: %w", f.Name, err)
		}
		if seen[f.Path] {
			return fmt.Errorf("folder path %q listed twice", f.Path)
		}
		seen[f.Path] = true
	}

	return nil
}

// FindFolder returns the category whose name or path matches s (case-insensitive).
func (c *Config) FindFolder(s string) (media.Folder, bool) {
	for _, f := range c.Folders {
		if strings.EqualFold(f.Name, s) || f.Path == s {
			return f, true
		}
	}
	return media.Folder{}, false
}

// LogPath returns the path of the debug log written while the TUI is running.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "melody", "debug.log"), nil
}
