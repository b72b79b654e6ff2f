package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"melody/internal/controller"
	"melody/internal/player"
	"melody/internal/ui"
)

// playRun is the default command: melody [folder]
func playRun(cmd *cobra.Command, args []string) error {
	folder := cfg.DefaultFolder
	if len(args) == 1 {
		folder = args[0]
	}
	return startPlayer(cmd.Context(), resolveFolder(folder), -1)
}

// startPlayer opens the TUI on folder. When playIndex is not negative that
// track starts playing as soon as the folder has loaded.
func startPlayer(ctx context.Context, folder string, playIndex int) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("melody needs an interactive terminal; use \"melody list\" for scripted output")
	}

	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}
	debugf("starting %s", p.Name())
	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("starting player: %w", err)
	}
	defer p.Close()

	closeLog, err := redirectLog()
	if err != nil {
		return err
	}
	defer closeLog()

	loader := newLoader()
	debugf("base: %s, folder: %s", loader.Base(), folder)

	opts := ui.Options{
		Folders:       cfg.Folders,
		InitialFolder: folder,
		PlayIndex:     playIndex,
		VolumeDisplay: cfg.VolumeDisplay,
	}
	view := ui.NewView(opts)
	ctrl := controller.New(loader, p, view, controller.Options{VolumeDisplay: cfg.VolumeDisplay})
	model := ui.New(ctx, ctrl, loader, view, p.Events(), opts)

	return ui.Run(ctx, model)
}

// redirectLog moves log output off the terminal while the TUI owns it:
// to the log file in debug mode, otherwise nowhere.
func redirectLog() (func(), error) {
	restore := func() { log.SetOutput(os.Stderr) }

	if !cfg.Debug {
		log.SetOutput(io.Discard)
		return restore, nil
	}

	path, err := cfg.LogPath()
	if err != nil {
		return nil, fmt.Errorf("resolving log path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "melody")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return func() {
		f.Close()
		restore()
	}, nil
}
