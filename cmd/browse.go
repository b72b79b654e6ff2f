package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"melody/internal/catalog"
	"melody/internal/media"
	"melody/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list <folder>",
	Short: "Print the tracks in a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  listRun,
}

// trackInfo is the JSON shape of one catalog entry.
type trackInfo struct {
	Track string `json:"track"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func listRun(cmd *cobra.Command, args []string) error {
	folder := resolveFolder(args[0])
	loader := newLoader()

	tracks, err := loadTracks(cmd.Context(), loader, folder)
	if err != nil {
		return fmt.Errorf("listing %s: %w", folder, err)
	}
	debugf("found %d tracks in %s", len(tracks), folder)

	if flagJSON {
		out := make([]trackInfo, len(tracks))
		for i, t := range tracks {
			out[i] = trackInfo{Track: t, Title: media.DisplayTitle(t), URL: loader.TrackURL(folder, t)}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(tracks) == 0 {
		fmt.Fprintf(os.Stderr, "No tracks found in %s.\n", folder)
		return nil
	}
	for _, t := range tracks {
		fmt.Fprintln(cmd.OutOrStdout(), media.DisplayTitle(t))
	}
	return nil
}

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Print the configured folder categories",
	Args:  cobra.NoArgs,
	RunE:  foldersRun,
}

func foldersRun(cmd *cobra.Command, args []string) error {
	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.Folders)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tPATH")
	for _, f := range cfg.Folders {
		kind, _ := media.ParseFolderKind(f.Kind)
		fmt.Fprintf(w, "%s\t%s\t%s\n", kind, f.Name, f.Path)
	}
	return w.Flush()
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a folder and track with fzf, then play it",
	Args:  cobra.NoArgs,
	RunE:  pickRun,
}

func pickRun(cmd *cobra.Command, args []string) error {
	if len(cfg.Folders) == 0 {
		return fmt.Errorf("no folders configured")
	}

	names := make([]string, len(cfg.Folders))
	for i, f := range cfg.Folders {
		kind, _ := media.ParseFolderKind(f.Kind)
		names[i] = fmt.Sprintf("[%s] %s", kind, f.Name)
	}
	idx, err := ui.Select("Folder", names)
	if err != nil {
		return err
	}
	folder := cfg.Folders[idx].Path
	debugf("picked folder: %s", folder)

	tracks, err := loadTracks(cmd.Context(), newLoader(), folder)
	if err != nil {
		return fmt.Errorf("listing %s: %w", folder, err)
	}
	if len(tracks) == 0 {
		fmt.Printf("No tracks found in %s.\n", folder)
		return nil
	}

	titles := make([]string, len(tracks))
	for i, t := range tracks {
		titles[i] = media.DisplayTitle(t)
	}
	track, err := ui.Select("Track", titles)
	if err != nil {
		return err
	}
	debugf("picked track: %s", tracks[track])

	return startPlayer(cmd.Context(), folder, track)
}

// loadTracks fetches a folder's catalog behind a spinner when stdout is a
// terminal.
func loadTracks(ctx context.Context, loader *catalog.Loader, folder string) ([]string, error) {
	var tracks []string
	load := func(ctx context.Context) error {
		var err error
		tracks, err = loader.Load(ctx, folder)
		return err
	}

	if flagJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		err := load(ctx)
		return tracks, err
	}
	err := spinner.New().
		Title("Loading " + folder + "...").
		Context(ctx).
		ActionWithErr(load).
		Run()
	return tracks, err
}
