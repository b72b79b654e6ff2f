// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"melody/internal/catalog"
	"melody/internal/config"
	"melody/internal/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagBase   string
	flagPlayer string
	flagFolder string
	flagJSON   bool
	flagDebug  bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "melody [folder]",
	Short: "Play music from a static file server in the terminal",
	Long: `Melody browses the directory listings of a static file server, builds a
playlist from the audio files it finds and plays them through mpv.

The folder may be a configured category name (see "melody folders") or a
path under the server root such as songs/ncs.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              playRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBase, "base", "b", "", "Base URL of the music server")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv")
	rootCmd.PersistentFlags().StringVarP(&flagFolder, "folder", "f", "", "Folder to open (default: default_folder from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output as JSON where supported")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging (to the log file while the player is open)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "melody %s\n", Version)
	},
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagBase != "" {
		cfg.Base = flagBase
	}
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagFolder != "" {
		cfg.DefaultFolder = flagFolder
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	if cfg.Debug {
		log.SetPrefix("[melody] ")
	} else {
		log.SetFlags(0)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}

// newLoader builds the catalog loader from the merged configuration.
func newLoader() *catalog.Loader {
	client := httputil.NewClient(httputil.Options{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
		Retries: cfg.Retries,
	})
	return catalog.NewLoader(cfg.Base, client, cfg.Extensions)
}

// resolveFolder maps a category name or path to a folder path.
func resolveFolder(s string) string {
	if f, ok := cfg.FindFolder(s); ok {
		return f.Path
	}
	return s
}
