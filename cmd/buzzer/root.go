package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chase3718/buzzer/internal/config"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before initLogger
// is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler. debug forces
// LevelDebug.
func initLogger(level slog.Level, debug bool) {
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// -------------------- Root --------------------

var (
	configPath string
	debugFlag  bool

	globalConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "buzzer",
	Short: "Play melodies on a piezo buzzer",
	Long: `buzzer - melody playback for a single piezo buzzer.

'buzzer serve' owns the buzzer and a play/pause button and listens on a
control socket. The other commands talk to it:

  buzzer send music 44000:4,49400:4,0:4,55000:2
  buzzer send beat 90
  buzzer press

A note is freq:code, with freq in centihertz (0 for a rest) and code a
bitmask of note figures: 1 whole, 2 half, 4 quarter, 8 eighth, 16, 32,
64 for shorter ones, plus 128 for a triplet.

Configuration is read from $XDG_CONFIG_HOME/buzzer/config.yaml unless
--config is given.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/buzzer/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging (adds source location)")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	globalConfig = cfg
	level, _ := cfg.Level()
	initLogger(level, debugFlag)
	return nil
}

// getConfig returns the configuration loaded by setup.
func getConfig() *config.Config {
	if globalConfig == nil {
		return config.Default()
	}
	return globalConfig
}
