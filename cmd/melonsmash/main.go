// melonsmash is a terminal arcade game: walk a field, swing a bat, and smash
// as many watermelons as you can before the timer runs out.
//
// Usage:
//
//	melonsmash play            - Play locally
//	melonsmash serve           - Start SSH server for remote play
//	melonsmash scores [mode]   - Show the leaderboard for a mode
//	melonsmash config          - Print the effective gameplay config
//	melonsmash list            - List available modes
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible rounds
//	--db <path>           - Set database path (default: ~/.melonsmash/scores.db)
//	--config <path>       - Custom gameplay config YAML
//	--difficulty <name>   - Difficulty preset: easy, normal, hard
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	// Import modes to register them
	_ "github.com/vovakirdan/melon-smash/internal/games/melon"
	"github.com/vovakirdan/melon-smash/internal/platform/tui"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
	flagLogFile    string
	flagMute       bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "melonsmash",
	Short: "Melon Smash - smash watermelons in your terminal",
	Long: `Melon Smash is a timed arcade game played in the terminal. Walk the
field, swing your bat and smash as many watermelons as you can.

Available commands:
  play     - Play locally
  serve    - Start SSH server for remote play
  scores   - View the leaderboard
  config   - Print the effective gameplay config
  list     - Show all available modes

Examples:
  melonsmash play
  melonsmash play --difficulty hard
  melonsmash serve --ssh :2222 --http :8080
  melonsmash scores melon_practice`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/"+config.AppDir+"/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom gameplay config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file (play defaults to ~/"+config.AppDir+"/melonsmash.log)")
	rootCmd.PersistentFlags().BoolVar(&flagMute, "mute", false, "Start with sound muted")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the root logger. When the terminal belongs to the game,
// output goes to a file so it does not tear the screen.
func newLogger(ownsTerminal bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}

	var w io.Writer = os.Stderr
	closer := func() {}

	path := flagLogFile
	if path == "" && ownsTerminal {
		path = filepath.Join("~", config.AppDir, "melonsmash.log")
	}
	if path != "" {
		path = config.ExpandHome(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closer = func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "melonsmash",
		Level:           level,
	})
	return logger, closer, nil
}

// loadConfig loads the gameplay config and applies --difficulty.
func loadConfig() (config.MelonConfig, error) {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.MelonConfig{}, err
	}
	cfg, err := config.LoadMelon(flagConfig)
	if err != nil {
		return config.MelonConfig{}, err
	}
	config.ApplyMelonPreset(&cfg, preset)
	if err := cfg.Validate(); err != nil {
		return config.MelonConfig{}, err
	}
	return cfg, nil
}

func runtimeConfig(width, height int) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// sinks fans gameplay events out to several consumers.
type sinks []tui.EventSink

func (s sinks) Publish(gameID, player string, ev core.Event) {
	for _, sink := range s {
		sink.Publish(gameID, player, ev)
	}
}

func presetNames() string {
	names := make([]string, 0, len(config.Presets()))
	for _, p := range config.Presets() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
