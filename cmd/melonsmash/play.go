package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/melon-smash/internal/assets"
	"github.com/vovakirdan/melon-smash/internal/audio"
	"github.com/vovakirdan/melon-smash/internal/platform/tui"
	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/settings"
	"github.com/vovakirdan/melon-smash/internal/storage"
)

var (
	flagAssets string
	flagName   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play locally",
	Long: `Open the title screen and play in this terminal.

Controls:
  W/Up, S/Down   - Walk forward/back
  A/Left, D/Right - Turn
  Space          - Swing
  Enter          - Restart
  [ / ]          - Orbit camera
  P              - Pause
  M              - Mute
  C              - Copy result (after the round)
  Ctrl+S         - Save a text screenshot
  Esc            - Back to title
  Q/Ctrl+C       - Quit

Difficulty options:
  easy   - Longer round, faster swing recovery
  normal - Defaults
  hard   - Shorter round, slower swing recovery

Examples:
  melonsmash play
  melonsmash play --difficulty easy
  melonsmash play --name ann
  melonsmash play --config ./my-melon.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagAssets, "assets", "", "Directory with model files overriding the built-in ones")
	playCmd.Flags().StringVar(&flagName, "name", "", "Player name for the leaderboard (remembered)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	melonCfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Get terminal size early for the title screen
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		// Continue without storage - the game still works
		logger.Warn("could not open scores database", "path", flagDBPath, "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	prefs := settings.Open(logger.WithPrefix("settings"))
	if flagName != "" {
		prefs.SetPlayerName(flagName)
		if err := prefs.Save(); err != nil {
			logger.Warn("could not save preferences", "error", err)
		}
	}
	p := prefs.Get()

	bundle, err := assets.NewLoader(flagAssets, melonCfg.Audio.SoundDir, logger.WithPrefix("assets")).
		Load(context.Background())
	if err != nil {
		return fmt.Errorf("cannot load assets: %w", err)
	}

	player := audio.Open(melonCfg.Audio.Enabled, audio.BeepOptions{
		MasterVolume: p.MasterVolume,
		MusicVolume:  p.MusicVolume,
		Muted:        p.Mute || flagMute,
		Overrides:    bundle.Sounds,
		Logger:       logger.WithPrefix("audio"),
	})
	defer player.Close()

	deps := tui.Deps{
		Env: registry.Env{
			Config: &melonCfg,
			Logger: logger.WithPrefix("melon"),
			Audio:  player,
			Assets: bundle,
		},
		Store:     store,
		Prefs:     prefs,
		Logger:    logger,
		Player:    p.PlayerName,
		Clipboard: true,
	}

	logger.Info("starting local session", "player", p.PlayerName, "difficulty", flagDifficulty)
	if err := tui.Run(deps, runtimeConfig(width, height)); err != nil {
		return fmt.Errorf("cannot run game: %w", err)
	}
	return nil
}
