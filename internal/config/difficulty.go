package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPreset is returned for an unrecognised difficulty name.
var ErrUnknownPreset = errors.New("config: unknown difficulty preset")

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Presets lists the presets in menu order.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}
}

// ParsePreset accepts a preset name, case-insensitively. Empty means normal.
func ParsePreset(name string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// ApplyMelonPreset modifies the config based on a difficulty preset.
// Normal leaves the loaded values untouched.
func ApplyMelonPreset(cfg *MelonConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Round.Duration = 90
		cfg.Swing.Cooldown = 0.1
	case DifficultyHard:
		cfg.Round.Duration = 45
		cfg.Swing.Cooldown = 0.3
	}
}
