// Package settings persists player preferences between sessions.
package settings

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// AppName is the gdata application key.
const AppName = "melonsmash"

const (
	prefsObject   = "settings"
	prefsProperty = "preferences"
)

// Preferences are the per-user options that survive restarts.
type Preferences struct {
	Mute         bool    `yaml:"mute"`
	MasterVolume float64 `yaml:"master_volume"`
	MusicVolume  float64 `yaml:"music_volume"`
	PlayerName   string  `yaml:"player_name"`
}

// DefaultPreferences returns the preferences of a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{
		MasterVolume: 1.0,
		MusicVolume:  1.0,
		PlayerName:   "player",
	}
}

// Manager loads and saves Preferences through gdata. A Manager without a
// store keeps preferences in memory only.
type Manager struct {
	store  *gdata.Manager
	prefs  Preferences
	logger *log.Logger
}

// Open creates a manager backed by the platform data directory. If the
// store cannot be opened the manager runs in memory and the error is logged.
func Open(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	store, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		logger.Warn("preferences will not be saved", "error", err)
		store = nil
	}
	return New(store, logger)
}

// New wraps an existing gdata store, which may be nil.
func New(store *gdata.Manager, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	m := &Manager{store: store, prefs: DefaultPreferences(), logger: logger}
	if err := m.Load(); err != nil {
		logger.Warn("failed to load preferences, using defaults", "error", err)
	}
	return m
}

// Persistent reports whether preferences are written to disk.
func (m *Manager) Persistent() bool {
	return m.store != nil
}

// Load reads saved preferences. Missing data leaves the defaults in place.
func (m *Manager) Load() error {
	if m.store == nil || !m.store.ObjectPropExists(prefsObject, prefsProperty) {
		m.prefs = DefaultPreferences()
		return nil
	}

	data, err := m.store.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		m.prefs = DefaultPreferences()
		return fmt.Errorf("settings: cannot load preferences: %w", err)
	}

	loaded := DefaultPreferences()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		m.prefs = DefaultPreferences()
		return fmt.Errorf("settings: cannot decode preferences: %w", err)
	}
	loaded.MasterVolume = clampVolume(loaded.MasterVolume)
	loaded.MusicVolume = clampVolume(loaded.MusicVolume)
	m.prefs = loaded
	return nil
}

// Save writes the current preferences. Without a store it does nothing.
func (m *Manager) Save() error {
	if m.store == nil {
		return nil
	}
	data, err := yaml.Marshal(m.prefs)
	if err != nil {
		return fmt.Errorf("settings: cannot encode preferences: %w", err)
	}
	if err := m.store.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("settings: cannot save preferences: %w", err)
	}
	m.logger.Debug("preferences saved")
	return nil
}

// Get returns a copy of the current preferences.
func (m *Manager) Get() Preferences {
	return m.prefs
}

func (m *Manager) SetMute(mute bool) {
	m.prefs.Mute = mute
}

func (m *Manager) SetMasterVolume(v float64) {
	m.prefs.MasterVolume = clampVolume(v)
}

func (m *Manager) SetMusicVolume(v float64) {
	m.prefs.MusicVolume = clampVolume(v)
}

// SetPlayerName stores a display name; blank names are ignored.
func (m *Manager) SetPlayerName(name string) {
	if name != "" {
		m.prefs.PlayerName = name
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
