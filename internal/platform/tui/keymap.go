package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/melon-smash/internal/core"
)

// GameKeyMap defines the in-round key bindings.
type GameKeyMap struct {
	Forward     key.Binding
	Back        key.Binding
	TurnLeft    key.Binding
	TurnRight   key.Binding
	Swing       key.Binding
	Restart     key.Binding
	CameraLeft  key.Binding
	CameraRight key.Binding
	Pause       key.Binding
	Mute        key.Binding
	Copy        key.Binding
	Screenshot  key.Binding
	Menu        key.Binding
	Quit        key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k GameKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Forward, k.TurnLeft, k.Swing, k.Restart, k.Pause, k.Menu}
}

// FullHelp returns key bindings for the full help view.
func (k GameKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Forward, k.Back, k.TurnLeft, k.TurnRight},
		{k.Swing, k.Restart, k.CameraLeft, k.CameraRight},
		{k.Pause, k.Mute, k.Copy, k.Screenshot},
		{k.Menu, k.Quit},
	}
}

// DefaultGameKeyMap returns the default in-round bindings.
func DefaultGameKeyMap() GameKeyMap {
	return GameKeyMap{
		Forward: key.NewBinding(
			key.WithKeys("w", "W", "up"),
			key.WithHelp("w/↑", "forward"),
		),
		Back: key.NewBinding(
			key.WithKeys("s", "S", "down"),
			key.WithHelp("s/↓", "turn back"),
		),
		TurnLeft: key.NewBinding(
			key.WithKeys("a", "A", "left"),
			key.WithHelp("a/←", "turn left"),
		),
		TurnRight: key.NewBinding(
			key.WithKeys("d", "D", "right"),
			key.WithHelp("d/→", "turn right"),
		),
		Swing: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "swing"),
		),
		Restart: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "restart"),
		),
		CameraLeft: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "orbit left"),
		),
		CameraRight: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "orbit right"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "P"),
			key.WithHelp("p", "pause"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m", "M"),
			key.WithHelp("m", "mute"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c", "C"),
			key.WithHelp("c", "copy result"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Menu: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "title"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys GameKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultGameKeyMap()}
}

// Keys returns the bindings, for help rendering.
func (km *KeyMapper) Keys() GameKeyMap {
	return km.keys
}

// MapKey translates a key message to an action.
// Returns ActionNone for unbound keys.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	k := km.keys
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Forward):
		return core.ActionForward
	case key.Matches(msg, k.Back):
		return core.ActionBack
	case key.Matches(msg, k.TurnLeft):
		return core.ActionTurnLeft
	case key.Matches(msg, k.TurnRight):
		return core.ActionTurnRight
	case key.Matches(msg, k.Swing):
		return core.ActionSwing
	case key.Matches(msg, k.Restart):
		return core.ActionRestart
	case key.Matches(msg, k.CameraLeft):
		return core.ActionCameraLeft
	case key.Matches(msg, k.CameraRight):
		return core.ActionCameraRight
	case key.Matches(msg, k.Pause):
		return core.ActionPause
	case key.Matches(msg, k.Mute):
		return core.ActionMute
	case key.Matches(msg, k.Copy):
		return core.ActionCopy
	case key.Matches(msg, k.Menu):
		return core.ActionMenu
	}
	return core.ActionNone
}

// IsScreenshot reports whether the key requests a text screenshot.
func (km *KeyMapper) IsScreenshot(msg tea.KeyMsg) bool {
	return key.Matches(msg, km.keys.Screenshot)
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	}

	return MenuActionNone
}
