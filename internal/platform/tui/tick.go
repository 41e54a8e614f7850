// Package tui runs Melon Smash in a terminal with Bubble Tea.
// It samples keys, drives the fixed-rate simulation, and hosts the
// title screen, scoreboard, and SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation tick. Model names the game
// model that scheduled it; ticks for any other model are dropped, which ends
// a stale tick chain after returning to the title screen.
type TickMsg struct {
	Model int
	At    time.Time
}

// tickCmd returns a Bubble Tea command that sends one tick after a frame interval.
func tickCmd(tickRate, model int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Model: model, At: t}
	})
}
