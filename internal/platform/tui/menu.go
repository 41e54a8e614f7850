package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/storage"
)

// Choice is what the player picked on the title screen.
type Choice int

const (
	ChoiceNone Choice = iota
	ChoicePlay
	ChoiceScores
	ChoiceQuit
)

// MenuItem is one entry of the title screen.
type MenuItem struct {
	Label  string
	GameID string // set for ChoicePlay
	Choice Choice
}

// modeLabels orders the playable modes and names them on the title screen.
var modeLabels = []struct {
	id    string
	label string
}{
	{"melon", "Start"},
	{"melon_practice", "Practice"},
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("204")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("22")).
			Padding(0, 3)
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("22"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// TitleModel is the Bubble Tea model for the title screen.
type TitleModel struct {
	items     []MenuItem
	cursor    int
	width     int
	height    int
	store     *storage.Store
	player    string
	highScore int
	keyMapper *KeyMapper
	selected  *MenuItem
	notice    string
}

// NewTitleModel creates the title screen for the registered modes.
func NewTitleModel(store *storage.Store, player string, width, height int) TitleModel {
	items := make([]MenuItem, 0, len(modeLabels)+2)
	for _, mode := range modeLabels {
		if registry.Exists(mode.id) {
			items = append(items, MenuItem{Label: mode.label, GameID: mode.id, Choice: ChoicePlay})
		}
	}
	items = append(items,
		MenuItem{Label: "Scores", Choice: ChoiceScores},
		MenuItem{Label: "Quit", Choice: ChoiceQuit},
	)

	m := TitleModel{
		items:     items,
		width:     width,
		height:    height,
		store:     store,
		player:    player,
		keyMapper: NewKeyMapper(),
	}
	if store != nil && len(modeLabels) > 0 {
		if high, err := store.HighScore(modeLabels[0].id); err == nil {
			m.highScore = high
		}
	}
	return m
}

// Init initializes the title model.
func (m TitleModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the title screen.
func (m TitleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m TitleModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		quit := MenuItem{Choice: ChoiceQuit}
		m.selected = &quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		selected := m.items[m.cursor]
		m.selected = &selected
	}

	return m, nil
}

// View renders the title screen.
func (m TitleModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(m.center(titleStyle.Render("🍉  M E L O N   S M A S H  🍉")))
	b.WriteString("\n\n")
	b.WriteString(m.center(dimStyle.Render("Smash as many watermelons as you can in 60 seconds")))
	b.WriteString("\n\n")

	for i, item := range m.items {
		line := "  " + item.Label + "  "
		if i == m.cursor {
			line = selectedStyle.Render("▶ " + item.Label + "  ")
		} else {
			line = itemStyle.Render(line)
		}
		b.WriteString(m.center(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	info := fmt.Sprintf("player: %s", m.player)
	if m.highScore > 0 {
		info += fmt.Sprintf("  |  best: 🍉 %d", m.highScore)
	}
	b.WriteString(m.center(dimStyle.Render(info)))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.center(errorStyle.Render(m.notice)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.center(dimStyle.Render("Up/Down: Navigate  |  Enter: Select  |  Q: Quit")))
	b.WriteString("\n")

	return b.String()
}

func (m TitleModel) center(s string) string {
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, s)
}

// Selected returns the picked item, or nil while the player is choosing.
func (m TitleModel) Selected() *MenuItem {
	return m.selected
}

// WithNotice returns a copy showing a one-line message under the menu.
func (m TitleModel) WithNotice(notice string) TitleModel {
	m.notice = notice
	m.selected = nil
	return m
}
