package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/melon-smash/internal/core"
)

type view int

const (
	viewTitle view = iota
	viewGame
	viewScores
)

// SessionModel manages the full flow of one player: title -> game -> title.
// It is the top-level model for both local and SSH play.
type SessionModel struct {
	deps     Deps
	config   core.RuntimeConfig
	active   view
	title    TitleModel
	game     *GameModel
	scores   ScoreboardModel
	quitting bool
}

// NewSessionModel creates a session that starts on the title screen.
func NewSessionModel(deps Deps, cfg core.RuntimeConfig) SessionModel {
	return SessionModel{
		deps:   deps,
		config: cfg,
		title:  NewTitleModel(deps.Store, deps.Player, cfg.ScreenW, cfg.ScreenH),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.title.Init()
}

// Update routes messages to the active screen.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.active {
	case viewGame:
		return m.updateGame(msg)
	case viewScores:
		return m.updateScores(msg)
	default:
		return m.updateTitle(msg)
	}
}

func (m SessionModel) updateTitle(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.title.Update(msg)
	if title, ok := next.(TitleModel); ok {
		m.title = title
	}

	selected := m.title.Selected()
	if selected == nil {
		return m, cmd
	}

	switch selected.Choice {
	case ChoiceQuit:
		m.quitting = true
		return m, tea.Quit

	case ChoiceScores:
		m.scores = NewScoreboardModel(m.deps.Store, m.config.ScreenW, m.config.ScreenH)
		m.active = viewScores
		return m, m.scores.Init()

	case ChoicePlay:
		game, err := NewGameModel(selected.GameID, m.deps, m.config)
		if err != nil {
			m.deps.logger().Error("cannot start game", "game", selected.GameID, "error", err)
			m.title = m.title.WithNotice(err.Error())
			return m, nil
		}
		m.game = &game
		m.active = viewGame
		return m, m.game.Init()
	}

	return m, cmd
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if game, ok := next.(GameModel); ok {
		m.game = &game
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.game.BackToMenu() {
		if m.deps.Env.Audio != nil {
			m.deps.Env.Audio.PauseMusic()
		}
		m.game = nil
		m.title = NewTitleModel(m.deps.Store, m.deps.Player, m.config.ScreenW, m.config.ScreenH)
		m.active = viewTitle
		return m, m.title.Init()
	}

	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if scores, ok := next.(ScoreboardModel); ok {
		m.scores = scores
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scores.IsGoingBack() {
		m.title = NewTitleModel(m.deps.Store, m.deps.Player, m.config.ScreenW, m.config.ScreenH)
		m.active = viewTitle
		return m, nil
	}
	return m, cmd
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.active {
	case viewGame:
		return m.game.View()
	case viewScores:
		return m.scores.View()
	default:
		return m.title.View()
	}
}

// Run starts a local session and blocks until the player quits.
func Run(deps Deps, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(
		NewSessionModel(deps, cfg),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
