package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	"github.com/vovakirdan/melon-smash/internal/input"
	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/settings"
	"github.com/vovakirdan/melon-smash/internal/storage"
)

const statusDuration = 2 * time.Second

// EventSink receives every gameplay event a session produces.
type EventSink interface {
	Publish(gameID, player string, ev core.Event)
}

// StepObserver is told how long each simulation step took.
type StepObserver interface {
	ObserveStep(gameID string, d time.Duration)
}

// Deps are the collaborators shared by every screen of a session.
// Store, Prefs, Sink and Steps may be nil.
type Deps struct {
	Env    registry.Env
	Store  *storage.Store
	Prefs  *settings.Manager
	Sink   EventSink
	Steps  StepObserver
	Logger *log.Logger

	// Player is the name results are saved under.
	Player string

	// Clipboard enables copying the result line to the local clipboard.
	Clipboard bool

	// ScreenshotDir defaults to ~/.melonsmash/screenshots.
	ScreenshotDir string
}

func (d Deps) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

// resultLiner is implemented by modes that can summarise a finished round.
type resultLiner interface {
	ResultLine() string
}

// modelSeq numbers game models across all sessions.
var modelSeq atomic.Int64

// GameModel is the Bubble Tea model for one running mode.
type GameModel struct {
	id          int
	gameID      string
	game        registry.Game
	deps        Deps
	screen      *core.Screen
	sampler     *input.Sampler
	keys        *KeyMapper
	config      core.RuntimeConfig
	state       core.GameState
	played      float64 // active seconds this round
	saved       bool
	status      string
	statusUntil time.Time
	quitting    bool
	backToMenu  bool
}

// NewGameModel creates the mode registered under gameID.
func NewGameModel(gameID string, deps Deps, cfg core.RuntimeConfig) (GameModel, error) {
	game, err := registry.Create(gameID, deps.Env)
	if err != nil {
		return GameModel{}, err
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	var grace time.Duration
	if deps.Env.Config != nil {
		grace = time.Duration(deps.Env.Config.Input.TapGraceMs) * time.Millisecond
	}

	return GameModel{
		id:      int(modelSeq.Add(1)),
		gameID:  gameID,
		game:    game,
		deps:    deps,
		screen:  core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		sampler: input.NewSampler(grace, nil),
		keys:    NewKeyMapper(),
		config:  cfg,
	}, nil
}

// Init resets the game and starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate, m.id)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// The renderer adapts to any size, so the round keeps going.
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Model != m.id {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input. Movement keys go through the sampler;
// platform commands act immediately.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keys.IsScreenshot(msg) {
		if path, err := m.saveScreenshot(); err != nil {
			m.deps.logger().Warn("screenshot failed", "error", err)
			m.setStatus("screenshot failed")
		} else {
			m.setStatus("saved " + filepath.Base(path))
		}
		return m, nil
	}

	switch action := m.keys.MapKey(msg); action {
	case core.ActionNone:
	case core.ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case core.ActionMenu:
		m.backToMenu = true
	case core.ActionMute:
		m.toggleMute()
	case core.ActionCopy:
		m.copyResult()
	default:
		m.sampler.Tap(action)
	}
	return m, nil
}

// handleTick runs one fixed simulation step.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	start := time.Now()
	result := m.game.Step(m.sampler.Frame())
	if m.deps.Steps != nil {
		m.deps.Steps.ObserveStep(m.gameID, time.Since(start))
	}
	m.state = result.State
	if m.state.Active && !m.state.Paused {
		m.played += m.config.Delta()
	}
	m.handleEvents(result.Events)

	return m, tickCmd(m.config.TickRate, m.id)
}

// handleEvents publishes events and saves each finished round once.
func (m *GameModel) handleEvents(events []core.Event) {
	for _, ev := range events {
		if m.deps.Sink != nil {
			m.deps.Sink.Publish(m.gameID, m.deps.Player, ev)
		}
		switch ev.Kind {
		case core.EventRoundReset:
			m.saved = false
			m.played = 0
		case core.EventRoundEnded:
			m.saveResult(ev)
		}
	}
}

func (m *GameModel) saveResult(ev core.Event) {
	if m.saved {
		return
	}
	m.saved = true
	if m.deps.Store == nil || ev.Count == 0 {
		return
	}
	_, err := m.deps.Store.SaveRound(storage.Round{
		GameID:  m.gameID,
		Player:  m.deps.Player,
		Score:   ev.Count,
		Tier:    ev.Tier,
		Seconds: m.played,
		Seed:    m.config.Seed,
	})
	if err != nil {
		m.deps.logger().Warn("could not save round", "error", err)
		return
	}
	m.deps.logger().Debug("round saved", "game", m.gameID, "player", m.deps.Player, "score", ev.Count)
}

func (m *GameModel) toggleMute() {
	player := m.deps.Env.Audio
	if player == nil {
		return
	}
	muted := !player.Muted()
	player.SetMuted(muted)
	if muted {
		m.setStatus("sound off")
	} else {
		m.setStatus("sound on")
	}

	if m.deps.Prefs != nil {
		m.deps.Prefs.SetMute(muted)
		if err := m.deps.Prefs.Save(); err != nil {
			m.deps.logger().Warn("could not save preferences", "error", err)
		}
	}
}

func (m *GameModel) copyResult() {
	if !m.state.GameOver {
		return
	}
	liner, ok := m.game.(resultLiner)
	if !ok {
		return
	}
	if !m.deps.Clipboard || clipboard.Unsupported {
		m.setStatus("clipboard unavailable")
		return
	}
	if err := clipboard.WriteAll(liner.ResultLine()); err != nil {
		m.deps.logger().Warn("copy failed", "error", err)
		m.setStatus("copy failed")
		return
	}
	m.setStatus("copied!")
}

func (m *GameModel) setStatus(s string) {
	m.status = s
	m.statusUntil = time.Now().Add(statusDuration)
}

// saveScreenshot writes the current frame as plain text and returns its path.
func (m *GameModel) saveScreenshot() (string, error) {
	m.screen.Clear()
	m.game.Render(m.screen)

	dir := m.deps.ScreenshotDir
	if dir == "" {
		dir = filepath.Join("~", config.AppDir, "screenshots")
	}
	dir = config.ExpandHome(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("tui: cannot create screenshot directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.gameID, timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return "", fmt.Errorf("tui: cannot write screenshot: %w", err)
	}
	return path, nil
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	m.game.Render(m.screen)
	if m.status != "" && time.Now().Before(m.statusUntil) {
		m.screen.DrawTextColor(1, m.screen.Height()-1, m.status, core.ColorBrightYellow)
	}
	return RenderScreen(m.screen)
}

// State returns the game state seen on the last tick.
func (m GameModel) State() core.GameState {
	return m.state
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested the title screen.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}
