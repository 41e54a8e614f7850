package tui

import (
	"io"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/melon-smash/internal/audio"
	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	_ "github.com/vovakirdan/melon-smash/internal/games/melon"
	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/settings"
	"github.com/vovakirdan/melon-smash/internal/storage"
)

type published struct {
	gameID string
	player string
	ev     core.Event
}

type recordingSink struct {
	mu     sync.Mutex
	events []published
}

func (s *recordingSink) Publish(gameID, player string, ev core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, published{gameID, player, ev})
}

func (s *recordingSink) count(kind core.EventKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.events {
		if p.ev.Kind == kind {
			n++
		}
	}
	return n
}

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 7}
}

func testDeps(t *testing.T) (Deps, *recordingSink) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "rounds.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultMelonConfig()
	cfg.Round.ReadySeconds = 0.1
	cfg.Round.GoSeconds = 0.1
	cfg.Round.Duration = 0.5
	cfg.Terrain.Size = 32

	logger := log.New(io.Discard)
	sink := &recordingSink{}
	return Deps{
		Env: registry.Env{
			Config: &cfg,
			Logger: logger,
			Audio:  audio.NewRecorder(),
		},
		Store:         store,
		Prefs:         settings.New(nil, logger),
		Sink:          sink,
		Logger:        logger,
		Player:        "tester",
		ScreenshotDir: t.TempDir(),
	}, sink
}

func newTestModel(t *testing.T) (GameModel, Deps, *recordingSink) {
	t.Helper()
	deps, sink := testDeps(t)
	m, err := NewGameModel("melon", deps, testRuntime())
	if err != nil {
		t.Fatalf("NewGameModel() failed: %v", err)
	}
	m.Init()
	return m, deps, sink
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m GameModel, msg tea.Msg) (GameModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	gm, ok := next.(GameModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return gm, cmd
}

func TestNewGameModelUnknownMode(t *testing.T) {
	deps, _ := testDeps(t)
	if _, err := NewGameModel("pinball", deps, testRuntime()); err == nil {
		t.Error("expected an error for an unregistered mode")
	}
}

func TestGameModelSavesRoundOnce(t *testing.T) {
	m, deps, _ := newTestModel(t)

	m.handleEvents([]core.Event{
		{Kind: core.EventRoundEnded, Count: 5, Tier: 2},
		{Kind: core.EventRoundEnded, Count: 5, Tier: 2},
	})
	rounds, err := deps.Store.TopRounds("melon", 10)
	if err != nil {
		t.Fatalf("TopRounds() failed: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("rounds saved: got %d, expected 1", len(rounds))
	}
	if r := rounds[0]; r.Player != "tester" || r.Score != 5 || r.Tier != 2 || r.Seed != 7 {
		t.Errorf("saved round: %+v", r)
	}

	m.handleEvents([]core.Event{
		{Kind: core.EventRoundReset},
		{Kind: core.EventRoundEnded, Count: 3, Tier: 3},
	})
	rounds, _ = deps.Store.TopRounds("melon", 10)
	if len(rounds) != 2 {
		t.Errorf("rounds after restart: got %d, expected 2", len(rounds))
	}
}

func TestGameModelSkipsEmptyRound(t *testing.T) {
	m, deps, _ := newTestModel(t)

	m.handleEvents([]core.Event{{Kind: core.EventRoundEnded, Count: 0, Tier: 4}})
	rounds, _ := deps.Store.TopRounds("melon", 10)
	if len(rounds) != 0 {
		t.Errorf("empty round should not be saved, got %d rows", len(rounds))
	}
}

func TestGameModelPlaysRoundToEnd(t *testing.T) {
	m, _, sink := newTestModel(t)

	for i := 0; i < 120 && !m.State().GameOver; i++ {
		m, _ = update(t, m, TickMsg{Model: m.id})
	}
	if !m.State().GameOver {
		t.Fatal("round should be over after two seconds of ticks")
	}
	if sink.count(core.EventRoundStarted) != 1 || sink.count(core.EventRoundEnded) != 1 {
		t.Errorf("events: started %d ended %d", sink.count(core.EventRoundStarted), sink.count(core.EventRoundEnded))
	}
	if m.played < 0.45 || m.played > 0.55 {
		t.Errorf("active seconds: got %v, expected about 0.5", m.played)
	}
	if m.View() == "" {
		t.Error("view should render the result panel")
	}
}

func TestGameModelIgnoresStaleTicks(t *testing.T) {
	m, _, sink := newTestModel(t)

	m, cmd := update(t, m, TickMsg{Model: m.id + 1000})
	if cmd != nil {
		t.Error("a stale tick should end its chain")
	}
	if len(sink.events) != 0 {
		t.Errorf("stale tick stepped the game: %d events", len(sink.events))
	}

	if _, cmd = update(t, m, TickMsg{Model: m.id}); cmd == nil {
		t.Error("an own tick should schedule the next one")
	}
}

func TestGameModelKeysReachSampler(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(t, m, runeKey('w'))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.sampler.Pressed(core.ActionForward) {
		t.Error("w should press Forward")
	}
	if !m.sampler.Pressed(core.ActionSwing) {
		t.Error("space should press Swing")
	}
	if m.sampler.Pressed(core.ActionBack) {
		t.Error("Back should not be pressed")
	}
}

func TestGameModelMuteToggles(t *testing.T) {
	m, deps, _ := newTestModel(t)

	m, _ = update(t, m, runeKey('m'))
	if !deps.Env.Audio.Muted() || !deps.Prefs.Get().Mute {
		t.Error("m should mute audio and remember it")
	}
	m, _ = update(t, m, runeKey('m'))
	if deps.Env.Audio.Muted() || deps.Prefs.Get().Mute {
		t.Error("second m should unmute")
	}
	if m.status != "sound on" {
		t.Errorf("status: got %q", m.status)
	}
}

func TestGameModelCopyNeedsClipboard(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.state.GameOver = true

	m.copyResult()
	if m.status != "clipboard unavailable" {
		t.Errorf("status: got %q", m.status)
	}
}

func TestGameModelScreenshot(t *testing.T) {
	m, _, _ := newTestModel(t)

	path, err := m.saveScreenshot()
	if err != nil {
		t.Fatalf("saveScreenshot() failed: %v", err)
	}
	if filepath.Dir(path) != m.deps.ScreenshotDir {
		t.Errorf("screenshot written to %s", path)
	}
}

func TestGameModelMenuAndQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() {
		t.Error("esc should return to the title screen")
	}

	m, cmd := update(t, m, runeKey('q'))
	if !m.IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
}
