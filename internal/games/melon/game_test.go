package melon

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/audio"
	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	"github.com/vovakirdan/melon-smash/internal/physics"
	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/terrain"
)

func testRuntime(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     seed,
	}
}

func shortConfig() config.MelonConfig {
	cfg := config.DefaultMelonConfig()
	cfg.Round.ReadySeconds = 0.1
	cfg.Round.GoSeconds = 0.1
	cfg.Round.Duration = 2
	return cfg
}

func newTestGame(t *testing.T, opts ...Option) (*Game, *audio.Recorder) {
	t.Helper()
	rec := audio.NewRecorder()
	base := []Option{
		WithConfig(shortConfig()),
		WithAudio(rec),
		WithTerrain(terrain.Flat(32, 600, 0)),
	}
	g := New(append(base, opts...)...)
	g.Reset(testRuntime(42))
	return g, rec
}

// press is a frame where every action was just pressed.
func press(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Press(a)
	}
	return in
}

// hold is a frame where every action is still down from an earlier press.
func hold(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

// stepUntil steps with empty input until cond holds, collecting events.
func stepUntil(t *testing.T, g *Game, cond func() bool, limit int) []core.Event {
	t.Helper()
	var events []core.Event
	for range limit {
		if cond() {
			return events
		}
		events = append(events, g.Step(core.NewInputFrame()).Events...)
	}
	if !cond() {
		t.Fatalf("condition not reached in %d ticks", limit)
	}
	return events
}

func countKind(events []core.Event, kind core.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestGameResetState(t *testing.T) {
	g, rec := newTestGame(t)

	if g.Round().Phase() != PhaseCountdown || g.Round().Banner() != BannerReady {
		t.Errorf("after reset: phase %v banner %q", g.Round().Phase(), g.Round().Banner())
	}
	if got := g.Field().WholeCount(); got != 3 {
		t.Errorf("whole melons: got %d, expected 3", got)
	}
	if !rec.MusicPlaying() {
		t.Error("music should start on reset")
	}
	st := g.State()
	if st.Score != 0 || st.GameOver || st.Active || st.TimeLeft != 2 {
		t.Errorf("initial state: %+v", st)
	}
}

func TestGameInputIgnoredDuringCountdown(t *testing.T) {
	g, rec := newTestGame(t)
	start := g.Player().Position

	g.Step(press(core.ActionForward, core.ActionSwing, core.ActionTurnLeft))
	if g.Player().Position != start || g.Player().Angle != 0 {
		t.Errorf("player moved during countdown: %v angle %v", g.Player().Position, g.Player().Angle)
	}
	if rec.Count(audio.CueSwing) != 0 || g.Swing().Swinging() {
		t.Error("swing started during countdown")
	}
}

func TestGameRoundStarts(t *testing.T) {
	g, _ := newTestGame(t)
	events := stepUntil(t, g, g.Round().Active, 60)

	if countKind(events, core.EventRoundStarted) != 1 {
		t.Errorf("expected one round:started event, got %v", events)
	}
	if g.Round().Banner() != "" {
		t.Errorf("banner should clear, got %q", g.Round().Banner())
	}

	start := g.Player().Position
	g.Step(press(core.ActionForward))
	if g.Player().Position.Z() <= start.Z() {
		t.Error("player should walk once the round is active")
	}
}

func TestGameSwingPlaysCue(t *testing.T) {
	g, rec := newTestGame(t)
	stepUntil(t, g, g.Round().Active, 60)

	g.Step(press(core.ActionSwing))
	g.Step(hold(core.ActionSwing))
	if got := rec.Count(audio.CueSwing); got != 1 {
		t.Errorf("holding swing should start one swing, got %d cues", got)
	}
	if !g.Swing().Swinging() {
		t.Error("swing should be running")
	}
	if g.Locomotion() != LocomotionSwing {
		t.Errorf("locomotion: got %v, expected swing", g.Locomotion())
	}
}

func TestGameBatSmashesOneMelonPerSwing(t *testing.T) {
	g, rec := newTestGame(t)
	stepUntil(t, g, g.Round().Active, 60)

	g.Step(press(core.ActionSwing))
	swing := hold(core.ActionSwing)
	for range 60 {
		g.Step(swing)
		if g.Swing().CanDealDamage() {
			break
		}
	}
	if !g.Swing().CanDealDamage() {
		t.Fatal("swing never reached its damage window")
	}

	melons := g.Field().Melons()
	first, second := melons[0], melons[1]
	if err := g.world.SetPhysicsPose(first.Whole.Body, physics.NewPose(g.bat.Pivot)); err != nil {
		t.Fatalf("SetPhysicsPose: %v", err)
	}
	res := g.Step(swing)

	if res.State.Score != 1 {
		t.Fatalf("score after contact: got %d, expected 1", res.State.Score)
	}
	if countKind(res.Events, core.EventSmash) != 1 {
		t.Errorf("expected one smash event, got %v", res.Events)
	}
	if first.Whole != nil || first.Broken == nil {
		t.Error("hit melon should be broken")
	}
	if rec.Count(audio.CueHit) != 1 {
		t.Errorf("hit cue: got %d, expected 1", rec.Count(audio.CueHit))
	}
	if got := g.Field().WholeCount(); got != 3 {
		t.Errorf("whole melons after smash: got %d, expected 3", got)
	}

	if err := g.world.SetPhysicsPose(second.Whole.Body, physics.NewPose(g.bat.Pivot)); err != nil {
		t.Fatalf("SetPhysicsPose: %v", err)
	}
	res = g.Step(swing)
	if res.State.Score != 1 {
		t.Errorf("a swing must break at most one melon, score %d", res.State.Score)
	}
}

func TestGameTimeUp(t *testing.T) {
	g, rec := newTestGame(t)
	events := stepUntil(t, g, g.Round().Ended, 400)

	if n := countKind(events, core.EventRoundEnded); n != 1 {
		t.Fatalf("round:ended events: got %d, expected 1", n)
	}
	for _, ev := range events {
		if ev.Kind == core.EventRoundEnded && ev.Message != ResultMessage(0) {
			t.Errorf("result message: got %q, expected %q", ev.Message, ResultMessage(0))
		}
	}
	st := g.State()
	if !st.GameOver || st.Active || st.TimeLeft != 0 {
		t.Errorf("state after time up: %+v", st)
	}
	if rec.MusicPlaying() {
		t.Error("music should pause at time up")
	}
	if rec.Count(audio.CueResult) != 1 || rec.Count(audio.CueFin) != 0 {
		t.Errorf("result cues: result %d fin %d", rec.Count(audio.CueResult), rec.Count(audio.CueFin))
	}
	if len(g.Fireworks().Sparks()) != 0 {
		t.Error("no fireworks below the threshold")
	}

	start := g.Player().Position
	for range 120 {
		res := g.Step(press(core.ActionForward))
		if countKind(res.Events, core.EventRoundEnded) != 0 {
			t.Fatal("round ended twice")
		}
	}
	g.Step(press(core.ActionSwing))
	if g.Player().Position != start || rec.Count(audio.CueSwing) != 0 {
		t.Error("player acted after time up")
	}
}

func TestGameFireworksForGoodRound(t *testing.T) {
	g, rec := newTestGame(t)
	stepUntil(t, g, g.Round().Active, 60)
	for range 12 {
		g.Round().AddSmash()
	}
	stepUntil(t, g, g.Round().Ended, 400)

	if len(g.Fireworks().Sparks()) != g.Fireworks().Bursts(12) {
		t.Errorf("sparks: got %d, expected %d", len(g.Fireworks().Sparks()), g.Fireworks().Bursts(12))
	}
	if rec.Count(audio.CueFin) != 1 {
		t.Errorf("fin cue: got %d, expected 1", rec.Count(audio.CueFin))
	}
	if !strings.Contains(g.ResultLine(), ResultMessage(12)) {
		t.Errorf("result line %q misses the tier message", g.ResultLine())
	}
}

func TestGameNoEvictionAfterTimeUp(t *testing.T) {
	g, _ := newTestGame(t)
	stepUntil(t, g, g.Round().Ended, 400)

	m := g.Field().Melons()[0]
	out := physics.NewPose(mgl64.Vec3{200, 20, 0})
	if err := g.world.SetPhysicsPose(m.Whole.Body, out); err != nil {
		t.Fatalf("SetPhysicsPose: %v", err)
	}
	var events []core.Event
	for range 300 {
		events = append(events, g.Step(core.NewInputFrame()).Events...)
	}
	if countKind(events, core.EventEvicted) != 0 {
		t.Error("melons must not be evicted after time up")
	}
	if m.Whole == nil || m.OutOfBounds != 0 {
		t.Errorf("melon should be untouched: whole=%v out=%v", m.Whole != nil, m.OutOfBounds)
	}
}

func TestGameEvictionDuringRound(t *testing.T) {
	g, _ := newTestGame(t, WithConfig(func() config.MelonConfig {
		cfg := shortConfig()
		cfg.Round.Duration = 60
		return cfg
	}()))
	stepUntil(t, g, g.Round().Active, 60)

	m := g.Field().Melons()[0]
	id := m.ID
	if err := g.world.SetPhysicsPose(m.Whole.Body, physics.NewPose(mgl64.Vec3{200, 20, 0})); err != nil {
		t.Fatalf("SetPhysicsPose: %v", err)
	}
	var events []core.Event
	for range 200 {
		events = append(events, g.Step(core.NewInputFrame()).Events...)
	}
	if countKind(events, core.EventEvicted) != 1 {
		t.Fatalf("expected one eviction, got %v", events)
	}
	for _, x := range g.Field().Melons() {
		if x.ID == id {
			t.Error("evicted melon is still on the field")
		}
	}
	if got := g.Field().WholeCount(); got != 3 {
		t.Errorf("whole melons after eviction: got %d, expected 3", got)
	}
	if g.State().Score != 0 {
		t.Error("eviction must not score")
	}
}

func TestGameRestart(t *testing.T) {
	g, rec := newTestGame(t)
	stepUntil(t, g, g.Round().Ended, 400)

	res := g.Step(press(core.ActionRestart))
	if countKind(res.Events, core.EventRoundReset) != 1 {
		t.Errorf("expected a round:reset event, got %v", res.Events)
	}
	if rec.Stopped() != 1 {
		t.Errorf("result sound should stop on restart, stopped %d", rec.Stopped())
	}
	if !rec.MusicPlaying() {
		t.Error("music should resume on restart")
	}
	st := g.State()
	if st.GameOver || st.Active || st.Score != 0 {
		t.Errorf("state after restart: %+v", st)
	}
	if g.Round().Banner() != BannerReady {
		t.Errorf("banner after restart: %q", g.Round().Banner())
	}
	if got := g.Field().WholeCount(); got != 3 || len(g.Field().Melons()) != 3 {
		t.Errorf("melons after restart: whole %d total %d", got, len(g.Field().Melons()))
	}

	res = g.Step(hold(core.ActionRestart))
	if countKind(res.Events, core.EventRoundReset) != 0 {
		t.Error("holding restart must not restart again")
	}
}

func TestGameRestartIdempotent(t *testing.T) {
	g, _ := newTestGame(t)
	stepUntil(t, g, g.Round().Active, 60)

	type shape struct {
		whole  int
		total  int
		live   int
		free   int
		banner string
		active bool
		ended  bool
	}
	capture := func() shape {
		return shape{
			whole:  g.Field().WholeCount(),
			total:  len(g.Field().Melons()),
			live:   g.Timers().Live(),
			banner: g.Round().Banner(),
			active: g.Round().Active(),
			ended:  g.Round().Ended(),
			free:   g.Field().Pool().Free(),
		}
	}

	g.Step(press(core.ActionRestart))
	once := capture()
	g.Step(core.NewInputFrame())
	g.Step(press(core.ActionRestart))
	twice := capture()
	if once != twice {
		t.Errorf("restart twice differs from once: %+v vs %+v", once, twice)
	}
	if once.live != 2 {
		t.Errorf("live timers after restart: got %d, expected 2", once.live)
	}
}

func TestGamePause(t *testing.T) {
	g, _ := newTestGame(t)
	g.Step(press(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("pause should toggle on")
	}
	now := g.Timers().Now()
	for range 30 {
		g.Step(hold(core.ActionPause))
	}
	if g.Timers().Now() != now {
		t.Error("time advanced while paused")
	}
	g.Step(core.NewInputFrame())
	g.Step(press(core.ActionPause))
	if g.State().Paused {
		t.Error("second press should unpause")
	}
}

func TestGamePracticeNeverEnds(t *testing.T) {
	g, _ := newTestGame(t, WithMode(ModePractice))
	if g.ID() != "melon_practice" {
		t.Errorf("ID: got %q", g.ID())
	}
	for range 300 {
		if g.Step(core.NewInputFrame()).State.GameOver {
			t.Fatal("practice round ended")
		}
	}
	if !g.Round().Active() {
		t.Error("practice round should be active")
	}
}

func TestGameDeterminism(t *testing.T) {
	cfg := shortConfig()
	cfg.Terrain.Size = 48

	inputs := make([]core.InputFrame, 240)
	for i := range inputs {
		inputs[i] = core.NewInputFrame()
		switch {
		case i%40 < 20:
			inputs[i].Set(core.ActionForward)
		case i%40 < 25:
			inputs[i].Set(core.ActionTurnLeft)
		}
		if i%30 == 0 {
			inputs[i].Press(core.ActionSwing)
		}
	}

	run := func() uint64 {
		g := New(WithConfig(cfg))
		g.Reset(testRuntime(12345))
		for _, in := range inputs {
			g.Step(in)
		}
		snap := g.Snapshot()
		return snap.Hash()
	}

	if h1, h2 := run(), run(); h1 != h2 {
		t.Errorf("Determinism failed: hashes differ. Run1=%d, Run2=%d", h1, h2)
	}
}

func TestGameOnReady(t *testing.T) {
	g := New(WithTerrain(terrain.Flat(8, 600, 0)))
	calls := 0
	g.OnReady(func() { calls++ })
	g.Reset(testRuntime(1))
	g.Reset(testRuntime(2))
	if calls != 1 {
		t.Errorf("OnReady before reset: got %d calls, expected 1", calls)
	}
	g.OnReady(func() { calls++ })
	if calls != 2 {
		t.Error("OnReady after reset should run immediately")
	}
}

func TestGameRegistered(t *testing.T) {
	for _, id := range []string{"melon", "melon_practice"} {
		game, err := registry.Create(id, registry.Env{})
		if err != nil {
			t.Fatalf("Create(%q): %v", id, err)
		}
		if game.ID() != id {
			t.Errorf("Create(%q).ID() = %q", id, game.ID())
		}
	}
}

func TestGameRender(t *testing.T) {
	g, _ := newTestGame(t)
	screen := core.NewScreen(80, 24)
	g.Render(screen)

	top := screen.Row(0)
	if !strings.Contains(top, "残り: 2s") || !strings.Contains(top, "🍉 0") {
		t.Errorf("HUD row: %q", top)
	}
	if !strings.Contains(screen.String(), BannerReady) {
		t.Error("countdown banner missing")
	}

	stepUntil(t, g, g.Round().Ended, 400)
	screen.Clear()
	g.Render(screen)
	out := screen.String()
	for _, want := range []string{labelTimeUp, "🍉 0個", ResultMessage(0), "もう一度挑戦"} {
		if !strings.Contains(out, want) {
			t.Errorf("result panel misses %q", want)
		}
	}

	small := core.NewScreen(20, 8)
	g.Render(small)
	if !strings.Contains(small.String(), "Window too small") {
		t.Error("small screen should show a notice")
	}
}

// smashOnce waits out any running swing, swings again and drops a whole
// melon onto the bat inside the damage window. each runs after every tick.
func smashOnce(t *testing.T, g *Game, each func()) {
	t.Helper()
	step := func(in core.InputFrame) {
		g.Step(in)
		if each != nil {
			each()
		}
	}

	for i := 0; g.Swing().Swinging() || g.Swing().Cooldown() > 0; i++ {
		if i > 120 {
			t.Fatal("swing never became ready")
		}
		step(core.NewInputFrame())
	}
	step(press(core.ActionSwing))
	for i := 0; !g.Swing().CanDealDamage(); i++ {
		if i > 60 {
			t.Fatal("swing never reached its damage window")
		}
		step(hold(core.ActionSwing))
	}

	var target *Watermelon
	for _, m := range g.Field().Melons() {
		if m.Whole != nil {
			target = m
			break
		}
	}
	if target == nil {
		t.Fatal("no whole melon on the field")
	}
	before := g.Round().Smashed()
	if err := g.world.SetPhysicsPose(target.Whole.Body, physics.NewPose(g.bat.Pivot)); err != nil {
		t.Fatalf("SetPhysicsPose: %v", err)
	}
	step(hold(core.ActionSwing))
	if got := g.Round().Smashed(); got != before+1 {
		t.Fatalf("smashed after contact: got %d, expected %d", got, before+1)
	}
}

func TestGameRoundKeepsThreeWholeMelons(t *testing.T) {
	tests := []struct {
		name    string
		hits    int
		tier    int
		message string
	}{
		{"single hit", 1, 3, "ウォーミングアップ完了！"},
		{"five hits", 5, 2, "いい調子、そのまま続けよう"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := shortConfig()
			cfg.Round.Duration = 10
			g, _ := newTestGame(t, WithConfig(cfg))

			tickN := 0
			check := func() {
				tickN++
				if got := g.Field().WholeCount(); got != 3 {
					t.Fatalf("tick %d: whole melons %d, expected 3", tickN, got)
				}
				for _, m := range g.Field().Melons() {
					if (m.Whole != nil) == (m.Broken != nil) {
						t.Fatalf("tick %d: melon %d whole=%v broken=%v", tickN, m.ID, m.Whole != nil, m.Broken != nil)
					}
				}
			}

			check()
			for !g.Round().Active() {
				g.Step(core.NewInputFrame())
				check()
			}
			for range tc.hits {
				smashOnce(t, g, check)
			}

			var ended []core.Event
			for i := 0; !g.Round().Ended(); i++ {
				if i > 1200 {
					t.Fatal("round never ended")
				}
				res := g.Step(core.NewInputFrame())
				check()
				for _, ev := range res.Events {
					if ev.Kind == core.EventRoundEnded {
						ended = append(ended, ev)
					}
				}
			}

			if len(ended) != 1 {
				t.Fatalf("round:ended events: got %d, expected 1", len(ended))
			}
			ev := ended[0]
			if ev.Count != tc.hits || ev.Tier != tc.tier || ev.Message != tc.message {
				t.Errorf("result: count=%d tier=%d message=%q, expected %d %d %q",
					ev.Count, ev.Tier, ev.Message, tc.hits, tc.tier, tc.message)
			}
		})
	}
}

func TestGameSwingEndsAtTimeUp(t *testing.T) {
	g, rec := newTestGame(t)
	stepUntil(t, g, func() bool {
		return g.Round().Active() && g.Round().Remaining() <= 0.2
	}, 400)

	g.Step(press(core.ActionSwing))
	if rec.Count(audio.CueSwing) != 1 {
		t.Fatal("swing should start before time up")
	}
	for i := 0; !g.Round().Ended(); i++ {
		if i > 60 {
			t.Fatal("round never ended")
		}
		if !g.Swing().Swinging() {
			t.Fatal("swing finished before time up")
		}
		g.Step(hold(core.ActionSwing))
	}

	if g.Swing().Swinging() || g.Swing().Holding() {
		t.Errorf("after time up: swinging=%v holding=%v", g.Swing().Swinging(), g.Swing().Holding())
	}
	if g.Locomotion() != LocomotionIdle {
		t.Errorf("locomotion after time up: got %v, expected idle", g.Locomotion())
	}

	for range 120 {
		g.Step(core.NewInputFrame())
	}
	rest := core.DegToRad(g.cfg.Swing.RestDegrees)
	if math.Abs(g.Swing().Angle()-rest) > 1e-3 {
		t.Errorf("bat should relax after time up: angle %v, expected %v", g.Swing().Angle(), rest)
	}
	if g.Locomotion() != LocomotionIdle {
		t.Errorf("locomotion after idle ticks: got %v, expected idle", g.Locomotion())
	}
}

func TestGameRestartClearsParticles(t *testing.T) {
	cfg := shortConfig()
	cfg.Round.Duration = 10
	g, _ := newTestGame(t, WithConfig(cfg))
	stepUntil(t, g, g.Round().Active, 60)

	smashOnce(t, g, nil)
	if len(g.Particles().Bursts()) == 0 {
		t.Fatal("a smash should leave a particle burst")
	}

	g.Step(press(core.ActionRestart))
	if n := len(g.Particles().Bursts()); n != 0 {
		t.Errorf("bursts after restart: got %d, expected 0", n)
	}
}
