// Package melon implements the watermelon smashing round: a hero walks a
// generated field, swings a bat at melons dropped from the sky and scores
// as many breaks as possible before the clock runs out.
package melon

import (
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/melon-smash/internal/assets"
	"github.com/vovakirdan/melon-smash/internal/audio"
	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	"github.com/vovakirdan/melon-smash/internal/physics"
	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/sched"
	"github.com/vovakirdan/melon-smash/internal/terrain"
)

// Mode selects between a timed round and free practice.
type Mode int

const (
	ModeTimed    Mode = iota // Round ends when the clock hits zero
	ModePractice             // No clock, smash forever
)

// Option configures a Game.
type Option func(*Game)

// WithConfig replaces the default tuning.
func WithConfig(cfg config.MelonConfig) Option {
	return func(g *Game) { g.cfg = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithAudio sets the sound player. The default is silent.
func WithAudio(p audio.Player) Option {
	return func(g *Game) {
		if p != nil {
			g.audio = p
		}
	}
}

// WithAssets sets the loaded asset bundle.
func WithAssets(b *assets.Bundle) Option {
	return func(g *Game) {
		if b != nil {
			g.bundle = b
		}
	}
}

// WithTerrain uses a prebuilt heightfield instead of generating one.
func WithTerrain(hf *terrain.HeightField) Option {
	return func(g *Game) { g.fixedGround = hf }
}

// WithWorld supplies the physics backend built on every Reset.
func WithWorld(build func(cfg config.PhysicsConfig) physics.World) Option {
	return func(g *Game) { g.newWorld = build }
}

// WithMode selects timed or practice play.
func WithMode(m Mode) Option {
	return func(g *Game) { g.mode = m }
}

// Game implements registry.Game for the melon round.
type Game struct {
	mode     Mode
	cfg      config.MelonConfig
	logger   *log.Logger
	audio    audio.Player
	bundle   *assets.Bundle
	newWorld func(cfg config.PhysicsConfig) physics.World

	fixedGround *terrain.HeightField
	ground      *terrain.HeightField

	runtime core.RuntimeConfig
	rng     *rand.Rand
	timers  *sched.Timers
	world   physics.World

	field     *Field
	particles *Particles
	fireworks *Fireworks
	swing     *Swing
	player    *Player
	bat       *Bat
	camera    *Camera
	round     *Round
	trees     []Tree

	paused      bool
	tickCount   uint64
	resultSound audio.Handle
	events      []core.Event

	ready   bool
	onReady []func()
}

// New creates a game. Reset must be called before the first Step.
func New(opts ...Option) *Game {
	g := &Game{
		cfg:      config.DefaultMelonConfig(),
		logger:   log.New(io.Discard),
		audio:    audio.NewNull(),
		newWorld: defaultWorld,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func defaultWorld(cfg config.PhysicsConfig) physics.World {
	return physics.NewSimpleWorld(
		physics.WithGravity(mgl64.Vec3{0, cfg.Gravity, 0}),
		physics.WithFixedStep(cfg.FixedStep, cfg.MaxSubSteps),
	)
}

// ID returns the unique identifier for this mode.
func (g *Game) ID() string {
	if g.mode == ModePractice {
		return "melon_practice"
	}
	return "melon"
}

// Title returns the display name for this mode.
func (g *Game) Title() string {
	if g.mode == ModePractice {
		return "Melon Smash (Practice)"
	}
	return "Melon Smash"
}

// Config returns the tuning in use.
func (g *Game) Config() config.MelonConfig {
	return g.cfg
}

// OnReady registers fn to run once after the first Reset has built the
// scene. If that already happened fn runs immediately.
func (g *Game) OnReady(fn func()) {
	if g.ready {
		fn()
		return
	}
	g.onReady = append(g.onReady, fn)
}

// Reset builds the scene from scratch and starts the first round.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	seed := runtime.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.rng = rand.New(rand.NewSource(seed))
	g.timers = sched.New()
	g.events = g.events[:0]
	g.tickCount = 0
	g.paused = false

	if g.bundle == nil {
		g.bundle = assets.Default()
	}
	g.ground = g.fixedGround
	if g.ground == nil {
		p := terrain.Params{
			Size:       g.cfg.Terrain.Size,
			Extent:     g.cfg.Terrain.Extent,
			MinHeight:  g.cfg.Terrain.MinHeight,
			MaxHeight:  g.cfg.Terrain.MaxHeight,
			Multiplier: g.cfg.Terrain.Multiplier,
			Octaves:    g.cfg.Terrain.Octaves,
			Seed:       seed,
		}
		g.ground = terrain.New(p)
		g.logger.Debug("terrain generated", "size", p.Size, "min", g.ground.MinHeight(), "max", g.ground.MaxHeight())
	}

	g.world = g.newWorld(g.cfg.Physics)
	g.world.AddHeightFieldBody(g.ground)

	g.particles = newParticles(g.cfg.Particles, g.rng)
	g.fireworks = newFireworks(g.cfg.Fireworks, g.rng, g.timers)

	radius := g.bundle.Watermelon.Radius(g.cfg.Watermelon.Scale)
	brokenOffset := g.bundle.Broken.Scaled(g.cfg.Broken.Scale).Y() * g.cfg.Broken.HeightFactor
	g.field = newField(g.cfg, fieldDeps{
		world:     g.world,
		ground:    g.ground,
		rng:       g.rng,
		particles: g.particles,
	}, radius, brokenOffset)

	height := g.cfg.Player.HeroHeight
	pivot := mgl64.Vec3{g.cfg.Bat.Pivot[0], g.cfg.Bat.Pivot[1], g.cfg.Bat.Pivot[2]}
	if !g.bundle.Avatar.Placeholder {
		height = g.bundle.Avatar.Height(g.cfg.Player.AvatarScale)
		pivot = assets.BatPivot(height)
	} else {
		g.logger.Warn("playing with placeholder avatar")
	}

	clip, ok := g.bundle.Avatar.Model.ClipDuration("swing", g.cfg.Swing.ClipTimeScale)
	if !ok {
		clip = g.cfg.Swing.Duration
	}
	g.swing = newSwing(g.cfg.Swing, clip)
	g.player = newPlayer(g.cfg.Player, g.cfg.Bounds, height)
	g.player.snap(g.field.groundAt)
	g.bat = newBat(g.cfg.Bat, pivot, g.world)
	g.bat.sync(g.world, g.player, g.swing.Angle())

	g.camera = newCamera(g.cfg.Camera)
	g.camera.PlaceBehind(g.player.Focus(), g.player.Angle)

	g.round = newRound(g.cfg.Round, g.timers, g.mode == ModePractice)
	g.round.onBegin = func() {
		g.emit(core.Event{Kind: core.EventRoundStarted})
	}

	g.trees = nil
	if g.bundle.Tree != nil {
		g.trees = placeTrees(g.rng, g.cfg.Bounds, g.ground, 3)
	}

	g.audio.StartMusic(g.cfg.Audio.MusicVolume)
	g.restartRound()

	if !g.ready {
		g.ready = true
		for _, fn := range g.onReady {
			fn()
		}
		g.onReady = nil
	}
}

// restartRound clears the field and starts a new countdown. The player
// keeps their position.
func (g *Game) restartRound() {
	g.fireworks.Clear()
	g.particles.Clear()
	g.stopResultSound()
	g.audio.ResumeMusic()
	g.field.Clear()
	g.swing.Reset()
	g.round.Reset()
	g.field.Spawn(g.cfg.Round.InitialSpawn)
	g.player.stop()
	g.emit(core.Event{Kind: core.EventRoundReset})
	g.logger.Debug("round reset", "melons", g.field.WholeCount())
}

func (g *Game) stopResultSound() {
	if g.resultSound == nil {
		return
	}
	h := g.resultSound
	g.resultSound = nil
	h.Stop()
}

func (g *Game) emit(ev core.Event) {
	g.events = append(g.events, ev)
}

// Step advances the game by one tick. The update order is fixed:
// timers, clock, player, swing, physics, broken pieces, particles, camera.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.events = g.events[:0]

	if in.JustPressed(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return g.result()
	}

	dt := g.runtime.Delta()
	g.tickCount++

	g.timers.Advance(dt)
	if g.round.Tick(dt) {
		g.timeUp()
	}
	g.updatePlayer(dt, in)
	g.updateSwing(dt, in)
	g.updatePhysics(dt)
	g.field.UpdateBroken(dt)
	g.particles.Update(dt)
	g.updateCamera(dt, in)

	return g.result()
}

func (g *Game) result() core.StepResult {
	var events []core.Event
	if len(g.events) > 0 {
		events = append(events, g.events...)
	}
	return core.StepResult{State: g.State(), Events: events}
}

func (g *Game) updatePlayer(dt float64, in core.InputFrame) {
	if in.JustPressed(core.ActionRestart) {
		g.restartRound()
	}
	if !g.round.Active() {
		return
	}

	moved, rotated, backReleased := g.player.move(dt, controls{
		forward: in.Has(core.ActionForward),
		back:    in.Has(core.ActionBack),
		left:    in.Has(core.ActionTurnLeft),
		right:   in.Has(core.ActionTurnRight),
	})
	if (moved || rotated) && !g.camera.Following() {
		g.camera.Resume(g.player.Position, g.player.Angle)
	}
	if backReleased || !g.player.BackHolding() {
		g.camera.SetTargetHeading(g.player.Angle)
	}
	g.player.snap(g.field.groundAt)
}

func (g *Game) updateSwing(dt float64, in core.InputFrame) {
	g.swing.DecayHold(dt)
	if g.round.Active() && in.JustPressed(core.ActionSwing) && g.swing.Start() {
		g.audio.Play(audio.CueSwing, g.cfg.Audio.SwingVolume)
	}
	g.swing.Update(dt)
}

func (g *Game) updatePhysics(dt float64) {
	g.bat.sync(g.world, g.player, g.swing.Angle())
	g.world.Update(dt)
	g.field.Sync()
	if !g.round.Active() {
		return
	}
	g.resolveContacts()
	for _, m := range g.field.UpdateBounds(dt) {
		p := m.Position()
		g.emit(core.Event{Kind: core.EventEvicted, X: p.X(), Y: p.Y(), Z: p.Z()})
	}
}

func (g *Game) updateCamera(dt float64, in core.InputFrame) {
	orbit := core.DegToRad(g.cfg.Camera.OrbitDegrees) * dt
	if in.Has(core.ActionCameraLeft) {
		g.camera.Orbit(orbit)
	}
	if in.Has(core.ActionCameraRight) {
		g.camera.Orbit(-orbit)
	}
	g.camera.Update(dt, g.player.Focus())
}

// smash breaks a melon and counts it.
func (g *Game) smash(m *Watermelon, contact mgl64.Vec3) {
	if !g.field.Break(m, contact) {
		return
	}
	g.round.AddSmash()
	g.emit(core.Event{
		Kind:  core.EventSmash,
		Count: g.round.Smashed(),
		X:     contact.X(),
		Y:     contact.Y(),
		Z:     contact.Z(),
	})
}

// timeUp runs once when the clock reaches zero.
func (g *Game) timeUp() {
	count := g.round.Smashed()
	g.audio.PauseMusic()
	g.stopResultSound()
	g.resultSound = g.audio.PlayTracked(audio.CueResult, g.cfg.Audio.ResultVolume, nil)
	if g.fireworks.Trigger(count) {
		g.audio.Play(audio.CueFin, g.cfg.Audio.FinVolume)
	}
	g.player.stop()
	g.swing.Interrupt()
	g.emit(core.Event{Kind: core.EventRoundEnded, Count: count, Tier: ResultTier(count), Message: ResultMessage(count)})
	g.logger.Info("round over", "smashed", count, "tier", ResultTier(count))
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.round == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.round.Smashed(),
		GameOver: g.round.Ended(),
		Paused:   g.paused,
		Active:   g.round.Active(),
		TimeLeft: g.round.Remaining(),
	}
}

// Accessors used by the renderer, the platform and tests.

func (g *Game) Round() *Round { return g.round }
func (g *Game) Swing() *Swing { return g.swing }
func (g *Game) Player() *Player { return g.player }
func (g *Game) Camera() *Camera { return g.camera }
func (g *Game) Field() *Field { return g.field }
func (g *Game) Fireworks() *Fireworks { return g.fireworks }
func (g *Game) Particles() *Particles { return g.particles }
func (g *Game) Timers() *sched.Timers { return g.timers }
func (g *Game) Terrain() *terrain.HeightField { return g.ground }
func (g *Game) Locomotion() Locomotion { return g.player.Locomotion(g.swing) }

// ResultLine is the shareable one-line summary of the finished round.
func (g *Game) ResultLine() string {
	n := g.round.Smashed()
	return "🍉 " + strconv.Itoa(n) + "個 " + ResultMessage(n)
}

func init() {
	registry.Register("melon", "Melon Smash", func(env registry.Env) registry.Game {
		return New(envOptions(env)...)
	})
	registry.Register("melon_practice", "Melon Smash (Practice)", func(env registry.Env) registry.Game {
		return New(append(envOptions(env), WithMode(ModePractice))...)
	})
}

func envOptions(env registry.Env) []Option {
	opts := []Option{WithLogger(env.Logger), WithAudio(env.Audio), WithAssets(env.Assets)}
	if env.Config != nil {
		opts = append(opts, WithConfig(*env.Config))
	}
	return opts
}
