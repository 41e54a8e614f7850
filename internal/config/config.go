// Package config provides YAML-based game tuning and difficulty presets
// for melon smash.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by Validate failures.
var ErrInvalid = errors.New("config: invalid")

// MelonConfig contains every tunable of the gameplay core.
type MelonConfig struct {
	Round      RoundConfig      `yaml:"round"`
	Bounds     BoundsConfig     `yaml:"bounds"`
	Player     PlayerConfig     `yaml:"player"`
	Swing      SwingConfig      `yaml:"swing"`
	Bat        BatConfig        `yaml:"bat"`
	Watermelon WatermelonConfig `yaml:"watermelon"`
	Broken     BrokenConfig     `yaml:"broken"`
	Particles  ParticleConfig   `yaml:"particles"`
	Fireworks  FireworkConfig   `yaml:"fireworks"`
	Camera     CameraConfig     `yaml:"camera"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Input      InputConfig      `yaml:"input"`
	Audio      AudioConfig      `yaml:"audio"`
}

// RoundConfig defines round timing.
type RoundConfig struct {
	Duration        float64 `yaml:"duration"`
	InitialSpawn    int     `yaml:"initial_spawn"`
	ReadySeconds    float64 `yaml:"ready_seconds"`
	GoSeconds       float64 `yaml:"go_seconds"`
	EvictionSeconds float64 `yaml:"eviction_seconds"`
}

// BoundsConfig is the rectangular play area on the ground plane.
type BoundsConfig struct {
	MinX float64 `yaml:"min_x"`
	MaxX float64 `yaml:"max_x"`
	MinZ float64 `yaml:"min_z"`
	MaxZ float64 `yaml:"max_z"`
}

// Contains reports whether (x, z) is inside the bounds.
func (b BoundsConfig) Contains(x, z float64) bool {
	return x >= b.MinX && x <= b.MaxX && z >= b.MinZ && z <= b.MaxZ
}

// PlayerConfig defines movement.
type PlayerConfig struct {
	Start        [3]float64 `yaml:"start"`
	Speed        float64    `yaml:"speed"`
	TurnDegrees  float64    `yaml:"turn_degrees"` // per second
	TurnSnap     float64    `yaml:"turn_snap_degrees"`
	GroundOffset float64    `yaml:"ground_offset"`
	HeroHeight   float64    `yaml:"hero_height"` // placeholder avatar
	AvatarScale  float64    `yaml:"avatar_scale"`
}

// SwingConfig defines the bat swing curve and damage window.
type SwingConfig struct {
	Duration     float64 `yaml:"duration"`
	Cooldown     float64 `yaml:"cooldown"`
	RestDegrees  float64 `yaml:"rest_degrees"`
	UpperDegrees float64 `yaml:"upper_degrees"`
	LowerDegrees float64 `yaml:"lower_degrees"`
	Split        float64 `yaml:"split"`
	DamageStart  float64 `yaml:"damage_start"`
	DamageEnd    float64 `yaml:"damage_end"`
	RelaxRate    float64 `yaml:"relax_rate"`

	// ClipTimeScale is the playback speed of the avatar's swing clip. The
	// clip's scaled length holds off the walk and idle animations.
	ClipTimeScale float64 `yaml:"clip_time_scale"`
}

// BatConfig places the bat and its hit proxy.
type BatConfig struct {
	Pivot   [3]float64 `yaml:"pivot"`
	Length  float64    `yaml:"length"`
	HitSize [3]float64 `yaml:"hit_size"`
}

// WatermelonConfig defines spawning and the physics body of whole melons.
type WatermelonConfig struct {
	SpawnBase      [3]float64 `yaml:"spawn_base"`
	SpawnMargin    float64    `yaml:"spawn_margin"`
	DropHeight     float64    `yaml:"drop_height"`
	DropJitter     float64    `yaml:"drop_jitter"`
	SpawnGap       float64    `yaml:"spawn_gap"`
	SpawnAttempts  int        `yaml:"spawn_attempts"`
	Scale          float64    `yaml:"scale"`
	Mass           float64    `yaml:"mass"`
	LinearDamping  float64    `yaml:"linear_damping"`
	AngularDamping float64    `yaml:"angular_damping"`
	Restitution    float64    `yaml:"restitution"`
	Friction       float64    `yaml:"friction"`
	SleepLinear    float64    `yaml:"sleep_linear"`
	SleepAngular   float64    `yaml:"sleep_angular"`
	ClampThreshold float64    `yaml:"clamp_threshold"`
	ClampFactor    float64    `yaml:"clamp_factor"`
}

// BrokenConfig defines the broken melon pool and blink schedule.
type BrokenConfig struct {
	Scale             float64 `yaml:"scale"`
	HeightFactor      float64 `yaml:"height_factor"`
	PoolPrewarm       int     `yaml:"pool_prewarm"`
	BlinkDuration     float64 `yaml:"blink_duration"`
	BlinkInterval     float64 `yaml:"blink_interval"`
	BlinkAcceleration float64 `yaml:"blink_acceleration"`
	BlinkGrace        float64 `yaml:"blink_grace"`
	BlinkFloor        float64 `yaml:"blink_floor"` // fraction of BlinkInterval
}

// ParticleConfig defines the smash burst.
type ParticleConfig struct {
	Count    int     `yaml:"count"`
	Spread   float64 `yaml:"spread"`
	MinUp    float64 `yaml:"min_up"`
	MaxUp    float64 `yaml:"max_up"`
	Gravity  float64 `yaml:"gravity"`
	Lifetime float64 `yaml:"lifetime"`
	Opacity  float64 `yaml:"opacity"`
}

// FireworkConfig defines the end-of-round celebration.
type FireworkConfig struct {
	Threshold  int     `yaml:"threshold"`
	BaseBursts int     `yaml:"base_bursts"`
	PerSmash   float64 `yaml:"per_smash"`
	MaxBursts  int     `yaml:"max_bursts"`
	Spread     float64 `yaml:"spread"`
	MinRise    float64 `yaml:"min_rise"`
	MaxRise    float64 `yaml:"max_rise"`
	MaxDelay   float64 `yaml:"max_delay"`
	SparkLife  float64 `yaml:"spark_life"`
	Cleanup    float64 `yaml:"cleanup"`
}

// CameraConfig defines follow behaviour.
type CameraConfig struct {
	Distance          float64 `yaml:"distance"`
	ElevationDegrees  float64 `yaml:"elevation_degrees"`
	AngleSpeed        float64 `yaml:"angle_speed"`
	PositionSmoothing float64 `yaml:"position_smoothing"`
	TargetSmoothing   float64 `yaml:"target_smoothing"`
	OrbitDegrees      float64 `yaml:"orbit_degrees"` // per second of manual orbit
	FieldOfView       float64 `yaml:"field_of_view"`
}

// TerrainConfig defines the generated heightfield.
type TerrainConfig struct {
	Size       int     `yaml:"size"`
	Extent     float64 `yaml:"extent"`
	MinHeight  float64 `yaml:"min_height"`
	MaxHeight  float64 `yaml:"max_height"`
	Multiplier float64 `yaml:"multiplier"`
	Octaves    int     `yaml:"octaves"`
}

// PhysicsConfig defines the simulation step.
type PhysicsConfig struct {
	Gravity     float64 `yaml:"gravity"`
	FixedStep   float64 `yaml:"fixed_step"`
	MaxSubSteps int     `yaml:"max_substeps"`
}

// InputConfig defines key sampling.
type InputConfig struct {
	TapGraceMs int `yaml:"tap_grace_ms"`
}

// AudioConfig defines cue volumes and optional sound files.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	MusicVolume  float64 `yaml:"music_volume"`
	SwingVolume  float64 `yaml:"swing_volume"`
	HitVolume    float64 `yaml:"hit_volume"`
	ResultVolume float64 `yaml:"result_volume"`
	FinVolume    float64 `yaml:"fin_volume"`
	SoundDir     string  `yaml:"sound_dir"`
}

// Validate rejects configurations the game cannot run with.
func (c MelonConfig) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, name, v))
		}
	}

	positive("round.duration", c.Round.Duration)
	positive("round.eviction_seconds", c.Round.EvictionSeconds)
	positive("swing.duration", c.Swing.Duration)
	positive("broken.blink_duration", c.Broken.BlinkDuration)
	positive("broken.blink_interval", c.Broken.BlinkInterval)
	positive("particles.lifetime", c.Particles.Lifetime)
	positive("camera.distance", c.Camera.Distance)
	positive("terrain.extent", c.Terrain.Extent)
	positive("physics.fixed_step", c.Physics.FixedStep)
	positive("watermelon.scale", c.Watermelon.Scale)
	positive("watermelon.mass", c.Watermelon.Mass)

	if c.Round.InitialSpawn < 0 {
		errs = append(errs, fmt.Errorf("%w: round.initial_spawn must not be negative", ErrInvalid))
	}
	if c.Watermelon.SpawnAttempts < 1 {
		errs = append(errs, fmt.Errorf("%w: watermelon.spawn_attempts must be at least 1", ErrInvalid))
	}
	if c.Bounds.MinX >= c.Bounds.MaxX || c.Bounds.MinZ >= c.Bounds.MaxZ {
		errs = append(errs, fmt.Errorf("%w: bounds are inverted", ErrInvalid))
	}
	if c.Swing.Split <= 0 || c.Swing.Split >= 1 {
		errs = append(errs, fmt.Errorf("%w: swing.split must be in (0, 1), got %v", ErrInvalid, c.Swing.Split))
	}
	if c.Swing.DamageStart >= c.Swing.DamageEnd {
		errs = append(errs, fmt.Errorf("%w: swing damage window is empty", ErrInvalid))
	}
	if c.Terrain.Size < 2 {
		errs = append(errs, fmt.Errorf("%w: terrain.size must be at least 2", ErrInvalid))
	}
	return errors.Join(errs...)
}
