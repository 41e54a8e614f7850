package config

import (
	_ "embed"
)

//go:embed defaults/melon.yaml
var defaultMelonYAML []byte

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultMelonYAML...)
}

// DefaultMelonConfig returns the default gameplay configuration.
func DefaultMelonConfig() MelonConfig {
	return MelonConfig{
		Round: RoundConfig{
			Duration:        60,
			InitialSpawn:    3,
			ReadySeconds:    2.2,
			GoSeconds:       1.5,
			EvictionSeconds: 3,
		},
		Bounds: BoundsConfig{
			MinX: -80,
			MaxX: 80,
			MinZ: -80,
			MaxZ: 110,
		},
		Player: PlayerConfig{
			Start:        [3]float64{0, 0, -50},
			Speed:        38,
			TurnDegrees:  160,
			TurnSnap:     3,
			GroundOffset: 0.6,
			HeroHeight:   24,
			AvatarScale:  12,
		},
		Swing: SwingConfig{
			Duration:     0.5,
			Cooldown:     0.2,
			RestDegrees:  -120,
			UpperDegrees: -40,
			LowerDegrees: -240,
			Split:        0.45,
			DamageStart:  0.2,
			DamageEnd:    0.95,
			RelaxRate:    8,

			ClipTimeScale: 2,
		},
		Bat: BatConfig{
			Pivot:   [3]float64{0, 13, 1.6},
			Length:  15,
			HitSize: [3]float64{0.4, 0.4, 15},
		},
		Watermelon: WatermelonConfig{
			SpawnBase:      [3]float64{0, 80, 32},
			SpawnMargin:    20,
			DropHeight:     150,
			DropJitter:     150,
			SpawnGap:       8,
			SpawnAttempts:  32,
			Scale:          40,
			Mass:           10,
			LinearDamping:  1,
			AngularDamping: 1,
			Restitution:    0,
			Friction:       1,
			SleepLinear:    0.01,
			SleepAngular:   0.01,
			ClampThreshold: 0.1,
			ClampFactor:    0.3,
		},
		Broken: BrokenConfig{
			Scale:             20,
			HeightFactor:      0.25,
			PoolPrewarm:       6,
			BlinkDuration:     5,
			BlinkInterval:     0.18,
			BlinkAcceleration: 1.8,
			BlinkGrace:        2,
			BlinkFloor:        0.2,
		},
		Particles: ParticleConfig{
			Count:    16,
			Spread:   40,
			MinUp:    10,
			MaxUp:    30,
			Gravity:  -45,
			Lifetime: 1.1,
			Opacity:  0.95,
		},
		Fireworks: FireworkConfig{
			Threshold:  10,
			BaseBursts: 12,
			PerSmash:   1.5,
			MaxBursts:  36,
			Spread:     220,
			MinRise:    120,
			MaxRise:    240,
			MaxDelay:   1.1,
			SparkLife:  2.4,
			Cleanup:    4.2,
		},
		Camera: CameraConfig{
			Distance:          85,
			ElevationDegrees:  30,
			AngleSpeed:        4,
			PositionSmoothing: 3,
			TargetSmoothing:   4,
			OrbitDegrees:      90,
			FieldOfView:       60,
		},
		Terrain: TerrainConfig{
			Size:       192,
			Extent:     600,
			MinHeight:  -18,
			MaxHeight:  26,
			Multiplier: 1.1,
			Octaves:    4,
		},
		Physics: PhysicsConfig{
			Gravity:     -9.8,
			FixedStep:   1.0 / 60.0,
			MaxSubSteps: 10,
		},
		Input: InputConfig{
			TapGraceMs: 140,
		},
		Audio: AudioConfig{
			Enabled:      true,
			MusicVolume:  0.35,
			SwingVolume:  0.65,
			HitVolume:    0.75,
			ResultVolume: 0.9,
			FinVolume:    0.8,
			SoundDir:     "~/.melonsmash/sounds",
		},
	}
}
