package melon

import "math"

// snapScale quantizes floats so tiny rounding differences do not change
// the hash.
const snapScale = 1000

// Snapshot contains the observable game state for replays and
// determinism checks. Uses primitive types only for stable serialization.
type Snapshot struct {
	Tick      uint64
	Mode      int
	Phase     string
	Smashed   int
	Remaining int // milliseconds
	Banner    string
	Paused    bool

	PlayerX     int
	PlayerZ     int
	PlayerAngle int // milliradians
	BackHolding bool

	Swinging   bool
	SwingTimer int
	Cooldown   int
	SwingHit   bool

	// Each melon is 6 ints: ID, Whole, X, Y, Z, OutOfBounds (ms)
	MelonCount int
	MelonData  []int

	PoolFree  int
	PoolBuilt int

	Bursts int
	Sparks int
	Timers int
}

func quantize(v float64) int {
	return int(math.Round(v * snapScale))
}

// Snapshot returns the current game state as a Snapshot.
func (g *Game) Snapshot() Snapshot {
	melons := g.field.Melons()
	data := make([]int, 0, len(melons)*6)
	for _, m := range melons {
		whole := 0
		if m.Whole != nil {
			whole = 1
		}
		p := m.Position()
		data = append(data, m.ID, whole, quantize(p.X()), quantize(p.Y()), quantize(p.Z()), quantize(m.OutOfBounds))
	}

	return Snapshot{
		Tick:      g.tickCount,
		Mode:      int(g.mode),
		Phase:     g.round.Phase().String(),
		Smashed:   g.round.Smashed(),
		Remaining: quantize(g.round.Remaining()),
		Banner:    g.round.Banner(),
		Paused:    g.paused,

		PlayerX:     quantize(g.player.Position.X()),
		PlayerZ:     quantize(g.player.Position.Z()),
		PlayerAngle: quantize(g.player.Angle),
		BackHolding: g.player.BackHolding(),

		Swinging:   g.swing.Swinging(),
		SwingTimer: quantize(g.swing.Timer()),
		Cooldown:   quantize(g.swing.Cooldown()),
		SwingHit:   g.swing.Hit(),

		MelonCount: len(melons),
		MelonData:  data,

		PoolFree:  g.field.Pool().Free(),
		PoolBuilt: g.field.Pool().Built(),

		Bursts: len(g.particles.Bursts()),
		Sparks: len(g.fireworks.Sparks()),
		Timers: g.timers.Live(),
	}
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + uint64(snap.Mode)        //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Smashed)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Remaining)   //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerX)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerZ)     //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PlayerAngle) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.SwingTimer)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Cooldown)    //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.MelonCount)  //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PoolFree)    //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.PoolBuilt)   //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Bursts)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Sparks)      //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Timers)      //#nosec G115 -- hash computation
	h = h*31 + boolBit(snap.Paused)
	h = h*31 + boolBit(snap.BackHolding)
	h = h*31 + boolBit(snap.Swinging)
	h = h*31 + boolBit(snap.SwingHit)

	for _, r := range snap.Phase + snap.Banner {
		h = h*31 + uint64(r) //#nosec G115 -- hash computation
	}

	for _, v := range snap.MelonData {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}

	return h
}
