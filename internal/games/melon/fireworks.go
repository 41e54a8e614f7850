package melon

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/sched"
)

// Spark is one firework over the result panel. Left and Top are fractions
// of the panel; DX and DY are the drift in cells over its flight.
type Spark struct {
	ID    int
	Hue   int
	Left  float64
	Top   float64
	DX    float64
	DY    float64
	Delay float64
	Born  float64 // scheduler time at launch
	Life  float64
}

// Progress is 0 before the spark's delay has passed and 1 when it is done.
func (s Spark) Progress(now float64) float64 {
	t := (now - s.Born - s.Delay) / s.Life
	return math.Max(0, math.Min(1, t))
}

// Fireworks runs the celebration shown for a good round. Every spark
// removes itself on a timer and a final timer clears whatever is left.
type Fireworks struct {
	cfg    config.FireworkConfig
	rng    *rand.Rand
	timers *sched.Timers

	sparks []Spark
	nextID int
	gen    int
}

func newFireworks(cfg config.FireworkConfig, rng *rand.Rand, timers *sched.Timers) *Fireworks {
	return &Fireworks{cfg: cfg, rng: rng, timers: timers}
}

// Bursts is the number of sparks launched for a smash count.
func (f *Fireworks) Bursts(count int) int {
	n := f.cfg.BaseBursts + int(math.Floor(float64(count)*f.cfg.PerSmash))
	return min(f.cfg.MaxBursts, n)
}

// Trigger clears any previous show and launches a new one when count
// reaches the threshold. It reports whether a show started.
func (f *Fireworks) Trigger(count int) bool {
	f.Clear()
	if count < f.cfg.Threshold {
		return false
	}

	now := f.timers.Now()
	for range f.Bursts(count) {
		f.nextID++
		s := Spark{
			ID:    f.nextID,
			Hue:   f.rng.Intn(360),
			DX:    spread(f.rng, f.cfg.Spread),
			DY:    -(f.cfg.MinRise + f.rng.Float64()*(f.cfg.MaxRise-f.cfg.MinRise)),
			Left:  0.15 + f.rng.Float64()*0.7,
			Top:   0.15 + f.rng.Float64()*0.7,
			Delay: f.rng.Float64() * f.cfg.MaxDelay,
			Born:  now,
			Life:  f.cfg.SparkLife,
		}
		f.sparks = append(f.sparks, s)
		id := s.ID
		f.timers.After(s.Delay+s.Life, func() { f.remove(id) })
	}

	gen := f.gen
	f.timers.After(f.cfg.Cleanup, func() {
		if f.gen == gen {
			f.Clear()
		}
	})
	return true
}

func (f *Fireworks) remove(id int) {
	for i, s := range f.sparks {
		if s.ID == id {
			f.sparks = append(f.sparks[:i], f.sparks[i+1:]...)
			return
		}
	}
}

// Clear removes every spark and disarms the pending cleanup.
func (f *Fireworks) Clear() {
	f.gen++
	f.sparks = nil
}

// Sparks returns the sparks still in flight.
func (f *Fireworks) Sparks() []Spark {
	return f.sparks
}
