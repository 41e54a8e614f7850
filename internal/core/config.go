package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// Delta returns the fixed simulation step in seconds.
func (c RuntimeConfig) Delta() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 60.0
	}
	return 1.0 / float64(c.TickRate)
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score    int  // Watermelons smashed this round
	GameOver bool // Round ended, result panel showing
	Paused   bool
	Active   bool    // Round running (countdown finished, time left)
	TimeLeft float64 // Seconds remaining in the round
}

// EventKind identifies a gameplay event reported from a step.
type EventKind int

const (
	EventNone EventKind = iota
	EventRoundReset
	EventRoundStarted
	EventSmash
	EventEvicted
	EventRoundEnded
)

// String returns the wire name of the event.
func (k EventKind) String() string {
	switch k {
	case EventRoundReset:
		return "round:reset"
	case EventRoundStarted:
		return "round:started"
	case EventSmash:
		return "melon:smash"
	case EventEvicted:
		return "melon:evicted"
	case EventRoundEnded:
		return "round:ended"
	default:
		return "none"
	}
}

// Event is a single gameplay occurrence. Unused fields are zero.
type Event struct {
	Kind    EventKind
	Count   int
	Tier    int
	X, Y, Z float64
	Message string
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State  GameState
	Events []Event
}
