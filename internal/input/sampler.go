// Package input turns raw key presses into per-tick action state.
//
// Terminals report key presses but not releases, so a press keeps its action
// held for a short grace window. Fast taps therefore survive until at least
// one simulation tick samples them.
package input

import (
	"time"

	"github.com/vovakirdan/melon-smash/internal/core"
)

// DefaultTapGrace is how long an action stays pressed after its last press.
const DefaultTapGrace = 140 * time.Millisecond

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

type keyState struct {
	tapUntil time.Time
	seq      uint64 // press counter
	seenSeq  uint64 // last press reported by JustPressed
}

// Sampler tracks raw key state per action. It is not safe for concurrent
// use; the platform feeds it from the UI goroutine.
type Sampler struct {
	grace time.Duration
	now   Clock
	keys  map[core.Action]*keyState
}

// NewSampler creates a sampler with the given grace window. A zero grace uses
// DefaultTapGrace; a nil clock uses time.Now.
func NewSampler(grace time.Duration, clock Clock) *Sampler {
	if grace <= 0 {
		grace = DefaultTapGrace
	}
	if clock == nil {
		clock = time.Now
	}
	return &Sampler{
		grace: grace,
		now:   clock,
		keys:  make(map[core.Action]*keyState),
	}
}

func (s *Sampler) state(a core.Action) *keyState {
	k, ok := s.keys[a]
	if !ok {
		k = &keyState{}
		s.keys[a] = k
	}
	return k
}

// Tap records a key press. Terminal auto-repeat arrives as more taps inside
// the grace window; those extend the hold but are not fresh presses.
func (s *Sampler) Tap(a core.Action) {
	k := s.state(a)
	now := s.now()
	if !now.Before(k.tapUntil) {
		k.seq++
	}
	k.tapUntil = now.Add(s.grace)
}

// Pressed reports whether the action is still inside its grace window.
func (s *Sampler) Pressed(a core.Action) bool {
	k, ok := s.keys[a]
	if !ok {
		return false
	}
	return s.now().Before(k.tapUntil)
}

// JustPressed reports a press that has not been reported before.
func (s *Sampler) JustPressed(a core.Action) bool {
	k, ok := s.keys[a]
	if !ok || k.seq == k.seenSeq {
		return false
	}
	k.seenSeq = k.seq
	return true
}

// Frame builds the frame for the current tick. Presses not yet seen by a
// previous frame are marked fresh, so each tap reaches the game once.
func (s *Sampler) Frame() core.InputFrame {
	frame := core.NewInputFrame()
	for a := range s.keys {
		switch {
		case s.JustPressed(a):
			frame.Press(a)
		case s.Pressed(a):
			frame.Set(a)
		}
	}
	return frame
}

// Reset forgets all key state.
func (s *Sampler) Reset() {
	clear(s.keys)
}
