// Package sched runs deferred callbacks on simulated time.
//
// Timers advance only when the owner calls Advance, so a paused game also
// pauses its timers and tests can step time exactly. Callbacks scheduled
// with a version fire only if the version is still current; bumping the
// version is the only way to cancel them.
package sched

import (
	"sort"
)

type timer struct {
	due       float64
	seq       uint64
	version   uint64
	versioned bool
	fn        func()
}

// Timers is a queue of callbacks keyed by simulated due time.
// It is not safe for concurrent use.
type Timers struct {
	now     float64
	seq     uint64
	version uint64
	pending []timer
}

// New creates an empty queue at time zero.
func New() *Timers {
	return &Timers{}
}

// Now returns the simulated time in seconds.
func (t *Timers) Now() float64 {
	return t.now
}

// Version returns the current version stamp.
func (t *Timers) Version() uint64 {
	return t.version
}

// Bump invalidates every versioned callback scheduled so far and returns
// the new version.
func (t *Timers) Bump() uint64 {
	t.version++
	return t.version
}

// After schedules fn to run delay seconds from now regardless of version.
func (t *Timers) After(delay float64, fn func()) {
	t.push(timer{due: t.now + delay, fn: fn})
}

// AfterVersion schedules fn to run delay seconds from now if the version is
// still the one current at scheduling time.
func (t *Timers) AfterVersion(delay float64, fn func()) {
	t.push(timer{due: t.now + delay, version: t.version, versioned: true, fn: fn})
}

func (t *Timers) push(tm timer) {
	t.seq++
	tm.seq = t.seq
	t.pending = append(t.pending, tm)
}

// Pending returns the number of callbacks not yet run or discarded.
func (t *Timers) Pending() int {
	return len(t.pending)
}

// Live returns the number of pending callbacks that would still run.
func (t *Timers) Live() int {
	n := 0
	for _, tm := range t.pending {
		if !tm.versioned || tm.version == t.version {
			n++
		}
	}
	return n
}

// Advance moves time forward by dt and runs every due callback in due
// order, ties broken by scheduling order. Callbacks may schedule more
// callbacks; those run in the same call if they fall due within dt.
// It returns the number of callbacks that ran.
func (t *Timers) Advance(dt float64) int {
	if dt > 0 {
		t.now += dt
	}
	ran := 0
	for {
		idx := t.nextDue()
		if idx < 0 {
			return ran
		}
		tm := t.pending[idx]
		t.pending = append(t.pending[:idx], t.pending[idx+1:]...)
		if tm.versioned && tm.version != t.version {
			continue
		}
		tm.fn()
		ran++
	}
}

func (t *Timers) nextDue() int {
	best := -1
	for i, tm := range t.pending {
		if tm.due > t.now+1e-9 {
			continue
		}
		if best < 0 || tm.due < t.pending[best].due ||
			(tm.due == t.pending[best].due && tm.seq < t.pending[best].seq) {
			best = i
		}
	}
	return best
}

// Clear drops all pending callbacks without running them.
func (t *Timers) Clear() {
	t.pending = t.pending[:0]
}

// DueTimes returns the pending due times in order. Used for diagnostics.
func (t *Timers) DueTimes() []float64 {
	out := make([]float64, 0, len(t.pending))
	for _, tm := range t.pending {
		out = append(out, tm.due)
	}
	sort.Float64s(out)
	return out
}
