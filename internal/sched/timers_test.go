package sched

import (
	"slices"
	"testing"
)

func TestAdvanceRunsInDueOrder(t *testing.T) {
	tm := New()
	var got []string

	tm.After(2.0, func() { got = append(got, "b") })
	tm.After(1.0, func() { got = append(got, "a") })
	tm.After(2.0, func() { got = append(got, "c") })
	tm.After(5.0, func() { got = append(got, "late") })

	if ran := tm.Advance(2.0); ran != 3 {
		t.Errorf("Advance ran %d callbacks, expected 3", ran)
	}
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("order = %v, expected [a b c]", got)
	}
	if tm.Pending() != 1 {
		t.Errorf("Pending() = %d, expected 1", tm.Pending())
	}
}

func TestBumpMakesCallbacksStale(t *testing.T) {
	tm := New()
	fired := 0

	tm.AfterVersion(2.2, func() { fired++ })
	tm.Advance(1.0)
	tm.Bump()
	tm.AfterVersion(2.2, func() { fired += 10 })

	tm.Advance(5.0)
	if fired != 10 {
		t.Errorf("fired = %d, expected only the current-version callback", fired)
	}
	if tm.Pending() != 0 {
		t.Errorf("stale callbacks should be discarded once due, %d pending", tm.Pending())
	}
}

func TestUnversionedSurvivesBump(t *testing.T) {
	tm := New()
	cleaned := false
	tm.After(4.2, func() { cleaned = true })
	tm.Bump()
	tm.Advance(4.2)

	if !cleaned {
		t.Error("unversioned callback should fire after a bump")
	}
}

func TestChainedCallbacks(t *testing.T) {
	tm := New()
	var at []float64

	tm.AfterVersion(2.2, func() {
		at = append(at, tm.Now())
		tm.AfterVersion(1.5, func() { at = append(at, tm.Now()) })
	})

	tm.Advance(2.2)
	if len(at) != 1 {
		t.Fatalf("first stage fired %d times, expected 1", len(at))
	}
	tm.Advance(1.49)
	if len(at) != 1 {
		t.Fatal("second stage fired early")
	}
	tm.Advance(0.01)
	if len(at) != 2 {
		t.Fatal("second stage did not fire")
	}
}

func TestZeroAdvanceRunsOverdue(t *testing.T) {
	tm := New()
	ran := false
	tm.After(0, func() { ran = true })
	tm.Advance(0)
	if !ran {
		t.Error("zero-delay callback should run on the next Advance")
	}

	tm.After(1, func() {})
	tm.Clear()
	if tm.Pending() != 0 {
		t.Error("Clear should drop pending callbacks")
	}
}

func TestLiveIgnoresStale(t *testing.T) {
	tm := New()
	tm.AfterVersion(1, func() {})
	tm.After(1, func() {})
	tm.Bump()
	tm.AfterVersion(1, func() {})

	if tm.Pending() != 3 {
		t.Errorf("Pending() = %d, expected 3", tm.Pending())
	}
	if tm.Live() != 2 {
		t.Errorf("Live() = %d, expected 2", tm.Live())
	}
}
