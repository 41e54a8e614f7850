package melon

import (
	"testing"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/sched"
)

func advance(timers *sched.Timers, r *Round, seconds float64) (ended int) {
	for range int(seconds/tick + 0.5) {
		timers.Advance(tick)
		if r.Tick(tick) {
			ended++
		}
	}
	return ended
}

func TestRoundCountdown(t *testing.T) {
	cfg := config.DefaultMelonConfig().Round
	timers := sched.New()
	r := newRound(cfg, timers, false)
	began := 0
	r.onBegin = func() { began++ }
	r.Reset()

	if r.Phase() != PhaseCountdown || r.Banner() != BannerReady {
		t.Fatalf("after reset: phase %v banner %q", r.Phase(), r.Banner())
	}
	advance(timers, r, cfg.ReadySeconds+0.05)
	if r.Banner() != BannerGo || r.Active() {
		t.Errorf("after ready: banner %q active %v", r.Banner(), r.Active())
	}
	advance(timers, r, cfg.GoSeconds)
	if !r.Active() || r.Banner() != "" {
		t.Errorf("after go: banner %q active %v", r.Banner(), r.Active())
	}
	if began != 1 {
		t.Errorf("onBegin calls: got %d, expected 1", began)
	}
}

func TestRoundResetCancelsCountdown(t *testing.T) {
	cfg := config.DefaultMelonConfig().Round
	timers := sched.New()
	r := newRound(cfg, timers, false)
	r.Reset()
	advance(timers, r, cfg.ReadySeconds/2)
	r.Reset()
	r.Reset()

	if got := timers.Live(); got != 2 {
		t.Errorf("live countdown callbacks: got %d, expected 2", got)
	}
	advance(timers, r, cfg.ReadySeconds/2+0.05)
	if r.Banner() != BannerReady {
		t.Errorf("stale callback fired: banner %q", r.Banner())
	}
}

func TestRoundTimeUpOnce(t *testing.T) {
	cfg := config.DefaultMelonConfig().Round
	cfg.Duration = 1
	timers := sched.New()
	r := newRound(cfg, timers, false)
	r.Reset()

	ended := advance(timers, r, cfg.ReadySeconds+cfg.GoSeconds+cfg.Duration+2)
	if ended != 1 {
		t.Errorf("time up fired %d times, expected 1", ended)
	}
	if r.Phase() != PhaseEnded || r.Remaining() != 0 || r.Seconds() != 0 {
		t.Errorf("after time up: phase %v remaining %v", r.Phase(), r.Remaining())
	}
}

func TestRoundUntimedNeverEnds(t *testing.T) {
	cfg := config.DefaultMelonConfig().Round
	cfg.Duration = 1
	timers := sched.New()
	r := newRound(cfg, timers, true)
	r.Reset()

	if ended := advance(timers, r, 10); ended != 0 {
		t.Errorf("untimed round ended %d times", ended)
	}
	if !r.Active() || r.Remaining() != cfg.Duration {
		t.Errorf("untimed: active %v remaining %v", r.Active(), r.Remaining())
	}
}

func TestRoundSecondsRoundsUp(t *testing.T) {
	r := newRound(config.DefaultMelonConfig().Round, sched.New(), false)
	tests := []struct {
		remaining float64
		expected  int
	}{
		{60, 60},
		{59.01, 60},
		{0.2, 1},
		{0, 0},
	}
	for _, tt := range tests {
		r.remaining = tt.remaining
		if got := r.Seconds(); got != tt.expected {
			t.Errorf("Seconds(%v) = %d, expected %d", tt.remaining, got, tt.expected)
		}
	}
}

func TestResultMessage(t *testing.T) {
	tests := []struct {
		count    int
		expected string
		tier     int
	}{
		{0, "まだ割れていない…まずは1個狙おう", 4},
		{1, "ウォーミングアップ完了！", 3},
		{4, "ウォーミングアップ完了！", 3},
		{5, "いい調子、そのまま続けよう", 2},
		{10, "超爽快スイング！", 1},
		{14, "超爽快スイング！", 1},
		{15, "伝説のスイカハンター！", 0},
		{99, "伝説のスイカハンター！", 0},
	}
	for _, tt := range tests {
		if got := ResultMessage(tt.count); got != tt.expected {
			t.Errorf("ResultMessage(%d) = %q, expected %q", tt.count, got, tt.expected)
		}
		if got := ResultTier(tt.count); got != tt.tier {
			t.Errorf("ResultTier(%d) = %d, expected %d", tt.count, got, tt.tier)
		}
	}
}
