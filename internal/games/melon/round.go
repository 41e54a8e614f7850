package melon

import (
	"math"

	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/sched"
)

// Banner texts shown during the countdown.
const (
	BannerReady = "Ready"
	BannerGo    = "GO!"
)

// Phase is where the round controller is.
type Phase int

const (
	PhaseCountdown Phase = iota
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "countdown"
	}
}

// Round owns the countdown, the clock and the smash count.
type Round struct {
	cfg     config.RoundConfig
	timers  *sched.Timers
	untimed bool
	onBegin func()

	active    bool
	ended     bool
	remaining float64
	smashed   int
	banner    string
}

func newRound(cfg config.RoundConfig, timers *sched.Timers, untimed bool) *Round {
	return &Round{cfg: cfg, timers: timers, untimed: untimed, remaining: cfg.Duration}
}

func (r *Round) Active() bool { return r.active }
func (r *Round) Ended() bool { return r.ended }
func (r *Round) Remaining() float64 { return r.remaining }
func (r *Round) Smashed() int { return r.smashed }
func (r *Round) Banner() string { return r.banner }

// Phase derives the phase from the flags.
func (r *Round) Phase() Phase {
	switch {
	case r.ended:
		return PhaseEnded
	case r.active:
		return PhaseActive
	}
	return PhaseCountdown
}

// Seconds is the remaining time as shown on the HUD.
func (r *Round) Seconds() int {
	return int(math.Max(0, math.Ceil(r.remaining)))
}

// Reset restores a fresh round and starts the countdown. Countdown
// callbacks from an earlier reset are invalidated.
func (r *Round) Reset() {
	r.active = false
	r.ended = false
	r.remaining = r.cfg.Duration
	r.smashed = 0
	r.startCountdown()
}

func (r *Round) startCountdown() {
	r.timers.Bump()
	r.banner = BannerReady
	r.timers.AfterVersion(r.cfg.ReadySeconds, func() {
		r.banner = BannerGo
	})
	r.timers.AfterVersion(r.cfg.ReadySeconds+r.cfg.GoSeconds, func() {
		r.banner = ""
		r.begin()
	})
}

func (r *Round) begin() {
	if r.active {
		return
	}
	r.active = true
	if r.onBegin != nil {
		r.onBegin()
	}
}

// AddSmash counts a broken melon.
func (r *Round) AddSmash() {
	r.smashed++
}

// Tick runs the clock. It reports true on the tick the time runs out.
func (r *Round) Tick(dt float64) bool {
	if !r.active || r.untimed {
		return false
	}
	r.remaining = math.Max(0, r.remaining-dt)
	if r.remaining > 0 {
		return false
	}
	r.active = false
	r.ended = true
	return true
}

// Result tiers, best first.
var resultTiers = []struct {
	min     int
	message string
}{
	{15, "伝説のスイカハンター！"},
	{10, "超爽快スイング！"},
	{5, "いい調子、そのまま続けよう"},
	{1, "ウォーミングアップ完了！"},
	{0, "まだ割れていない…まずは1個狙おう"},
}

// ResultMessage picks the end-of-round line for a smash count.
func ResultMessage(count int) string {
	for _, t := range resultTiers {
		if count >= t.min {
			return t.message
		}
	}
	return resultTiers[len(resultTiers)-1].message
}

// ResultTier is the index of the tier for count, 0 being the best.
func ResultTier(count int) int {
	for i, t := range resultTiers {
		if count >= t.min {
			return i
		}
	}
	return len(resultTiers) - 1
}
