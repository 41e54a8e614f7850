package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vovakirdan/melon-smash/internal/core"
)

// Labels are bounded: mode is a registered game ID, reason a fixed set.
var (
	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "melonsmash_step_duration_seconds",
		Help:    "Time spent in one simulation step",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033},
	}, []string{"mode"})

	smashTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melonsmash_smashes_total",
		Help: "Watermelons smashed",
	}, []string{"mode"})

	evictedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melonsmash_evictions_total",
		Help: "Watermelons replaced after leaving the play area",
	}, []string{"mode"})

	roundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melonsmash_rounds_total",
		Help: "Rounds by lifecycle event",
	}, []string{"mode", "event"})

	roundScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "melonsmash_round_score",
		Help:    "Watermelons smashed per finished round",
		Buckets: []float64{0, 1, 5, 10, 15, 20, 30},
	}, []string{"mode"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "melonsmash_sessions_active",
		Help: "Currently connected SSH sessions",
	})

	feedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "melonsmash_feed_clients",
		Help: "Currently connected feed websockets",
	})

	feedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "melonsmash_feed_messages_total",
		Help: "Messages broadcast on the feed",
	})

	feedDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "melonsmash_feed_dropped_total",
		Help: "Feed messages dropped because a buffer was full",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "melonsmash_connection_rejected_total",
		Help: "Connections rejected by rate limiting or origin checks",
	}, []string{"reason"}) // rate_limit, origin, feed_ip_limit, feed_total_limit

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "melonsmash_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Metrics records gameplay observations. It satisfies the terminal
// platform's event sink, step observer and session observer.
type Metrics struct{}

// NewMetrics returns the process-wide metrics recorder.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveStep records how long one simulation step took.
func (*Metrics) ObserveStep(gameID string, d time.Duration) {
	stepDuration.WithLabelValues(gameID).Observe(d.Seconds())
}

// Publish counts a gameplay event.
func (*Metrics) Publish(gameID, _ string, ev core.Event) {
	switch ev.Kind {
	case core.EventSmash:
		smashTotal.WithLabelValues(gameID).Inc()
	case core.EventEvicted:
		evictedTotal.WithLabelValues(gameID).Inc()
	case core.EventRoundStarted, core.EventRoundReset:
		roundsTotal.WithLabelValues(gameID, ev.Kind.String()).Inc()
	case core.EventRoundEnded:
		roundsTotal.WithLabelValues(gameID, ev.Kind.String()).Inc()
		roundScore.WithLabelValues(gameID).Observe(float64(ev.Count))
	}
}

func (*Metrics) SessionStarted() { sessionsActive.Inc() }
func (*Metrics) SessionEnded() { sessionsActive.Dec() }

// RecordConnectionRejected increments the rejection counter.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}
