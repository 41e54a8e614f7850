// Package web serves the spectator and operations surface: Prometheus
// metrics, health, the leaderboard API, and a websocket feed of gameplay
// events.
package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vovakirdan/melon-smash/internal/storage"
)

const (
	defaultScoresLimit = 10
	maxScoresLimit     = 100
)

// ScoreSource is the part of the round store the API reads.
type ScoreSource interface {
	TopRounds(gameID string, limit int) ([]storage.Round, error)
	RecentRounds(limit int) ([]storage.Round, error)
	PlayerRounds(player string, limit int) ([]storage.Round, error)
	GetAllGamesStats() (map[string]*storage.GameStats, error)
}

// RouterConfig contains the dependencies of the HTTP router.
type RouterConfig struct {
	// Scores serves /api/scores. Nil answers 503.
	Scores ScoreSource

	// Hub serves /api/feed. Nil disables the feed route.
	Hub *Hub

	// RateLimiter is optional; nil builds one from DefaultRateLimitConfig.
	RateLimiter *IPRateLimiter

	// CORSOrigins defaults to localhost on any port.
	CORSOrigins []string

	// Logger logs requests; nil disables request logging.
	Logger *log.Logger
}

// DefaultOrigins allows local development pages.
func DefaultOrigins() []string {
	return []string{"http://localhost:*", "http://127.0.0.1:*"}
}

type handlers struct {
	scores ScoreSource
	logger *log.Logger
}

// NewRouter builds the router. It starts no goroutines and opens no
// listeners, so tests can mount it on httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = NewIPRateLimiter(DefaultRateLimitConfig())
	}
	r.Use(limiter.Middleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = DefaultOrigins()
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &handlers{scores: cfg.Scores, logger: cfg.Logger}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/scores", h.handleScores)
		r.Get("/scores/recent", h.handleRecent)
		r.Get("/players/{player}/rounds", h.handlePlayer)
		r.Get("/stats", h.handleStats)
		if cfg.Hub != nil {
			r.Get("/feed", cfg.Hub.HandleWebSocket)
		}
	})

	return r
}

// requestLogger logs each request through charm log and records latency
// by route pattern.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	logger = logger.WithPrefix("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			requestLatency.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
			)
		})
	}
}

func (h *handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) handleScores(w http.ResponseWriter, r *http.Request) {
	if h.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "scores unavailable")
		return
	}
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "melon"
	}
	rounds, err := h.scores.TopRounds(mode, parseLimit(r))
	if err != nil {
		h.logger.Error("cannot read scores", "mode", mode, "error", err)
		writeError(w, http.StatusInternalServerError, "cannot read scores")
		return
	}
	if rounds == nil {
		rounds = []storage.Round{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"mode": mode, "rounds": rounds})
}

func (h *handlers) handleRecent(w http.ResponseWriter, r *http.Request) {
	if h.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "scores unavailable")
		return
	}
	rounds, err := h.scores.RecentRounds(parseLimit(r))
	if err != nil {
		h.logger.Error("cannot read recent rounds", "error", err)
		writeError(w, http.StatusInternalServerError, "cannot read scores")
		return
	}
	if rounds == nil {
		rounds = []storage.Round{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rounds": rounds})
}

func (h *handlers) handlePlayer(w http.ResponseWriter, r *http.Request) {
	if h.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "scores unavailable")
		return
	}
	player := chi.URLParam(r, "player")
	rounds, err := h.scores.PlayerRounds(player, parseLimit(r))
	if err != nil {
		h.logger.Error("cannot read player rounds", "player", player, "error", err)
		writeError(w, http.StatusInternalServerError, "cannot read scores")
		return
	}
	if rounds == nil {
		rounds = []storage.Round{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": player, "rounds": rounds})
}

func (h *handlers) handleStats(w http.ResponseWriter, _ *http.Request) {
	if h.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "scores unavailable")
		return
	}
	stats, err := h.scores.GetAllGamesStats()
	if err != nil {
		h.logger.Error("cannot read stats", "error", err)
		writeError(w, http.StatusInternalServerError, "cannot read stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseLimit reads ?limit=, clamped to [1, maxScoresLimit].
func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultScoresLimit
	}
	return min(n, maxScoresLimit)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Client may have gone away
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
