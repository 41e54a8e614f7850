package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/melon-smash/internal/assets"
	"github.com/vovakirdan/melon-smash/internal/platform/tui"
	"github.com/vovakirdan/melon-smash/internal/platform/web"
	"github.com/vovakirdan/melon-smash/internal/registry"
	"github.com/vovakirdan/melon-smash/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagHTTPAddr    string
	flagOrigins     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Melon Smash SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with the title screen. The SSH
username is the player name, and all users share the same leaderboard.

With --http the server also exposes:
  /healthz        - Liveness probe
  /metrics        - Prometheus metrics
  /api/scores     - Leaderboard (?mode=melon&limit=10)
  /api/stats      - Aggregate stats per mode
  /api/feed       - Websocket feed of live gameplay events

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.melonsmash/host_key

Examples:
  melonsmash serve                           # Listen on :23234 with auto-generated key
  melonsmash serve --ssh :2222               # Listen on port 2222
  melonsmash serve --http :8080              # Also serve metrics and the feed
  melonsmash serve --db ./scores.db          # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP address for metrics, scores and the feed (disabled if empty)")
	serveCmd.Flags().StringVar(&flagOrigins, "origins", "", "Comma-separated origins allowed to open the feed (default: localhost)")
}

func runServe(_ *cobra.Command, _ []string) error {
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	melonCfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database, results will not be saved", "path", flagDBPath, "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	bundle, err := assets.NewLoader("", "", logger.WithPrefix("assets")).Load(context.Background())
	if err != nil {
		return fmt.Errorf("cannot load assets: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := web.NewMetrics()
	eventSinks := sinks{metrics}

	var hub *web.Hub
	if flagHTTPAddr != "" {
		hub = web.NewHub(logger, parseOrigins(flagOrigins))
		eventSinks = append(eventSinks, hub)
	}

	deps := tui.Deps{
		Env: registry.Env{
			Config: &melonCfg,
			Logger: logger.WithPrefix("melon"),
			Assets: bundle,
		},
		Store:  store,
		Sink:   eventSinks,
		Steps:  metrics,
		Logger: logger,
	}

	admission := web.NewIPRateLimiter(web.SessionRateLimitConfig())
	admission.Start()
	defer admission.Stop()

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickRate = flagFPS

	sshServer, err := tui.NewSSHServer(sshCfg, deps,
		tui.WithAdmitter(admission),
		tui.WithSessionObserver(metrics),
	)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sshServer.Serve(ctx) })

	if hub != nil {
		limiter := web.NewIPRateLimiter(web.DefaultRateLimitConfig())
		limiter.Start()
		defer limiter.Stop()

		routerCfg := web.RouterConfig{
			Hub:         hub,
			RateLimiter: limiter,
			CORSOrigins: parseOrigins(flagOrigins),
			Logger:      logger,
		}
		if store != nil {
			routerCfg.Scores = store
		}
		httpServer := web.NewServer(flagHTTPAddr, web.NewRouter(routerCfg), logger)

		g.Go(func() error {
			hub.Run(ctx)
			return nil
		})
		g.Go(func() error { return httpServer.Serve(ctx) })
	}

	fmt.Printf("Melon Smash SSH server listening on %s\n", sshCfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", port(sshCfg.Address))
	if flagHTTPAddr != "" {
		fmt.Printf("HTTP on %s (metrics at /metrics, feed at /api/feed)\n", flagHTTPAddr)
	}
	fmt.Println("Press Ctrl+C to stop")

	return g.Wait()
}

// parseOrigins splits --origins; empty means the localhost defaults.
func parseOrigins(s string) []string {
	if strings.TrimSpace(s) == "" {
		return web.DefaultOrigins()
	}
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func port(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i+1:]
	}
	return addr
}
