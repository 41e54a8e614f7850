package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/melon-smash/internal/audio"
	"github.com/vovakirdan/melon-smash/internal/config"
	"github.com/vovakirdan/melon-smash/internal/core"
	"github.com/vovakirdan/melon-smash/internal/settings"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.melonsmash/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate for every session.
	TickRate int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
	}
}

// Admitter decides whether a new connection from ip may start a session.
type Admitter interface {
	Allow(ip string) bool
}

// SessionObserver is told when SSH sessions start and end.
type SessionObserver interface {
	SessionStarted()
	SessionEnded()
}

// SSHServer wraps a Wish SSH server that gives every connection its own
// Melon Smash session.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	deps     Deps
	admit    Admitter
	observer SessionObserver
	logger   *log.Logger
}

// SSHOption configures an SSHServer.
type SSHOption func(*SSHServer)

// WithAdmitter limits how often one address may open sessions.
func WithAdmitter(a Admitter) SSHOption {
	return func(s *SSHServer) { s.admit = a }
}

// WithSessionObserver reports session starts and ends.
func WithSessionObserver(o SessionObserver) SSHOption {
	return func(s *SSHServer) { s.observer = o }
}

// NewSSHServer creates a new SSH server. deps are shared by all sessions;
// each session replaces the audio player, preferences and player name.
func NewSSHServer(cfg SSHServerConfig, deps Deps, opts ...SSHOption) (*SSHServer, error) {
	logger := deps.logger().WithPrefix("ssh")

	srv := &SSHServer{
		config: cfg,
		deps:   deps,
		logger: logger,
	}
	for _, opt := range opts {
		opt(srv)
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = filepath.Join("~", config.AppDir, "host_key")
	}
	hostKeyPath = config.ExpandHome(hostKeyPath)

	hostKeyDir := filepath.Dir(hostKeyPath)
	if err := os.MkdirAll(hostKeyDir, 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}

	// Middlewares run last to first: admission, then logging, then the program.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
			srv.admissionMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		wish.Fatalln(sess, "melonsmash needs a terminal, connect with ssh -t")
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
	}

	deps := s.deps
	deps.Env.Audio = audio.NewNull()
	deps.Prefs = settings.New(nil, s.logger)
	deps.Player = sess.User()
	deps.Clipboard = false
	deps.Logger = s.logger.With("user", sess.User())

	return NewSessionModel(deps, cfg), []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		if s.observer != nil {
			s.observer.SessionStarted()
			defer s.observer.SessionEnded()
		}
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// admissionMiddleware rejects addresses that open sessions too quickly.
func (s *SSHServer) admissionMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		if s.admit != nil {
			ip := remoteIP(sess.RemoteAddr())
			if !s.admit.Allow(ip) {
				s.logger.Warn("session rejected", "remote", ip)
				wish.Fatalln(sess, "too many connections, try again in a moment")
				return
			}
		}
		next(sess)
	}
}

func remoteIP(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// Serve runs the server until ctx is cancelled, then shuts it down.
func (s *SSHServer) Serve(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("tui: SSH server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
