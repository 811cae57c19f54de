package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/naveenspark/casedesk/internal/config"
	"github.com/naveenspark/casedesk/internal/logging"
	"github.com/naveenspark/casedesk/internal/tui"
	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// errNotSignedIn is returned by one-shot commands without a usable session.
var errNotSignedIn = errors.New("not signed in; run casedesk to sign in")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(stdout, "casedesk "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(stdout)
		return nil
	case "", "logout", "spin", "verify", "dashboard":
	default:
		return fmt.Errorf("unknown command %q (see casedesk help)", cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logCloser, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close() //nolint:errcheck

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	s, err := session.New(ctx, cfg.APIURL, store, session.Options{
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()
	logger.Debug("session opened", "api_url", cfg.APIURL, "store", cfg.TokenStore, "state", s.State().String())

	switch cmd {
	case "logout":
		return runLogout(s, stdout)
	case "spin":
		return runSpin(ctx, s, args[1:], stdout)
	case "verify":
		return runVerify(ctx, s, args[1:], stdout)
	case "dashboard":
		return runDashboard(ctx, s, args[1:], stdout)
	}
	return runTUI(s, cfg.APIURL, logger)
}

// openStore builds the configured token store and its cleanup.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	if cfg.TokenStore != config.StoreRedis {
		return session.NewFileStore(cfg.TokenDir), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close() //nolint:errcheck
		return nil, nil, fmt.Errorf("token store: redis %s: %w", cfg.RedisAddr, err)
	}
	return session.NewRedisStore(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil
}

func runTUI(s *session.Session, apiURL string, logger *slog.Logger) error {
	app := tui.NewApp(s, client.New(s), apiURL)

	p := tea.NewProgram(app, tea.WithAltScreen())
	s.OnChange(func(st session.State) {
		p.Send(tui.SessionChanged(st))
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	logger.Info("console closed", "state", s.State().String())
	return nil
}

func runLogout(s *session.Session, stdout io.Writer) error {
	if s.AccessToken() == "" {
		fmt.Fprintln(stdout, "Already logged out.")
		s.Logout()
		return nil
	}
	s.Logout()
	fmt.Fprintln(stdout, "Logged out.")
	return nil
}

// requireSession restores the persisted session for one-shot commands.
func requireSession(ctx context.Context, s *session.Session) error {
	if s.AccessToken() == "" {
		return errNotSignedIn
	}
	if err := s.Bootstrap(ctx); err != nil {
		if session.IsAuthError(err) {
			return fmt.Errorf("%w (%v)", errNotSignedIn, err)
		}
		return fmt.Errorf("restore session: %w", err)
	}
	if !s.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}
