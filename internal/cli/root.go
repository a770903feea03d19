// Package cli is the respira terminal client: a cobra command tree over the
// client core (stores, breathing scheduler, chat send flow and API client).
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/faycal55/respira/internal/breathing"
	"github.com/faycal55/respira/internal/catalog"
	"github.com/faycal55/respira/internal/client"
	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/store"
	"github.com/faycal55/respira/pkg/logger"
)

// Options overrides parts of the environment. The zero value runs against the
// process environment and the real clock.
type Options struct {
	// Environ replaces os.Environ when non-nil.
	Environ map[string]string
	// Persister replaces the SQLite or redis state backend.
	Persister store.Persister
	// Clock and Interval drive the breathing scheduler.
	Clock    breathing.Clock
	Interval time.Duration
}

// NewRootCmd builds the respira command tree.
func NewRootCmd(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "respira",
		Short:         "Respira breathing, library and AI companion in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newLoginCmd(opts))
	root.AddCommand(newSignupCmd(opts))
	root.AddCommand(newLogoutCmd(opts))
	root.AddCommand(newResetPasswordCmd(opts))
	root.AddCommand(newTechniquesCmd(opts))
	root.AddCommand(newBreatheCmd(opts))
	root.AddCommand(newChatCmd(opts))
	root.AddCommand(newSettingsCmd(opts))
	root.AddCommand(newLibraryCmd(opts))
	root.AddCommand(newTracksCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newProfileCmd(opts))
	root.AddCommand(newSubscriptionCmd(opts))
	root.AddCommand(newContactCmd(opts))
	root.AddCommand(newOpenCmd(opts))
	root.AddCommand(newOnboardingCmd(opts))
	return root
}

// Execute runs the command tree with args and returns the process exit code.
// Errors already shown to the user are not printed again.
func Execute(ctx context.Context, opts Options, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !Reported(err) {
		_, _ = fmt.Fprintln(stderr, err)
	}
	return 1
}

// reportedError marks an error the command has already shown as an alert.
type reportedError struct {
	err error
}

func (r *reportedError) Error() string { return r.err.Error() }
func (r *reportedError) Unwrap() error { return r.err }

// Reported reports whether err was already shown to the user.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// env is what one command invocation runs against.
type env struct {
	cfg     *Config
	logger  *slog.Logger
	stores  *store.Registry
	client  *client.Client
	catalog *catalog.Catalog
	closers []func() error
}

// runE opens the environment, runs fn and flushes the stores afterwards.
func runE(opts Options, fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		e, err := openEnv(ctx, opts)
		if err != nil {
			return err
		}
		return errors.Join(fn(cmd, e, args), e.close(ctx))
	}
}

func openEnv(ctx context.Context, opts Options) (*env, error) {
	cfg, err := LoadConfig(opts.Environ)
	if err != nil {
		return nil, err
	}
	l := logger.NewWithOptions(logger.Options{
		Service: "respira-cli",
		Level:   cfg.LogLevel,
		Format:  logger.FormatText,
		Writer:  os.Stderr,
	})

	e := &env{cfg: cfg, logger: l, catalog: catalog.Default()}

	persister := opts.Persister
	if persister == nil {
		persister, err = e.openPersister(ctx)
		if err != nil {
			return nil, err
		}
	}

	e.stores = store.NewRegistry(persister, l)
	if err := e.stores.Rehydrate(ctx); err != nil {
		l.Warn("continuing with default state", slog.String("error", err.Error()))
	}

	ccfg := client.DefaultConfig(cfg.APIURL)
	ccfg.HTTP.Timeout = cfg.HTTPTimeout
	ccfg.HTTP.MaxRetries = cfg.HTTPRetries
	e.client = client.New(ccfg, l)
	e.client.Restore(e.stores.Auth.Get().User)
	e.client.OnSessionChange(e.onSessionChange)

	return e, nil
}

func (e *env) openPersister(ctx context.Context) (store.Persister, error) {
	if e.cfg.StateRedis != "" {
		opts, err := redis.ParseURL(e.cfg.StateRedis)
		if err != nil {
			return nil, fmt.Errorf("parse RESPIRA_STATE_REDIS: %w", err)
		}
		rc := redis.NewClient(opts)
		e.closers = append(e.closers, rc.Close)
		return store.NewRedisPersister(rc, store.DefaultRedisPrefix), nil
	}

	if err := os.MkdirAll(e.cfg.Home, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", e.cfg.Home, err)
	}
	p, err := store.OpenSQLite(ctx, e.cfg.StatePath())
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, p.Close)
	return p, nil
}

// onSessionChange mirrors the API client's session into the auth store.
func (e *env) onSessionChange(c client.SessionChange) {
	switch c.Event {
	case client.SignedIn:
		e.stores.Auth.SetUser(c.Identity)
	case client.TokenRefreshed:
		if c.Identity != nil {
			e.stores.Auth.SetTokens(domain.TokenPair{
				AccessToken:  c.Identity.AccessToken,
				RefreshToken: c.Identity.RefreshToken,
			})
		}
	case client.SignedOut:
		e.stores.ResetAll()
	}
}

func (e *env) close(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	errs := []error{e.stores.Flush(flushCtx)}
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	return errors.Join(errs...)
}

// requireSignIn fails with a hint when no session is stored.
func (e *env) requireSignIn() error {
	if e.client.Identity() == nil {
		return errors.New("not signed in, run `respira login` first")
	}
	return nil
}
