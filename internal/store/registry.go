package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/faycal55/respira/internal/domain"
)

// Registry bundles the four client stores. It is created once per process
// and passed to whatever needs state; there are no package-level singletons.
type Registry struct {
	Auth     AuthStore
	Settings SettingsStore
	Chat     ChatStore
	App      AppStore

	logger *slog.Logger
}

// NewRegistry builds the stores with their defaults. With a nil persister
// nothing is saved.
func NewRegistry(p Persister, l *slog.Logger) *Registry {
	if l == nil {
		l = slog.Default()
	}

	authOpts := []Option[AuthState]{WithLogger[AuthState](l)}
	settingsOpts := []Option[SettingsState]{WithLogger[SettingsState](l)}
	appOpts := []Option[AppState]{WithLogger[AppState](l)}
	if p != nil {
		authOpts = append(authOpts, WithPersistence(KeyAuth, p, func(s AuthState) any {
			return authPersisted{User: s.User, Profile: s.Profile, IsAuthenticated: s.IsAuthenticated}
		}))
		settingsOpts = append(settingsOpts, WithPersistence[SettingsState](KeySettings, p, nil))
		appOpts = append(appOpts, WithPersistence[AppState](KeyApp, p, nil))
	}

	return &Registry{
		Auth:     AuthStore{New("auth", AuthState{}, authOpts...)},
		Settings: SettingsStore{New("settings", SettingsState{Settings: domain.DefaultSettings()}, settingsOpts...)},
		Chat:     ChatStore{New("chat", ChatState{}, WithLogger[ChatState](l))},
		App:      AppStore{New("app", defaultAppState(), appOpts...)},
		logger:   l,
	}
}

// Rehydrate restores every persisted store. Failures are logged and returned
// joined; the stores keep their defaults in that case.
func (r *Registry) Rehydrate(ctx context.Context) error {
	var errs []error
	for _, fn := range []func(context.Context) error{
		r.Auth.Rehydrate, r.Settings.Rehydrate, r.App.Rehydrate,
	} {
		if err := fn(ctx); err != nil {
			r.logger.WarnContext(ctx, "store rehydration failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ResetAll is the sign-out action: it clears identity and chat and leaves
// settings and lifecycle flags untouched.
func (r *Registry) ResetAll() {
	r.Auth.SignOut()
	r.Chat.Reset()
}

// Flush waits for pending writes of all stores.
func (r *Registry) Flush(ctx context.Context) error {
	return errors.Join(
		r.Auth.Flush(ctx),
		r.Settings.Flush(ctx),
		r.App.Flush(ctx),
	)
}

// NotificationsEnabled reads the current setting; it is handed to the
// breathing machine to gate haptic pulses.
func (r *Registry) NotificationsEnabled() bool {
	return r.Settings.Current().NotificationsEnabled
}
