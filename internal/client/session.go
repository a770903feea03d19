package client

import (
	"context"
	"log/slog"

	"github.com/faycal55/respira/internal/domain"
)

type SessionEvent string

const (
	SignedIn       SessionEvent = "SIGNED_IN"
	SignedOut      SessionEvent = "SIGNED_OUT"
	TokenRefreshed SessionEvent = "TOKEN_REFRESHED"
)

// SessionChange is delivered to listeners. Identity is nil on SignedOut.
type SessionChange struct {
	Event    SessionEvent
	Identity *domain.Identity
}

type SessionListener func(SessionChange)

// OnSessionChange registers l for every later session change.
func (cl *Client) OnSessionChange(l SessionListener) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.listeners = append(cl.listeners, l)
}

// Restore installs a persisted identity without emitting an event.
func (cl *Client) Restore(id *domain.Identity) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if id == nil {
		cl.identity = nil
		return
	}
	cp := *id
	cl.identity = &cp
}

// Identity returns a copy of the current identity, or nil when signed out.
func (cl *Client) Identity() *domain.Identity {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	if cl.identity == nil {
		return nil
	}
	cp := *cl.identity
	return &cp
}

func (cl *Client) accessToken() string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	if cl.identity == nil {
		return ""
	}
	return cl.identity.AccessToken
}

func (cl *Client) refreshToken() string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	if cl.identity == nil {
		return ""
	}
	return cl.identity.RefreshToken
}

// setIdentity swaps the identity and notifies listeners outside the lock.
func (cl *Client) setIdentity(ctx context.Context, ev SessionEvent, id *domain.Identity) {
	cl.mu.Lock()
	cl.identity = id
	listeners := append([]SessionListener(nil), cl.listeners...)
	cl.mu.Unlock()

	var shared *domain.Identity
	if id != nil {
		cp := *id
		shared = &cp
	}
	for _, l := range listeners {
		l(SessionChange{Event: ev, Identity: shared})
	}
	cl.logger.DebugContext(ctx, "session changed", slog.String("event", string(ev)))
}
