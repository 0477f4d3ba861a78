// Package state holds the client-side authentication state shared by the shell, router and commands.
package state

import (
	"context"
	"sync"

	"mediwise/internal/logger"
	"mediwise/internal/services"
	"mediwise/pkg/chattypes"
)

// Authenticator is the subset of the auth API the session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*chattypes.AuthPayload, error)
	Signup(ctx context.Context, firstName, lastName, email, password string) (*chattypes.AuthPayload, error)
	Refresh(ctx context.Context) error
}

// Result is the outcome of Login or Signup. Failures carry a display message instead of an error.
type Result struct {
	Success bool
	Data    *chattypes.AuthPayload
	Error   string
}

// Snapshot is a consistent read of the session state.
type Snapshot struct {
	Authenticated bool
	Loading       bool
	Error         string
}

// Option configures a Session.
type Option func(*Session)

// WithValidateOnStart makes Start call the refresh endpoint to resume an existing session.
// By default every run starts unauthenticated and requires an explicit login.
func WithValidateOnStart(validate bool) Option {
	return func(s *Session) { s.validateOnStart = validate }
}

// Session is the process-wide authentication state. Create one with NewSession and pass it
// to whatever needs it. It is safe for concurrent use.
type Session struct {
	auth            Authenticator
	validateOnStart bool

	mu            sync.RWMutex
	authenticated bool
	loading       bool
	lastError     string
}

// NewSession creates an unauthenticated session. It reports Loading until Start runs.
func NewSession(auth Authenticator, opts ...Option) *Session {
	s := &Session{
		auth:    auth,
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start finishes session setup. With validation enabled a successful refresh resumes the session.
func (s *Session) Start(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if !s.validateOnStart {
		logger.Debug("Session start", "validate", false)
		return
	}

	err := s.auth.Refresh(ctx)
	s.mu.Lock()
	s.authenticated = err == nil
	s.mu.Unlock()
	logger.Debug("Session start", "validate", true, "authenticated", err == nil)
}

// Login authenticates with the backend. The previous error is cleared before the call.
func (s *Session) Login(ctx context.Context, email, password string) Result {
	s.setError("")

	data, err := s.auth.Login(ctx, email, password)
	if err != nil {
		message := services.ExtractMessage(err, services.LoginFallbackMessage)
		s.setError(message)
		return Result{Success: false, Error: message}
	}

	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()
	logger.Info("Logged in")
	return Result{Success: true, Data: data}
}

// Signup registers an account. It never authenticates; a separate Login is required.
func (s *Session) Signup(ctx context.Context, firstName, lastName, email, password string) Result {
	s.setError("")

	data, err := s.auth.Signup(ctx, firstName, lastName, email, password)
	if err != nil {
		message := services.ExtractMessage(err, services.SignupFallbackMessage)
		s.setError(message)
		return Result{Success: false, Error: message}
	}
	return Result{Success: true, Data: data}
}

// Logout resets local state only. It does not call the backend.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}

// Reset returns the session to its initial, unauthenticated and error-free state.
// A hard redirect uses it the way a page reload would.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.lastError = ""
}

// Authenticated reports whether the user is logged in.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated: s.authenticated,
		Loading:       s.loading,
		Error:         s.lastError,
	}
}

func (s *Session) setError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}
