// Package router maps client locations to screens and guards the chat screen behind authentication.
package router

import (
	"strings"
	"sync"

	"mediwise/internal/logger"
)

// Client locations.
const (
	PathLogin  = "/login"
	PathSignup = "/signup"
	PathChat   = "/chat"
)

// AuthState reports whether the user may see protected screens.
type AuthState interface {
	Authenticated() bool
}

// Router tracks the current location. Soft navigation only changes the location; a hard
// redirect first runs the reset hooks, the way a full page reload discards in-memory state.
type Router struct {
	auth AuthState

	mu        sync.RWMutex
	location  string
	hooks     []func()
	listeners []func(from, to string)
}

// New creates a router positioned at the resolved root location.
func New(auth AuthState) *Router {
	r := &Router{auth: auth}
	r.location = r.Resolve("/")
	return r
}

// Resolve applies the routing table: /chat requires authentication, / and unknown paths go to /chat.
func (r *Router) Resolve(path string) string {
	switch normalize(path) {
	case PathLogin:
		return PathLogin
	case PathSignup:
		return PathSignup
	default:
		if r.auth == nil || !r.auth.Authenticated() {
			return PathLogin
		}
		return PathChat
	}
}

// Navigate moves to path (after resolution) and returns the new location.
func (r *Router) Navigate(path string) string {
	target := r.Resolve(path)

	r.mu.Lock()
	from := r.location
	r.location = target
	listeners := append([]func(from, to string){}, r.listeners...)
	r.mu.Unlock()

	if from != target {
		logger.Debug("Navigate", "path", target, "from", from)
		for _, listener := range listeners {
			listener(from, target)
		}
	}
	return target
}

// Redirect performs a hard navigation: every reset hook runs before the location changes.
func (r *Router) Redirect(path string) {
	r.mu.RLock()
	hooks := append([]func(){}, r.hooks...)
	r.mu.RUnlock()

	logger.Debug("Hard redirect", "path", path, "hooks", len(hooks))
	for _, hook := range hooks {
		hook()
	}
	r.Navigate(path)
}

// OnHardRedirect registers a hook that runs on every Redirect.
func (r *Router) OnHardRedirect(hook func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// OnChange registers a listener called after the location changes.
func (r *Router) OnChange(listener func(from, to string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Location returns the current location.
func (r *Router) Location() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return strings.ToLower(path)
}
