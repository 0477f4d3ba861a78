package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mediwise/internal/logger"
)

// Paths used by the refresh protocol.
const (
	RefreshPath = "/auth/refresh"
	LoginPath   = "/login"

	authPathMarker = "/auth/"
)

// Navigator exposes the current client location and can force a hard redirect.
type Navigator interface {
	Location() string
	Redirect(path string)
}

// SessionRefreshService decorates a Doer so an expired session is renewed transparently.
//
// A 401 on a non-auth path triggers one refresh and one replay of the original request.
// If the refresh fails, the user is sent to the login screen and an *AuthExpiredError is returned.
// The retry state lives in the Do call frame, so requests never carry a retried marker.
type SessionRefreshService struct {
	base        Doer
	refreshPath string
	navigator   Navigator
}

// NewSessionRefreshService wraps base with the refresh protocol.
// An empty refreshPath uses RefreshPath.
func NewSessionRefreshService(base Doer, refreshPath string, navigator Navigator) *SessionRefreshService {
	if refreshPath == "" {
		refreshPath = RefreshPath
	}
	return &SessionRefreshService{
		base:        base,
		refreshPath: refreshPath,
		navigator:   navigator,
	}
}

// Name returns the service name "session_refresh" for registration.
func (s *SessionRefreshService) Name() string {
	return "session_refresh"
}

// Initialize checks that the decorator has something to wrap.
func (s *SessionRefreshService) Initialize() error {
	if s.base == nil {
		return ErrServiceNotInitialized
	}
	return nil
}

// Do issues req, refreshing the session at most once on a 401.
func (s *SessionRefreshService) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := s.base.Do(ctx, req)
	if err == nil || !isUnauthorized(err) || isAuthPath(req.Path) {
		return resp, err
	}

	logger.Debug("Session expired, refreshing", "path", req.Path)
	if _, refreshErr := s.base.Do(ctx, Request{Method: http.MethodPost, Path: s.refreshPath}); refreshErr != nil {
		logger.Warn("Session refresh failed", "path", req.Path, "error", refreshErr)
		if s.navigator != nil && !strings.Contains(s.navigator.Location(), LoginPath) {
			s.navigator.Redirect(LoginPath)
		}
		return nil, &AuthExpiredError{Err: refreshErr}
	}

	// The replay's outcome is final: a second 401 propagates without another refresh.
	logger.Debug("Session refreshed, replaying request", "path", req.Path)
	return s.base.Do(ctx, req)
}

func isUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized
}

func isAuthPath(path string) bool {
	return strings.Contains(path, authPathMarker)
}
