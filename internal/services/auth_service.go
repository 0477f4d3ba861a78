package services

import (
	"context"
	"net/http"

	"mediwise/internal/logger"
	"mediwise/pkg/chattypes"
)

// AuthService calls the backend authentication endpoints.
// The session lives in HTTP-only cookies handled by the transport; this service never sees tokens.
type AuthService struct {
	client Doer
}

// NewAuthService creates an AuthService on top of client.
func NewAuthService(client Doer) *AuthService {
	return &AuthService{client: client}
}

// Name returns the service name "auth" for registration.
func (a *AuthService) Name() string {
	return "auth"
}

// Initialize checks the service has a client.
func (a *AuthService) Initialize() error {
	if a.client == nil {
		return ErrServiceNotInitialized
	}
	return nil
}

// Login posts credentials. Failures are *AuthError carrying the backend message or a fallback.
func (a *AuthService) Login(ctx context.Context, email, password string) (*chattypes.AuthPayload, error) {
	resp, err := a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   chattypes.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		logger.Debug("Login failed", "status", StatusCode(err))
		return nil, &AuthError{Message: ExtractMessage(err, LoginFallbackMessage), Err: err}
	}
	return decodeAuthPayload(resp), nil
}

// Signup registers a new account. It does not log the user in.
func (a *AuthService) Signup(ctx context.Context, firstName, lastName, email, password string) (*chattypes.AuthPayload, error) {
	resp, err := a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body: chattypes.SignupRequest{
			FirstName: firstName,
			LastName:  lastName,
			Email:     email,
			Password:  password,
		},
	})
	if err != nil {
		logger.Debug("Signup failed", "status", StatusCode(err))
		return nil, &AuthError{Message: ExtractMessage(err, SignupFallbackMessage), Err: err}
	}
	return decodeAuthPayload(resp), nil
}

// Refresh renews the session cookie. An error means the session has ended.
func (a *AuthService) Refresh(ctx context.Context) error {
	_, err := a.client.Do(ctx, Request{Method: http.MethodPost, Path: RefreshPath})
	return err
}

// decodeAuthPayload tolerates bodies that are not the expected shape; success is the status code.
func decodeAuthPayload(resp *Response) *chattypes.AuthPayload {
	payload := &chattypes.AuthPayload{}
	if err := resp.Decode(payload); err != nil {
		logger.Debug("Ignoring undecodable auth payload", "error", err)
	}
	return payload
}
