package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// User-facing fallbacks used when the backend gives no message of its own.
const (
	LoginFallbackMessage  = "Login failed. Please try again."
	SignupFallbackMessage = "Signup failed. Please try again."
	PromptFallbackMessage = "Sorry, there was an error processing your request. Please try again."
	UnreachableMessage    = "Could not reach the MediWise server. Please try again."
	RequestFailedMessage  = "The MediWise server could not complete the request. Please try again."
)

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Message holds the backend-provided text, if any.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Body    []byte
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// AuthExpiredError is returned when a 401 could not be resolved by refreshing the session.
type AuthExpiredError struct {
	Err error
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("session expired: %v", e.Err)
}

func (e *AuthExpiredError) Unwrap() error { return e.Err }

// AuthError is a login or signup failure carrying the message to show the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// IsAuthExpired reports whether err ends a session.
func IsAuthExpired(err error) bool {
	var expired *AuthExpiredError
	return errors.As(err, &expired)
}

// ExtractMessage returns the backend message carried by err, or fallback when there is none.
// Transport failures never leak their raw text.
func ExtractMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var authErr *AuthError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}

// UserMessage renders a command error for the terminal. Transport and HTTP failures
// map to fixed text or the backend's own message; anything else is a local error
// whose text is already meant for the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return UnreachableMessage
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ExtractMessage(err, RequestFailedMessage)
	}
	return ExtractMessage(err, err.Error())
}

// backendMessage reads the "error" field of a JSON body, then the "msg" field used by JWT errors.
func backendMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, field := range []string{"error", "msg"} {
		result := gjson.GetBytes(body, field)
		if result.Type == gjson.String {
			if message := strings.TrimSpace(result.String()); message != "" {
				return message
			}
		}
	}
	return ""
}
