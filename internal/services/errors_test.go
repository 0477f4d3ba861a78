package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	dialErr := errors.New("dial tcp 127.0.0.1:5000: connect: connection refused")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "network error",
			err:      &NetworkError{Method: http.MethodDelete, Path: "/conversations/c3", Err: dialErr},
			expected: UnreachableMessage,
		},
		{
			name:     "wrapped network error",
			err:      fmt.Errorf("delete conversation: %w", &NetworkError{Method: http.MethodDelete, Path: "/conversations/c3", Err: dialErr}),
			expected: UnreachableMessage,
		},
		{
			name:     "http error with backend message",
			err:      &HTTPError{Method: http.MethodGet, Path: "/conversations/c3", Status: http.StatusNotFound, Message: "Conversation not found"},
			expected: "Conversation not found",
		},
		{
			name:     "http error without message",
			err:      &HTTPError{Method: http.MethodGet, Path: "/conversations/c3", Status: http.StatusBadGateway},
			expected: RequestFailedMessage,
		},
		{
			name:     "auth error",
			err:      &AuthError{Message: "Invalid credentials", Err: dialErr},
			expected: "Invalid credentials",
		},
		{
			name:     "local error",
			err:      errors.New("usage: \\open <number>"),
			expected: "usage: \\open <number>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
	assert.Empty(t, UserMessage(nil))
}
