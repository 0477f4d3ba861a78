// Package chattypes defines the shared conversation and authentication types for MediWise.
// This file contains the message, conversation, and prompt types exchanged with the backend
// and held by the chat controller.
package chattypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies who authored a transcript message.
type Role string

const (
	// RoleUser marks a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a reply produced by the backend.
	RoleAssistant Role = "assistant"
	// RoleError marks a client-side placeholder for a failed exchange.
	// Error messages are never persisted or sent to the backend.
	RoleError Role = "error"
)

// Message is a single transcript entry.
// Ordering is append-only and insertion order is the rendering order.
type Message struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"` // Server identity, empty for client-side messages
	Role      Role      `json:"role" yaml:"role"`                 // user, assistant or error
	Content   string    `json:"content" yaml:"content"`           // Message text
	Timestamp Timestamp `json:"timestamp" yaml:"timestamp"`       // When the message was created
}

// IsError reports whether the message is a client-synthesized error entry.
func (m Message) IsError() bool {
	return m.Role == RoleError
}

// ConversationSummary is a sidebar entry as returned by GET /conversations.
type ConversationSummary struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Preview   string    `json:"preview,omitempty" yaml:"preview,omitempty"` // First prompt, truncated by the backend
	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
	UpdatedAt Timestamp `json:"updated_at" yaml:"updated_at"`
}

// ConversationList is the envelope of GET /conversations.
type ConversationList struct {
	Conversations []ConversationSummary `json:"conversations"`
}

// ConversationDetail is the envelope of GET /conversations/{id}.
type ConversationDetail struct {
	Conversation ConversationSummary `json:"conversation"`
	Messages     []Message           `json:"messages"`
}

// ConversationEnvelope wraps the single record returned by create and rename calls.
type ConversationEnvelope struct {
	Conversation ConversationSummary `json:"conversation"`
}

// PromptRequest is the body of POST /prompt.
// A nil ConversationID is sent as null and asks the backend to start a new conversation.
type PromptRequest struct {
	UserPrompt     string  `json:"user_prompt"`
	ConversationID *string `json:"conversation_id"`
}

// PromptResponse is the body returned by POST /prompt.
type PromptResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// Timestamp decodes the ISO-8601 variants the backend emits, with or without a zone,
// and treats null or empty values as the zero time.
type Timestamp struct {
	time.Time
}

// timestampLayouts lists accepted layouts in the order they are tried.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses value using the accepted layouts.
func ParseTimestamp(value string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// MarshalYAML implements yaml.Marshaler.
func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Format(time.RFC3339), nil
}
