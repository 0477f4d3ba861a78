package services

import (
	"context"
	"fmt"
	"net/http"

	"mediwise/internal/logger"
	"mediwise/pkg/chattypes"
)

// PromptService submits user prompts to the backend.
type PromptService struct {
	client Doer
}

// NewPromptService creates a PromptService on top of client.
func NewPromptService(client Doer) *PromptService {
	return &PromptService{client: client}
}

// Name returns the service name "prompt" for registration.
func (p *PromptService) Name() string {
	return "prompt"
}

// Initialize checks the service has a client.
func (p *PromptService) Initialize() error {
	if p.client == nil {
		return ErrServiceNotInitialized
	}
	return nil
}

// SendPrompt posts text to the backend. An empty conversationID asks the backend to start a
// new conversation; the caller adopts the returned id.
func (p *PromptService) SendPrompt(ctx context.Context, text, conversationID string) (*chattypes.PromptResponse, error) {
	body := chattypes.PromptRequest{UserPrompt: text}
	if conversationID != "" {
		body.ConversationID = &conversationID
	}

	resp, err := p.client.Do(ctx, Request{Method: http.MethodPost, Path: "/prompt", Body: body})
	if err != nil {
		return nil, err
	}

	var result chattypes.PromptResponse
	if err := resp.Decode(&result); err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	logger.Debug("Prompt answered", "conversation_id", result.ConversationID, "response_length", len(result.Response))
	return &result, nil
}
