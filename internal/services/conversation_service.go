package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"mediwise/pkg/chattypes"
)

// ConversationService manages the user's conversation history on the backend.
type ConversationService struct {
	client Doer
}

// NewConversationService creates a ConversationService on top of client.
func NewConversationService(client Doer) *ConversationService {
	return &ConversationService{client: client}
}

// Name returns the service name "conversation" for registration.
func (c *ConversationService) Name() string {
	return "conversation"
}

// Initialize checks the service has a client.
func (c *ConversationService) Initialize() error {
	if c.client == nil {
		return ErrServiceNotInitialized
	}
	return nil
}

// GetConversations returns the conversation list in backend order.
func (c *ConversationService) GetConversations(ctx context.Context) ([]chattypes.ConversationSummary, error) {
	resp, err := c.client.Do(ctx, Request{Method: http.MethodGet, Path: "/conversations"})
	if err != nil {
		return nil, err
	}

	var list chattypes.ConversationList
	if err := resp.Decode(&list); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if list.Conversations == nil {
		list.Conversations = []chattypes.ConversationSummary{}
	}
	return list.Conversations, nil
}

// GetConversation returns a conversation record and its messages.
func (c *ConversationService) GetConversation(ctx context.Context, id string) (*chattypes.ConversationDetail, error) {
	resp, err := c.client.Do(ctx, Request{Method: http.MethodGet, Path: conversationPath(id)})
	if err != nil {
		return nil, err
	}

	var detail chattypes.ConversationDetail
	if err := resp.Decode(&detail); err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}
	if detail.Conversation.ID == "" {
		detail.Conversation.ID = id
	}
	return &detail, nil
}

// CreateConversation creates an empty conversation.
func (c *ConversationService) CreateConversation(ctx context.Context, title string) (*chattypes.ConversationSummary, error) {
	resp, err := c.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/conversations",
		Body:   map[string]string{"title": title},
	})
	if err != nil {
		return nil, err
	}
	return decodeConversationRecord(resp, "create conversation")
}

// DeleteConversation removes a conversation and its messages.
func (c *ConversationService) DeleteConversation(ctx context.Context, id string) error {
	_, err := c.client.Do(ctx, Request{Method: http.MethodDelete, Path: conversationPath(id)})
	return err
}

// UpdateConversationTitle renames a conversation.
func (c *ConversationService) UpdateConversationTitle(ctx context.Context, id, title string) (*chattypes.ConversationSummary, error) {
	resp, err := c.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   conversationPath(id) + "/title",
		Body:   map[string]string{"title": title},
	})
	if err != nil {
		return nil, err
	}
	return decodeConversationRecord(resp, "update conversation title")
}

func conversationPath(id string) string {
	return "/conversations/" + url.PathEscape(id)
}

// decodeConversationRecord accepts both {"conversation": {...}} and a bare record.
func decodeConversationRecord(resp *Response, operation string) (*chattypes.ConversationSummary, error) {
	raw := resp.Data
	if envelope := gjson.GetBytes(resp.Data, "conversation"); envelope.IsObject() {
		raw = []byte(envelope.Raw)
	}

	var summary chattypes.ConversationSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", operation, err)
	}
	return &summary, nil
}
