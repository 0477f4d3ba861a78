// Package chat implements the conversation controller: the active transcript, the cached
// conversation list and the currently open conversation, kept in sync with the backend.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"mediwise/internal/logger"
	"mediwise/internal/services"
	"mediwise/internal/testutils"
	"mediwise/pkg/chattypes"
)

// Controller errors.
var (
	ErrBusy                = errors.New("another request is in progress")
	ErrEmptyPrompt         = errors.New("prompt is empty")
	ErrEmptyTitle          = errors.New("title is empty")
	ErrDeleteCancelled     = errors.New("delete cancelled")
	ErrStaleResponse       = errors.New("response arrived after the conversation changed")
	ErrUnknownConversation = errors.New("unknown conversation")
)

// EmptyReplyText replaces an assistant reply that came back without text.
const EmptyReplyText = "Response received from API"

// State is the dominant state of the controller.
type State int

// Controller states.
const (
	StateIdle State = iota
	StateViewing
	StateSending
	StateDeleting
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateSending:
		return "sending"
	case StateDeleting:
		return "deleting"
	default:
		return "idle"
	}
}

// PromptSender submits prompts.
type PromptSender interface {
	SendPrompt(ctx context.Context, text, conversationID string) (*chattypes.PromptResponse, error)
}

// ConversationStore reads and mutates the backend conversation history.
type ConversationStore interface {
	GetConversations(ctx context.Context) ([]chattypes.ConversationSummary, error)
	GetConversation(ctx context.Context, id string) (*chattypes.ConversationDetail, error)
	CreateConversation(ctx context.Context, title string) (*chattypes.ConversationSummary, error)
	DeleteConversation(ctx context.Context, id string) error
	UpdateConversationTitle(ctx context.Context, id, title string) (*chattypes.ConversationSummary, error)
}

// Confirmer asks the user to approve deleting a conversation.
type Confirmer interface {
	Confirm(conversation chattypes.ConversationSummary) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(conversation chattypes.ConversationSummary) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(conversation chattypes.ConversationSummary) bool {
	return f(conversation)
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfirmer sets the delete confirmation. Without one every delete is cancelled.
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *Controller) { c.confirmer = confirmer }
}

// WithClock replaces the time source used to stamp client-side messages.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.clock = clock }
}

// Controller mediates between user input, the backend API and the rendered transcript.
//
// Network calls run without holding the lock. The generation counter changes whenever the
// open conversation changes, and a prompt response from an older generation is discarded
// instead of landing in the wrong transcript.
type Controller struct {
	prompts   PromptSender
	store     ConversationStore
	confirmer Confirmer
	clock     func() time.Time
	log       *log.Logger

	mu            sync.Mutex
	transcript    []chattypes.Message
	conversations []chattypes.ConversationSummary
	currentID     string
	draft         string
	deleting      map[string]bool

	activeSend        uint64
	sendSeq           uint64
	generation        uint64
	selectSeq         uint64
	loadingTranscript bool
	listSeq           uint64
	listInflight      int

	background sync.WaitGroup
}

// NewController creates an idle controller.
func NewController(prompts PromptSender, store ConversationStore, opts ...Option) *Controller {
	c := &Controller{
		prompts:  prompts,
		store:    store,
		clock:    testutils.GetCurrentTime,
		log:      logger.NewStyledLogger("Chat"),
		deleting: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount loads the conversation list, as when the chat screen is first shown.
func (c *Controller) Mount(ctx context.Context) error {
	return c.RefreshConversations(ctx)
}

// RefreshConversations reloads the conversation list. On failure the previous list is kept.
// When refreshes overlap, only the most recently issued one is applied.
func (c *Controller) RefreshConversations(ctx context.Context) error {
	c.mu.Lock()
	c.listSeq++
	seq := c.listSeq
	c.listInflight++
	c.mu.Unlock()

	list, err := c.store.GetConversations(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.listInflight--

	if err != nil {
		c.log.Error("Error loading conversations", "error", err)
		return err
	}
	if seq != c.listSeq {
		c.log.Debug("Discarding superseded conversation list")
		return nil
	}
	c.conversations = append([]chattypes.ConversationSummary{}, list...)
	return nil
}

// SetDraft replaces the input draft.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Draft returns the input draft.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Submit sends the current draft.
func (c *Controller) Submit(ctx context.Context) (*chattypes.Message, error) {
	return c.Send(ctx, c.Draft())
}

// Send submits a prompt. The user message is appended and the draft cleared before the call.
// The returned message is the assistant reply, or the error entry when the call failed; the
// user's own message is never rolled back.
func (c *Controller) Send(ctx context.Context, text string) (*chattypes.Message, error) {
	prompt := strings.TrimSpace(text)

	c.mu.Lock()
	if prompt == "" {
		c.mu.Unlock()
		return nil, ErrEmptyPrompt
	}
	if c.activeSend != 0 || c.loadingTranscript {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.sendSeq++
	sendID := c.sendSeq
	c.activeSend = sendID
	c.draft = ""
	c.transcript = append(c.transcript, chattypes.Message{
		Role:      chattypes.RoleUser,
		Content:   prompt,
		Timestamp: chattypes.NewTimestamp(c.clock()),
	})
	generation := c.generation
	conversationID := c.currentID
	c.mu.Unlock()

	c.log.Debug("Sending prompt", "conversation_id", conversationID, "state", StateSending)
	resp, err := c.prompts.SendPrompt(ctx, prompt, conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSend == sendID {
		c.activeSend = 0
	}

	if generation != c.generation {
		c.log.Warn("Discarding prompt response for a conversation that is no longer open", "conversation_id", conversationID)
		if err == nil && conversationID == "" && resp.ConversationID != "" {
			c.refreshInBackground(ctx)
		}
		return nil, ErrStaleResponse
	}

	if err != nil {
		c.log.Error("Error sending prompt", "error", err, "status", services.StatusCode(err))
		message := chattypes.Message{
			Role:      chattypes.RoleError,
			Content:   services.ExtractMessage(err, services.PromptFallbackMessage),
			Timestamp: chattypes.NewTimestamp(c.clock()),
		}
		c.transcript = append(c.transcript, message)
		return &message, err
	}

	if resp.ConversationID != "" && c.currentID == "" {
		c.currentID = resp.ConversationID
		c.log.Debug("Adopted new conversation", "conversation_id", resp.ConversationID)
		c.refreshInBackground(ctx)
	}

	content := resp.Response
	if content == "" {
		content = EmptyReplyText
	}
	message := chattypes.Message{
		Role:      chattypes.RoleAssistant,
		Content:   content,
		Timestamp: chattypes.NewTimestamp(c.clock()),
	}
	c.transcript = append(c.transcript, message)
	return &message, nil
}

// refreshInBackground reloads the list without blocking the caller. Wait joins it.
func (c *Controller) refreshInBackground(ctx context.Context) {
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		_ = c.RefreshConversations(context.WithoutCancel(ctx))
	}()
}

// Wait blocks until background list refreshes have finished.
func (c *Controller) Wait() {
	c.background.Wait()
}

// Select opens a conversation. The transcript and current id are replaced together once the
// detail arrives; on failure the previous state is kept. Overlapping selects: the last one wins.
func (c *Controller) Select(ctx context.Context, id string) error {
	c.mu.Lock()
	c.selectSeq++
	seq := c.selectSeq
	c.loadingTranscript = true
	c.mu.Unlock()

	detail, err := c.store.GetConversation(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.selectSeq {
		return ErrStaleResponse
	}
	c.loadingTranscript = false

	if err != nil {
		c.log.Error("Error loading conversation", "conversation_id", id, "error", err)
		return err
	}

	messages := make([]chattypes.Message, 0, len(detail.Messages))
	for _, message := range detail.Messages {
		if message.IsError() {
			continue
		}
		messages = append(messages, message)
	}
	c.transcript = messages
	c.currentID = id
	c.generation++
	c.log.Debug("Opened conversation", "conversation_id", id, "messages", len(messages))
	return nil
}

// NewConversation clears the transcript and the selected conversation.
func (c *Controller) NewConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelectionLocked()
}

func (c *Controller) clearSelectionLocked() {
	c.transcript = nil
	c.currentID = ""
	c.generation++
	c.selectSeq++
	c.loadingTranscript = false
}

// Delete removes a conversation after the Confirmer approves it. Only that conversation is
// marked as deleting; deleting the open conversation returns the controller to idle.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	conversation, found := c.findLocked(id)
	if !found && id != "" && id == c.currentID {
		// The open conversation may not be listed yet if its background refresh failed.
		conversation, found = chattypes.ConversationSummary{ID: id}, true
	}
	busy := c.deleting[id]
	c.mu.Unlock()

	if !found {
		return ErrUnknownConversation
	}
	if busy {
		return ErrBusy
	}
	if c.confirmer == nil || !c.confirmer.Confirm(conversation) {
		return ErrDeleteCancelled
	}

	c.mu.Lock()
	if c.deleting[id] {
		c.mu.Unlock()
		return ErrBusy
	}
	c.deleting[id] = true
	c.mu.Unlock()

	err := c.store.DeleteConversation(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.deleting, id)

	if err != nil {
		c.log.Error("Error deleting conversation", "conversation_id", id, "error", err)
		return err
	}

	c.removeLocked(id)
	if c.currentID == id {
		c.clearSelectionLocked()
	}
	c.log.Debug("Deleted conversation", "conversation_id", id)
	return nil
}

// Create makes a new empty conversation, opens it and reloads the list.
func (c *Controller) Create(ctx context.Context, title string) (*chattypes.ConversationSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Conversation"
	}

	created, err := c.store.CreateConversation(ctx, title)
	if err != nil {
		c.log.Error("Error creating conversation", "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.clearSelectionLocked()
	c.currentID = created.ID
	c.mu.Unlock()

	_ = c.RefreshConversations(ctx)
	return created, nil
}

// Rename changes a conversation title and updates the cached entry in place.
func (c *Controller) Rename(ctx context.Context, id, title string) (*chattypes.ConversationSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	updated, err := c.store.UpdateConversationTitle(ctx, id, title)
	if err != nil {
		c.log.Error("Error renaming conversation", "conversation_id", id, "error", err)
		return nil, err
	}
	if updated.Title == "" {
		updated.Title = title
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.conversations {
		if c.conversations[i].ID == id {
			c.conversations[i].Title = updated.Title
			if !updated.UpdatedAt.IsZero() {
				c.conversations[i].UpdatedAt = updated.UpdatedAt
			}
		}
	}
	c.listSeq++
	return updated, nil
}

// Reset discards all state, as a page reload would. In-flight responses become stale.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelectionLocked()
	c.conversations = nil
	c.draft = ""
	c.activeSend = 0
	c.deleting = make(map[string]bool)
	c.listSeq++
}

// State reports the dominant controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.activeSend != 0:
		return StateSending
	case len(c.deleting) > 0:
		return StateDeleting
	case c.currentID != "":
		return StateViewing
	default:
		return StateIdle
	}
}

// Sending reports whether a prompt is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeSend != 0
}

// LoadingTranscript reports whether a conversation detail is being fetched.
func (c *Controller) LoadingTranscript() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadingTranscript
}

// LoadingConversations reports whether a list refresh is in flight.
func (c *Controller) LoadingConversations() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listInflight > 0
}

// Deleting reports whether the given conversation is being deleted.
func (c *Controller) Deleting(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleting[id]
}

// Transcript returns a copy of the active transcript.
func (c *Controller) Transcript() []chattypes.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chattypes.Message{}, c.transcript...)
}

// Conversations returns a copy of the cached list in backend order.
func (c *Controller) Conversations() []chattypes.ConversationSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]chattypes.ConversationSummary{}, c.conversations...)
}

// CurrentConversationID returns the open conversation, or "" when none is selected.
func (c *Controller) CurrentConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// CurrentConversation returns the cached summary of the open conversation.
func (c *Controller) CurrentConversation() (chattypes.ConversationSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentID == "" {
		return chattypes.ConversationSummary{}, false
	}
	return c.findLocked(c.currentID)
}

// LastAssistantMessage returns the most recent assistant reply in the transcript.
func (c *Controller) LastAssistantMessage() (chattypes.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.transcript) - 1; i >= 0; i-- {
		if c.transcript[i].Role == chattypes.RoleAssistant {
			return c.transcript[i], true
		}
	}
	return chattypes.Message{}, false
}

func (c *Controller) findLocked(id string) (chattypes.ConversationSummary, bool) {
	for _, conversation := range c.conversations {
		if conversation.ID == id {
			return conversation, true
		}
	}
	return chattypes.ConversationSummary{}, false
}

func (c *Controller) removeLocked(id string) {
	kept := c.conversations[:0]
	for _, conversation := range c.conversations {
		if conversation.ID != id {
			kept = append(kept, conversation)
		}
	}
	c.conversations = kept
	c.listSeq++
}
