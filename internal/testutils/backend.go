package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"mediwise/pkg/chattypes"
)

// Cookie names issued by the fake backend, matching flask-jwt-extended defaults.
const (
	AccessCookieName  = "access_token_cookie"
	RefreshCookieName = "refresh_token_cookie"
)

// FakeBackend emulates the MediWise REST API on an httptest server.
// It authenticates with cookies, counts every request by "METHOD /path", and supports
// one-shot failure injection so tests can drive the refresh protocol.
type FakeBackend struct {
	Server *httptest.Server

	mu            sync.Mutex
	users         map[string]string // email -> password
	hits          map[string]int
	failures      map[string][]injectedFailure
	accessToken   string
	refreshToken  string
	tokenSeq      int
	convSeq       int
	refreshBroken bool
	conversations []chattypes.ConversationSummary // newest first
	messages      map[string][]chattypes.Message

	// Reply builds the assistant reply for a prompt. Defaults to an echo.
	Reply func(prompt string) string

	// PromptGate, when set, blocks every /prompt handler until a value is received.
	PromptGate chan struct{}
}

type injectedFailure struct {
	status int
	body   string
}

// NewFakeBackend starts a fake backend with one registered user.
// Callers must Close it.
func NewFakeBackend(email, password string) *FakeBackend {
	b := &FakeBackend{
		users:    map[string]string{strings.ToLower(email): password},
		hits:     make(map[string]int),
		failures: make(map[string][]injectedFailure),
		messages: make(map[string][]chattypes.Message),
		Reply: func(prompt string) string {
			return "Echo: " + prompt
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("POST /auth/signup", b.handleSignup)
	mux.HandleFunc("POST /auth/refresh", b.handleRefresh)
	mux.HandleFunc("POST /prompt", b.requireAuth(b.handlePrompt))
	mux.HandleFunc("GET /conversations", b.requireAuth(b.handleListConversations))
	mux.HandleFunc("POST /conversations", b.requireAuth(b.handleCreateConversation))
	mux.HandleFunc("GET /conversations/{id}", b.requireAuth(b.handleGetConversation))
	mux.HandleFunc("DELETE /conversations/{id}", b.requireAuth(b.handleDeleteConversation))
	mux.HandleFunc("PUT /conversations/{id}/title", b.requireAuth(b.handleUpdateTitle))

	b.Server = httptest.NewServer(b.countAndInject(mux))
	return b
}

// URL returns the base address of the fake backend.
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

// Close shuts the server down.
func (b *FakeBackend) Close() {
	b.Server.Close()
}

// Hits returns how many requests reached "METHOD path".
func (b *FakeBackend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

// FailNext makes the next request to "METHOD path" answer with status and body.
// Calls queue up, so two FailNext calls fail the next two requests.
func (b *FakeBackend) FailNext(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.failures[key] = append(b.failures[key], injectedFailure{status: status, body: body})
}

// ExpireAccess invalidates the current access token so the next protected call gets a 401.
func (b *FakeBackend) ExpireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessToken = ""
}

// BreakRefresh makes every refresh attempt fail with 401.
func (b *FakeBackend) BreakRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshBroken = true
}

// SeedConversation stores a conversation with messages and puts it at the top of the list.
func (b *FakeBackend) SeedConversation(id, title string, messages ...chattypes.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := chattypes.NewTimestamp(time.Now().UTC())
	summary := chattypes.ConversationSummary{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
	if len(messages) > 0 {
		summary.Preview = messages[0].Content
	}
	b.conversations = append([]chattypes.ConversationSummary{summary}, b.conversations...)
	b.messages[id] = append([]chattypes.Message(nil), messages...)
}

// ConversationIDs returns the stored conversation ids in list order.
func (b *FakeBackend) ConversationIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.conversations))
	for _, c := range b.conversations {
		ids = append(ids, c.ID)
	}
	return ids
}

func (b *FakeBackend) countAndInject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.hits[key]++
		var failure *injectedFailure
		if queued := b.failures[key]; len(queued) > 0 {
			failure = &queued[0]
			b.failures[key] = queued[1:]
		}
		b.mu.Unlock()

		if failure != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(failure.status)
			_, _ = w.Write([]byte(failure.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AccessCookieName)
		b.mu.Lock()
		valid := err == nil && b.accessToken != "" && cookie.Value == b.accessToken
		b.mu.Unlock()

		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
			return
		}
		next(w, r)
	}
}

func (b *FakeBackend) issueTokens(w http.ResponseWriter, includeRefresh bool) {
	b.tokenSeq++
	b.accessToken = fmt.Sprintf("access-%d", b.tokenSeq)
	http.SetCookie(w, &http.Cookie{Name: AccessCookieName, Value: b.accessToken, Path: "/", HttpOnly: true})
	if includeRefresh {
		b.refreshToken = fmt.Sprintf("refresh-%d", b.tokenSeq)
		http.SetCookie(w, &http.Cookie{Name: RefreshCookieName, Value: b.refreshToken, Path: "/", HttpOnly: true})
	}
}

func (b *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req chattypes.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	password, exists := b.users[strings.ToLower(req.Email)]
	if !exists {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Oops! That email doesn't match our records."})
		return
	}
	if password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	b.issueTokens(w, true)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

func (b *FakeBackend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req chattypes.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	email := strings.ToLower(req.Email)
	if _, exists := b.users[email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "An account with this email already exists. Please try logging in or use a different email."})
		return
	}
	b.users[email] = req.Password
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (b *FakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshCookieName)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refreshBroken || err != nil || b.refreshToken == "" || cookie.Value != b.refreshToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
		return
	}
	b.issueTokens(w, false)
	writeJSON(w, http.StatusOK, map[string]bool{"refresh": true})
}

func (b *FakeBackend) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req chattypes.PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.UserPrompt) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Prompt is required"})
		return
	}

	if b.PromptGate != nil {
		<-b.PromptGate
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := chattypes.NewTimestamp(time.Now().UTC())
	conversationID := ""
	if req.ConversationID != nil {
		conversationID = *req.ConversationID
		if _, exists := b.messages[conversationID]; !exists {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Conversation not found"})
			return
		}
	} else {
		b.convSeq++
		conversationID = fmt.Sprintf("c%d", b.convSeq)
		title := req.UserPrompt
		if len(title) > 50 {
			title = title[:50]
		}
		summary := chattypes.ConversationSummary{ID: conversationID, Title: title, Preview: req.UserPrompt, CreatedAt: now, UpdatedAt: now}
		b.conversations = append([]chattypes.ConversationSummary{summary}, b.conversations...)
	}

	reply := b.Reply(req.UserPrompt)
	b.messages[conversationID] = append(b.messages[conversationID],
		chattypes.Message{Role: chattypes.RoleUser, Content: req.UserPrompt, Timestamp: now},
		chattypes.Message{Role: chattypes.RoleAssistant, Content: reply, Timestamp: now},
	)

	writeJSON(w, http.StatusOK, chattypes.PromptResponse{Response: reply, ConversationID: conversationID})
}

func (b *FakeBackend) handleListConversations(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := append([]chattypes.ConversationSummary{}, b.conversations...)
	writeJSON(w, http.StatusOK, chattypes.ConversationList{Conversations: list})
}

func (b *FakeBackend) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Title == "" {
		req.Title = "New Conversation"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.convSeq++
	now := chattypes.NewTimestamp(time.Now().UTC())
	summary := chattypes.ConversationSummary{ID: fmt.Sprintf("c%d", b.convSeq), Title: req.Title, CreatedAt: now, UpdatedAt: now}
	b.conversations = append([]chattypes.ConversationSummary{summary}, b.conversations...)
	b.messages[summary.ID] = nil
	writeJSON(w, http.StatusCreated, chattypes.ConversationEnvelope{Conversation: summary})
}

func (b *FakeBackend) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	index := b.indexOf(id)
	if index < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Conversation not found"})
		return
	}
	writeJSON(w, http.StatusOK, chattypes.ConversationDetail{
		Conversation: b.conversations[index],
		Messages:     append([]chattypes.Message{}, b.messages[id]...),
	})
}

func (b *FakeBackend) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()

	index := b.indexOf(id)
	if index < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Conversation not found"})
		return
	}
	b.conversations = append(b.conversations[:index], b.conversations[index+1:]...)
	delete(b.messages, id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
}

func (b *FakeBackend) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Title is required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	index := b.indexOf(id)
	if index < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Conversation not found"})
		return
	}
	b.conversations[index].Title = req.Title
	writeJSON(w, http.StatusOK, chattypes.ConversationEnvelope{Conversation: b.conversations[index]})
}

// indexOf must be called with b.mu held.
func (b *FakeBackend) indexOf(id string) int {
	for i, c := range b.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
