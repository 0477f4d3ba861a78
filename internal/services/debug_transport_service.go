package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"mediwise/internal/logger"
)

const maskedValue = "***[MASKED]***"

// DebugTransportService keeps the most recent backend exchange for the \debug command.
// Cookies, credential headers and password fields are masked before anything is stored.
type DebugTransportService struct {
	mu          sync.RWMutex
	initialized bool
	base        http.RoundTripper
	last        string
}

// exchange is the JSON document \debug prints.
type exchange struct {
	Request  capturedMessage `json:"http_request"`
	Response capturedMessage `json:"http_response"`
	Started  time.Time       `json:"request_time"`
	Duration int64           `json:"duration_ms"`
}

type capturedMessage struct {
	Method     string      `json:"method,omitempty"`
	URL        string      `json:"url,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	Status     string      `json:"status,omitempty"`
	Headers    http.Header `json:"headers,omitempty"`
	Body       interface{} `json:"body,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// NewDebugTransportService wraps http.DefaultTransport.
func NewDebugTransportService() *DebugTransportService {
	return &DebugTransportService{base: http.DefaultTransport}
}

// Name returns the service name "debug-transport" for registration.
func (d *DebugTransportService) Name() string {
	return "debug-transport"
}

// Initialize clears any previous capture.
func (d *DebugTransportService) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.initialized = true
	d.last = ""
	logger.Debug("Debug transport ready")
	return nil
}

// CreateTransport returns a round tripper that records every exchange. Before Initialize it
// returns http.DefaultTransport and records nothing.
func (d *DebugTransportService) CreateTransport() http.RoundTripper {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.initialized {
		logger.Error("Debug transport service not initialized")
		return http.DefaultTransport
	}
	return &recordingTransport{service: d}
}

// GetCapturedData returns the last exchange as indented JSON, or "" if there is none.
func (d *DebugTransportService) GetCapturedData() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// ClearCapturedData forgets the last exchange.
func (d *DebugTransportService) ClearCapturedData() {
	d.record("")
}

func (d *DebugTransportService) record(data string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = data
}

type recordingTransport struct {
	service *DebugTransportService
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ex := exchange{
		Request: capturedMessage{
			Method:  req.Method,
			URL:     req.URL.String(),
			Headers: sanitizeHeaders(req.Header),
		},
		Started: time.Now(),
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			logger.Error("Failed to capture request", "error", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		ex.Request.Body = sanitizeBody(body)
	}

	resp, err := t.service.base.RoundTrip(req)
	ex.Duration = time.Since(ex.Started).Milliseconds()
	if err != nil {
		ex.Response.Error = err.Error()
		t.store(ex)
		return resp, err
	}

	ex.Response.StatusCode = resp.StatusCode
	ex.Response.Status = resp.Status
	ex.Response.Headers = sanitizeHeaders(resp.Header)
	if resp.Body != nil {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
		_ = resp.Body.Close()
		if readErr != nil {
			logger.Error("Failed to capture response", "error", readErr)
			ex.Response.Error = "failed to capture response data"
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
		ex.Response.Body = sanitizeBody(body)
	}

	t.store(ex)
	return resp, nil
}

func (t *recordingTransport) store(ex exchange) {
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal debug data", "error", err)
		t.service.record(`{"error": "failed to marshal debug data"}`)
		return
	}
	t.service.record(string(data))
	logger.Debug("Debug data captured", "path", ex.Request.URL, "status", ex.Response.StatusCode)
}

// sanitizeHeaders copies headers with cookie values and credential headers masked.
func sanitizeHeaders(headers http.Header) http.Header {
	out := make(http.Header, len(headers))
	for name, values := range headers {
		lower := strings.ToLower(name)
		switch {
		case lower == "cookie" || lower == "set-cookie":
			masked := make([]string, len(values))
			for i, value := range values {
				masked[i] = maskCookie(value)
			}
			out[name] = masked
		case strings.Contains(lower, "authorization"), strings.Contains(lower, "api-key"), strings.Contains(lower, "token"):
			out[name] = []string{maskSecret(values)}
		default:
			out[name] = values
		}
	}
	return out
}

// maskSecret keeps the first ten characters of long values, enough to tell a Bearer
// header from a Basic one.
func maskSecret(values []string) string {
	if len(values) > 0 && len(values[0]) > 10 {
		return values[0][:10] + maskedValue
	}
	return maskedValue
}

// maskCookie hides every cookie value and keeps names and Set-Cookie attributes:
// "a=1; Path=/" becomes "a=***[MASKED]***; Path=/".
func maskCookie(header string) string {
	parts := strings.Split(header, ";")
	for i, part := range parts {
		name, _, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || (i > 0 && cookieAttributes[strings.ToLower(name)]) {
			continue
		}
		if i > 0 {
			name = " " + name
		}
		parts[i] = name + "=" + maskedValue
	}
	return strings.Join(parts, ";")
}

var cookieAttributes = map[string]bool{
	"path":     true,
	"domain":   true,
	"expires":  true,
	"max-age":  true,
	"samesite": true,
}

// sanitizeBody decodes JSON bodies so they print structured and hides the password
// field sent by login and signup. Empty bodies are dropped.
func sanitizeBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return string(body)
	}
	if fields, ok := decoded.(map[string]interface{}); ok {
		if _, exists := fields["password"]; exists {
			fields["password"] = maskedValue
		}
	}
	return decoded
}
