package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"mediwise/internal/logger"
	"mediwise/internal/testutils"
	"mediwise/internal/version"
)

// MaxResponseSize caps how much of a response body is read.
const MaxResponseSize = 10 * 1024 * 1024

// Request is a single call against the MediWise backend.
// Path is appended to the configured base address; Body, when non-nil, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Body   interface{}
}

// Response is a successful (2xx) backend response.
type Response struct {
	Status int
	Data   []byte
	Header http.Header
}

// Decode unmarshals the response body into v. An empty body leaves v untouched.
func (r *Response) Decode(v interface{}) error {
	if len(bytes.TrimSpace(r.Data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Doer issues backend requests. Both the transport and the session refresh decorator implement it.
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// HTTPRequestService is the transport layer: one HTTP client bound to the backend base address.
// Session cookies are kept in a cookie jar and sent with every call.
type HTTPRequestService struct {
	mu          sync.RWMutex
	initialized bool
	baseURL     string
	timeout     time.Duration
	transport   http.RoundTripper
	jar         *sessionJar
	client      *http.Client
}

// HTTPOption customizes an HTTPRequestService before initialization.
type HTTPOption func(*HTTPRequestService)

// WithTransport sets the round tripper used by the client, e.g. the debug transport.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(h *HTTPRequestService) { h.transport = rt }
}

// WithTimeout sets the client timeout. Zero means no explicit timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTPRequestService) { h.timeout = timeout }
}

// NewHTTPRequestService creates a transport for the given base address.
func NewHTTPRequestService(baseURL string, opts ...HTTPOption) *HTTPRequestService {
	h := &HTTPRequestService{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name returns the service name "http_request" for registration.
func (h *HTTPRequestService) Name() string {
	return "http_request"
}

// Initialize creates the HTTP client and its cookie jar.
func (h *HTTPRequestService) Initialize() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := url.Parse(h.baseURL); err != nil || h.baseURL == "" {
		return fmt.Errorf("invalid base URL %q", h.baseURL)
	}

	jar, err := newSessionJar()
	if err != nil {
		return err
	}

	transport := h.transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	h.jar = jar
	h.client = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   h.timeout,
	}
	h.initialized = true
	logger.Debug("HTTPRequestService initialized", "base_url", h.baseURL, "timeout", h.timeout.String())
	return nil
}

// SetTimeout configures the request timeout.
func (h *HTTPRequestService) SetTimeout(timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	oldTimeout := h.timeout
	h.timeout = timeout
	if h.client != nil {
		h.client.Timeout = timeout
	}
	logger.Debug("HTTP request timeout updated", "old_timeout", oldTimeout.String(), "new_timeout", timeout.String())
}

// BaseURL returns the backend base address.
func (h *HTTPRequestService) BaseURL() string {
	return h.baseURL
}

// Do sends a request and returns the response for 2xx statuses.
// Non-2xx statuses yield *HTTPError; failures before a response yield *NetworkError.
func (h *HTTPRequestService) Do(ctx context.Context, req Request) (*Response, error) {
	h.mu.RLock()
	client := h.client
	initialized := h.initialized
	h.mu.RUnlock()

	if !initialized {
		logger.Error("HTTP request attempted on uninitialized service")
		return nil, ErrServiceNotInitialized
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, h.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := testutils.GenerateUUID()
	httpReq.Header.Set("X-Request-ID", requestID)

	logger.Debug("Starting HTTP request", "method", method, "path", req.Path, "request_id", requestID)

	resp, err := client.Do(httpReq)
	if err != nil {
		logger.Debug("HTTP request failed", "method", method, "path", req.Path, "error", err)
		return nil, &NetworkError{Method: method, Path: req.Path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := readResponse(resp)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: req.Path, Err: err}
	}

	logger.Debug("HTTP request completed",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"body_length", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Method:  method,
			Path:    req.Path,
			Status:  resp.StatusCode,
			Body:    data,
			Message: backendMessage(data),
		}
	}

	return &Response{Status: resp.StatusCode, Data: data, Header: resp.Header}, nil
}

// Cookies returns the cookies the jar would send to the base address.
func (h *HTTPRequestService) Cookies() []*http.Cookie {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.jar == nil {
		return nil
	}
	u, err := url.Parse(h.baseURL + "/")
	if err != nil {
		return nil
	}
	return h.jar.Cookies(u)
}

// ClearCookies drops every stored cookie.
func (h *HTTPRequestService) ClearCookies() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.jar == nil {
		return ErrServiceNotInitialized
	}
	return h.jar.reset()
}

// sessionJar is a cookie jar that can be emptied while requests are in flight.
type sessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	s := &sessionJar{}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sessionJar) reset() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}
	s.mu.Lock()
	s.jar = jar
	s.mu.Unlock()
	return nil
}

func (s *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	jar.SetCookies(u, cookies)
}

func (s *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	jar := s.jar
	s.mu.RUnlock()
	return jar.Cookies(u)
}

// readResponse reads at most MaxResponseSize bytes of the body.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
