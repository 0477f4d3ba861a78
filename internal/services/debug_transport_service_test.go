package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDebugTransportService_CapturesMaskedExchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token_cookie", Value: "secret-access", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": "Login successful"}`))
	}))
	defer server.Close()

	debug := NewDebugTransportService()
	require.NoError(t, debug.Initialize())
	assert.Empty(t, debug.GetCapturedData())

	service := newInitializedHTTPService(t, server.URL, WithTransport(debug.CreateTransport()))
	_, err := service.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   map[string]string{"email": "a@b.c", "password": "hunter2"},
	})
	require.NoError(t, err)

	captured := debug.GetCapturedData()
	require.True(t, gjson.Valid(captured))

	assert.Equal(t, "POST", gjson.Get(captured, "http_request.method").String())
	assert.Equal(t, "a@b.c", gjson.Get(captured, "http_request.body.email").String())
	assert.Equal(t, maskedValue, gjson.Get(captured, "http_request.body.password").String())
	assert.Equal(t, int64(200), gjson.Get(captured, "http_response.status_code").Int())
	assert.Equal(t, "Login successful", gjson.Get(captured, "http_response.body.message").String())
	assert.True(t, gjson.Get(captured, "duration_ms").Exists())

	setCookie := gjson.Get(captured, "http_response.headers.Set-Cookie.0").String()
	assert.Contains(t, setCookie, "access_token_cookie="+maskedValue)
	assert.Contains(t, setCookie, "Path=/")
	assert.NotContains(t, captured, "secret-access")
	assert.NotContains(t, captured, "hunter2")

	// The next request carries the cookie; it must be masked as well.
	_, err = service.Do(context.Background(), Request{Method: http.MethodGet, Path: "/conversations"})
	require.NoError(t, err)
	captured = debug.GetCapturedData()
	assert.Equal(t, "access_token_cookie="+maskedValue, gjson.Get(captured, "http_request.headers.Cookie.0").String())
	assert.NotContains(t, captured, "secret-access")

	debug.ClearCapturedData()
	assert.Empty(t, debug.GetCapturedData())
}

func TestDebugTransportService_CapturesNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	debug := NewDebugTransportService()
	require.NoError(t, debug.Initialize())

	service := newInitializedHTTPService(t, url, WithTransport(debug.CreateTransport()))
	_, err := service.Do(context.Background(), Request{Method: http.MethodGet, Path: "/conversations"})
	require.Error(t, err)

	captured := debug.GetCapturedData()
	assert.NotEmpty(t, gjson.Get(captured, "http_response.error").String())
}

func TestDebugTransportService_UninitializedFallsBack(t *testing.T) {
	debug := NewDebugTransportService()
	assert.Equal(t, http.DefaultTransport, debug.CreateTransport())
}

func TestSanitizeBody(t *testing.T) {
	assert.Nil(t, sanitizeBody(nil))
	assert.Equal(t, "not json", sanitizeBody([]byte("not json")))
	assert.Equal(t, map[string]interface{}{"prompt": "hi"}, sanitizeBody([]byte(`{"prompt":"hi"}`)))
	assert.Equal(t, []interface{}{"a"}, sanitizeBody([]byte(`["a"]`)))
}

func TestMaskCookie(t *testing.T) {
	assert.Equal(t, "a="+maskedValue+"; Path=/; HttpOnly", maskCookie("a=1; Path=/; HttpOnly"))
	assert.Equal(t, "a="+maskedValue+"; b="+maskedValue, maskCookie("a=1; b=2"))
}

func TestSanitizeHeaders(t *testing.T) {
	headers := http.Header{
		"Authorization": []string{"Bearer abcdefghijklmnop"},
		"X-Api-Key":     []string{"short"},
		"Cookie":        []string{"access_token_cookie=aaa; refresh_token_cookie=bbb"},
		"Accept":        []string{"application/json"},
	}

	sanitized := sanitizeHeaders(headers)

	assert.Equal(t, []string{"Bearer abc" + maskedValue}, sanitized["Authorization"])
	assert.Equal(t, []string{maskedValue}, sanitized["X-Api-Key"])
	assert.Equal(t, []string{"access_token_cookie=" + maskedValue + "; refresh_token_cookie=" + maskedValue}, sanitized["Cookie"])
	assert.Equal(t, []string{"application/json"}, sanitized["Accept"])
}
