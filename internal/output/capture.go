package output

import (
	"bytes"
	"strings"
	"sync"
)

// CaptureBuffer is an io.Writer that records printer output for tests and batch runs.
type CaptureBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewCaptureBuffer returns an empty buffer.
func NewCaptureBuffer() *CaptureBuffer {
	return &CaptureBuffer{}
}

func (c *CaptureBuffer) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(b)
}

func (c *CaptureBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Lines returns the output split on newlines, without a trailing empty line.
func (c *CaptureBuffer) Lines() []string {
	out := strings.TrimSuffix(c.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Reset drops everything recorded so far.
func (c *CaptureBuffer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
}
