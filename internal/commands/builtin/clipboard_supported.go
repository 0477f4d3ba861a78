//go:build !linux

package builtin

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// Write places text on the clipboard, initializing it on first use.
func (SystemClipboard) Write(text string) error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", clipboardErr)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
