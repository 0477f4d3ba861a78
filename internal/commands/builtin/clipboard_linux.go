//go:build linux

package builtin

import "errors"

// SystemClipboard writes to the OS clipboard. Linux builds ship without clipboard support.
type SystemClipboard struct{}

// Write always fails on Linux.
func (SystemClipboard) Write(_ string) error {
	return errors.New("clipboard is not available on this platform")
}
