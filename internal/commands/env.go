package commands

import (
	"fmt"
	"strings"
	"time"

	"mediwise/internal/chat"
	"mediwise/internal/output"
	"mediwise/internal/router"
	"mediwise/internal/state"
	"mediwise/pkg/chattypes"
)

// Console reads interactive input. The shell implements it on top of ishell; tests script it.
type Console interface {
	ReadLine(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

// HTTPCapture exposes the last HTTP exchange recorded by the debug transport.
type HTTPCapture interface {
	GetCapturedData() string
	ClearCapturedData()
}

// CookieStore forgets the session cookies held by the client.
type CookieStore interface {
	ClearCookies() error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	Write(text string) error
}

// Env is everything a command can act on. The shell builds one per process.
type Env struct {
	Session  *state.Session
	Chat     *chat.Controller
	Router   *router.Router
	Console  Console
	Printer  *output.Printer
	Markdown output.MarkdownRenderer
	Capture  HTTPCapture
	Cookies  CookieStore
	Clip     Clipboard
	Registry *Registry

	// Exit stops the shell loop.
	Exit func()

	// Now is the clock used for relative dates in the conversation list.
	Now func() time.Time
}

// Styles returns the style provider of the printer, or the plain provider without one.
func (e *Env) Styles() output.StyleProvider {
	if e.Printer == nil {
		return output.PlainStyles{}
	}
	return e.Printer.StyleProvider()
}

// Clock returns e.Now, defaulting to time.Now.
func (e *Env) Clock() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// ConfirmDelete asks on the console before a conversation is deleted. Only "y" or "yes"
// approves; anything else, including a read error, cancels.
func ConfirmDelete(console Console) chat.ConfirmFunc {
	return func(conversation chattypes.ConversationSummary) bool {
		title := conversation.Title
		if title == "" {
			title = conversation.ID
		}
		answer, err := console.ReadLine(fmt.Sprintf("Delete conversation %q? [y/N] ", title))
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
