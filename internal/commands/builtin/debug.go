package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"mediwise/internal/commands"
)

// DebugCommand implements \debug: show or clear the last captured HTTP exchange.
type DebugCommand struct{}

// Name returns "debug".
func (c *DebugCommand) Name() string { return "debug" }

// Description returns a brief description of the command.
func (c *DebugCommand) Description() string { return "Show the last HTTP request and response" }

// Usage returns the command syntax.
func (c *DebugCommand) Usage() string { return "\\debug [clear]" }

// RequiresAuth returns false.
func (c *DebugCommand) RequiresAuth() bool { return false }

// HelpInfo returns structured help.
func (c *DebugCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes:       []string{"Passwords and cookies are redacted in the capture"},
	}
}

// Execute prints or clears the capture.
func (c *DebugCommand) Execute(_ context.Context, env *commands.Env, args string) error {
	if env.Capture == nil {
		return fmt.Errorf("HTTP capture is not enabled")
	}

	switch strings.TrimSpace(args) {
	case "":
		data := env.Capture.GetCapturedData()
		if data == "" {
			printer(env).Info("No HTTP exchange captured yet.")
			return nil
		}
		printer(env).Muted(summarizeExchange(data))
		printer(env).Block(data)
	case "clear":
		env.Capture.ClearCapturedData()
		printer(env).Info("HTTP capture cleared.")
	default:
		return fmt.Errorf("usage: %s", c.Usage())
	}
	return nil
}

// summarizeExchange condenses a capture to "POST http://host/auth/login -> 200 OK (12 ms)".
func summarizeExchange(data string) string {
	fields := gjson.GetMany(data, "http_request.method", "http_request.url", "http_response.status", "http_response.error", "duration_ms")
	outcome := fields[2].String()
	if outcome == "" {
		outcome = "error: " + fields[3].String()
	}
	return fmt.Sprintf("%s %s -> %s (%d ms)", fields[0].String(), fields[1].String(), outcome, fields[4].Int())
}

func init() {
	register(&DebugCommand{})
}
