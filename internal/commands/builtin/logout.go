package builtin

import (
	"context"

	"mediwise/internal/commands"
	"mediwise/internal/logger"
	"mediwise/internal/router"
)

// LogoutCommand implements \logout. It only resets client state; no backend call is made.
type LogoutCommand struct{}

// Name returns the command name "logout" for registration and lookup.
func (c *LogoutCommand) Name() string {
	return "logout"
}

// Description returns a brief description of what the logout command does.
func (c *LogoutCommand) Description() string {
	return "Log out and forget the session"
}

// Usage returns the syntax for the logout command.
func (c *LogoutCommand) Usage() string {
	return "\\logout"
}

// RequiresAuth returns false so a stale session can always be cleared.
func (c *LogoutCommand) RequiresAuth() bool {
	return false
}

// HelpInfo returns structured help information for the logout command.
func (c *LogoutCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes: []string{
			"Clears the session cookies kept in memory and the open conversation",
			"The backend is not contacted",
		},
	}
}

// Execute resets the session, the conversation state and the cookie jar.
func (c *LogoutCommand) Execute(_ context.Context, env *commands.Env, _ string) error {
	env.Session.Logout()
	env.Chat.Reset()
	if env.Cookies != nil {
		if err := env.Cookies.ClearCookies(); err != nil {
			logger.Warn("Failed to clear cookies", "error", err)
		}
	}
	env.Router.Navigate(router.PathLogin)
	printer(env).Info("Logged out.")
	return nil
}

func init() {
	register(&LogoutCommand{})
}
