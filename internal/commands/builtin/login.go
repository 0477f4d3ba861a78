package builtin

import (
	"context"
	"strings"

	"mediwise/internal/commands"
	"mediwise/internal/router"
)

// LoginCommand implements \login. It asks for the missing credentials, authenticates and
// opens the chat screen with the conversation list loaded.
type LoginCommand struct{}

// Name returns the command name "login" for registration and lookup.
func (c *LoginCommand) Name() string {
	return "login"
}

// Description returns a brief description of what the login command does.
func (c *LoginCommand) Description() string {
	return "Log in to MediWise"
}

// Usage returns the syntax for the login command.
func (c *LoginCommand) Usage() string {
	return "\\login [email]"
}

// RequiresAuth returns false: logging in is how authentication starts.
func (c *LoginCommand) RequiresAuth() bool {
	return false
}

// HelpInfo returns structured help information for the login command.
func (c *LoginCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Examples: []commands.HelpExample{
			{Command: "\\login", Description: "Prompt for email and password"},
			{Command: "\\login ann@example.com", Description: "Prompt for the password only"},
		},
		Notes: []string{
			"The password is read without echo",
			"The session lives in an HTTP-only cookie held in memory; it ends when the shell exits",
		},
	}
}

// Execute authenticates and navigates to the chat screen.
func (c *LoginCommand) Execute(ctx context.Context, env *commands.Env, args string) error {
	p := printer(env)

	email := strings.TrimSpace(args)
	if email == "" {
		var err error
		if email, err = readRequired(env, "Email: ", "email", false); err != nil {
			return err
		}
	}
	password, err := readRequired(env, "Password: ", "password", true)
	if err != nil {
		return err
	}

	result := env.Session.Login(ctx, email, password)
	if !result.Success {
		p.Error(result.Error)
		return nil
	}

	env.Router.Navigate(router.PathChat)
	p.Success("Logged in as " + email)

	if err := env.Chat.Mount(ctx); err != nil {
		p.Warning("Could not load your conversations.")
		return nil
	}
	printConversationList(env)
	return nil
}

func init() {
	register(&LoginCommand{})
}
