package builtin

import (
	"context"

	"mediwise/internal/commands"
	"mediwise/internal/router"
)

// SignupCommand implements \signup. Registration does not log the user in.
type SignupCommand struct{}

// Name returns the command name "signup" for registration and lookup.
func (c *SignupCommand) Name() string {
	return "signup"
}

// Description returns a brief description of what the signup command does.
func (c *SignupCommand) Description() string {
	return "Create a MediWise account"
}

// Usage returns the syntax for the signup command.
func (c *SignupCommand) Usage() string {
	return "\\signup"
}

// RequiresAuth returns false.
func (c *SignupCommand) RequiresAuth() bool {
	return false
}

// HelpInfo returns structured help information for the signup command.
func (c *SignupCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes: []string{
			"Asks for first name, last name, email and password",
			"Log in with \\login afterwards",
		},
	}
}

// Execute registers the account and returns to the login screen.
func (c *SignupCommand) Execute(ctx context.Context, env *commands.Env, _ string) error {
	env.Router.Navigate(router.PathSignup)

	firstName, err := readRequired(env, "First name: ", "first name", false)
	if err != nil {
		return err
	}
	lastName, err := readRequired(env, "Last name: ", "last name", false)
	if err != nil {
		return err
	}
	email, err := readRequired(env, "Email: ", "email", false)
	if err != nil {
		return err
	}
	password, err := readRequired(env, "Password: ", "password", true)
	if err != nil {
		return err
	}

	p := printer(env)
	result := env.Session.Signup(ctx, firstName, lastName, email, password)
	if !result.Success {
		p.Error(result.Error)
		return nil
	}

	env.Router.Navigate(router.PathLogin)
	p.Success("Account created. Log in with \\login " + email)
	return nil
}

func init() {
	register(&SignupCommand{})
}
