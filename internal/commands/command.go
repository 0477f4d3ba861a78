package commands

import "context"

// Command is a backslash command of the MediWise shell.
type Command interface {
	// Name is the word after the backslash, e.g. "login".
	Name() string

	// Description is a one-line summary for \help.
	Description() string

	// Usage shows the command syntax.
	Usage() string

	// HelpInfo returns structured help for \help <command>.
	HelpInfo() HelpInfo

	// RequiresAuth reports whether the command is only available on the chat screen.
	RequiresAuth() bool

	// Execute runs the command. args is the raw text after the command name.
	Execute(ctx context.Context, env *Env, args string) error
}

// HelpInfo is structured help for a command.
type HelpInfo struct {
	Command     string        `json:"command"`
	Description string        `json:"description"`
	Usage       string        `json:"usage"`
	Examples    []HelpExample `json:"examples,omitempty"`
	Notes       []string      `json:"notes,omitempty"`
}

// HelpExample is a usage example with explanation.
type HelpExample struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}
