package builtin

import (
	"context"
	"fmt"
	"strings"

	"mediwise/internal/commands"
	"mediwise/internal/version"
)

// VersionCommand implements \version.
type VersionCommand struct{}

// Name returns "version".
func (c *VersionCommand) Name() string { return "version" }

// Description returns a brief description of the command.
func (c *VersionCommand) Description() string { return "Show version information" }

// Usage returns the command syntax.
func (c *VersionCommand) Usage() string { return "\\version [detail]" }

// RequiresAuth returns false.
func (c *VersionCommand) RequiresAuth() bool { return false }

// HelpInfo returns structured help.
func (c *VersionCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
	}
}

// Execute prints the short or detailed version.
func (c *VersionCommand) Execute(_ context.Context, env *commands.Env, args string) error {
	switch strings.TrimSpace(args) {
	case "":
		printer(env).Println(version.GetFormattedVersion())
	case "detail":
		printer(env).Block(version.GetDetailedVersion())
	default:
		return fmt.Errorf("usage: %s", c.Usage())
	}
	return nil
}

// ExitCommand implements \exit.
type ExitCommand struct{}

// Name returns "exit".
func (c *ExitCommand) Name() string { return "exit" }

// Description returns a brief description of the command.
func (c *ExitCommand) Description() string { return "Leave MediWise" }

// Usage returns the command syntax.
func (c *ExitCommand) Usage() string { return "\\exit" }

// RequiresAuth returns false.
func (c *ExitCommand) RequiresAuth() bool { return false }

// HelpInfo returns structured help.
func (c *ExitCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes:       []string{"Waits for background list refreshes before quitting"},
	}
}

// Execute stops the shell.
func (c *ExitCommand) Execute(_ context.Context, env *commands.Env, _ string) error {
	if env.Chat != nil {
		env.Chat.Wait()
	}
	printer(env).Println("Goodbye!")
	if env.Exit != nil {
		env.Exit()
	}
	return nil
}

func init() {
	register(&VersionCommand{})
	register(&ExitCommand{})
}
