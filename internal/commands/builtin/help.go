package builtin

import (
	"context"
	"fmt"
	"strings"

	"mediwise/internal/commands"
	"mediwise/internal/output"
)

// HelpCommand implements \help: list the commands, or describe one of them.
type HelpCommand struct{}

// Name returns the command name "help" for registration and lookup.
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns a brief description of what the help command does.
func (c *HelpCommand) Description() string {
	return "Show available commands"
}

// Usage returns the syntax for the help command.
func (c *HelpCommand) Usage() string {
	return "\\help [command]"
}

// RequiresAuth returns false.
func (c *HelpCommand) RequiresAuth() bool {
	return false
}

// HelpInfo returns structured help information for the help command.
func (c *HelpCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Examples: []commands.HelpExample{
			{Command: "\\help", Description: "List all commands"},
			{Command: "\\help delete", Description: "Show help for \\delete"},
		},
	}
}

// Execute prints the overview or the help of a single command.
func (c *HelpCommand) Execute(_ context.Context, env *commands.Env, args string) error {
	registry := env.Registry
	if registry == nil {
		registry = commands.GlobalRegistry
	}

	name := strings.TrimPrefix(strings.TrimSpace(args), "\\")
	if name == "" {
		printer(env).Block(renderCommandList(registry.GetAll(), env.Styles()))
		return nil
	}

	cmd, ok := registry.Get(strings.ToLower(name))
	if !ok {
		return fmt.Errorf("%w: \\%s", commands.ErrUnknownCommand, name)
	}
	printer(env).Block(renderCommandHelp(cmd.HelpInfo(), env.Styles()))
	return nil
}

func renderCommandList(cmds []commands.Command, styles output.StyleProvider) string {
	var b strings.Builder
	b.WriteString(styles.GetStyle(string(output.SemanticTitle)).Render("Commands"))
	b.WriteString("\n\n")

	width := 0
	for _, cmd := range cmds {
		width = max(width, len(cmd.Usage()))
	}
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "  %-*s  %s", width, cmd.Usage(), cmd.Description())
		if cmd.RequiresAuth() {
			b.WriteString(styles.GetStyle(string(output.SemanticMuted)).Render(" (login required)"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nOn the chat screen, anything not starting with \\ is sent as a question.\n")
	return b.String()
}

func renderCommandHelp(info commands.HelpInfo, styles output.StyleProvider) string {
	title := styles.GetStyle(string(output.SemanticTitle))

	var b strings.Builder
	b.WriteString(title.Render("\\" + info.Command))
	b.WriteString("  " + info.Description + "\n\n")
	b.WriteString("Usage: " + info.Usage + "\n")

	if len(info.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range info.Examples {
			fmt.Fprintf(&b, "  %s\n      %s\n", ex.Command, ex.Description)
		}
	}
	if len(info.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, note := range info.Notes {
			b.WriteString("  - " + note + "\n")
		}
	}
	return b.String()
}

func init() {
	register(&HelpCommand{})
}
