package builtin

import (
	"context"
	"fmt"

	"mediwise/internal/commands"
)

// CopyCommand implements \copy: put the last assistant answer on the system clipboard.
type CopyCommand struct{}

// Name returns the command name "copy" for registration and lookup.
func (c *CopyCommand) Name() string {
	return "copy"
}

// Description returns a brief description of what the copy command does.
func (c *CopyCommand) Description() string {
	return "Copy the last answer to the clipboard"
}

// Usage returns the syntax for the copy command.
func (c *CopyCommand) Usage() string {
	return "\\copy"
}

// RequiresAuth returns true.
func (c *CopyCommand) RequiresAuth() bool {
	return true
}

// HelpInfo returns structured help information for the copy command.
func (c *CopyCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes: []string{
			"Copies the markdown source, not the rendered text",
			"Not available on Linux builds",
		},
	}
}

// Execute copies the most recent assistant reply of the open transcript.
func (c *CopyCommand) Execute(_ context.Context, env *commands.Env, _ string) error {
	message, ok := env.Chat.LastAssistantMessage()
	if !ok {
		printer(env).Warning("There is no answer to copy yet.")
		return nil
	}

	clip := env.Clip
	if clip == nil {
		clip = SystemClipboard{}
	}
	if err := clip.Write(message.Content); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	printer(env).Success("Answer copied to clipboard.")
	return nil
}

func init() {
	register(&CopyCommand{})
}
