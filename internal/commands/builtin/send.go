package builtin

import (
	"context"
	"errors"

	"mediwise/internal/chat"
	"mediwise/internal/commands"
	"mediwise/internal/output"
	"mediwise/internal/router"
)

// SendCommand implements \send. The shell also routes plain text typed on the chat screen here.
type SendCommand struct{}

// Name returns the command name "send" for registration and lookup.
func (c *SendCommand) Name() string {
	return "send"
}

// Description returns a brief description of what the send command does.
func (c *SendCommand) Description() string {
	return "Ask MediWise a medication question"
}

// Usage returns the syntax for the send command.
func (c *SendCommand) Usage() string {
	return "\\send <question>"
}

// RequiresAuth returns true.
func (c *SendCommand) RequiresAuth() bool {
	return true
}

// HelpInfo returns structured help information for the send command.
func (c *SendCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Examples: []commands.HelpExample{
			{Command: "What is Xarelto used for?", Description: "Plain text on the chat screen is sent as a prompt"},
			{Command: "\\send Can I take ibuprofen with it?", Description: "Same, as an explicit command"},
		},
		Notes: []string{
			"The first message of a new conversation creates it on the backend",
			"Only one prompt can be in flight at a time",
		},
	}
}

// Execute sends the prompt and prints the reply or the error entry.
func (c *SendCommand) Execute(ctx context.Context, env *commands.Env, args string) error {
	p := printer(env)

	message, err := env.Chat.Send(ctx, args)
	switch {
	case errors.Is(err, chat.ErrEmptyPrompt):
		return nil
	case errors.Is(err, chat.ErrBusy):
		p.Warning("Still waiting for the previous answer.")
		return nil
	case errors.Is(err, chat.ErrStaleResponse):
		if env.Router.Location() == router.PathChat {
			p.Muted("The answer arrived after you switched conversations and was not shown.")
		}
		return nil
	}

	if message != nil {
		p.Block(output.RenderMessage(*message, env.Styles(), env.Markdown))
	}
	return nil
}

func init() {
	register(&SendCommand{})
}
