package builtin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mediwise/internal/chat"
	"mediwise/internal/commands"
	"mediwise/internal/output"
)

// NewCommand implements \new: start a fresh conversation.
type NewCommand struct{}

// Name returns "new".
func (c *NewCommand) Name() string { return "new" }

// Description returns a brief description of the command.
func (c *NewCommand) Description() string { return "Start a new conversation" }

// Usage returns the command syntax.
func (c *NewCommand) Usage() string { return "\\new" }

// RequiresAuth returns true.
func (c *NewCommand) RequiresAuth() bool { return true }

// HelpInfo returns structured help.
func (c *NewCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes:       []string{"The conversation is created by the backend when you send the first message"},
	}
}

// Execute clears the transcript.
func (c *NewCommand) Execute(_ context.Context, env *commands.Env, _ string) error {
	env.Chat.NewConversation()
	printer(env).Block(output.WelcomeBanner(env.Styles()))
	return nil
}

// ListCommand implements \list: reload and show the conversation list.
type ListCommand struct{}

// Name returns "list".
func (c *ListCommand) Name() string { return "list" }

// Description returns a brief description of the command.
func (c *ListCommand) Description() string { return "List your conversations" }

// Usage returns the command syntax.
func (c *ListCommand) Usage() string { return "\\list" }

// RequiresAuth returns true.
func (c *ListCommand) RequiresAuth() bool { return true }

// HelpInfo returns structured help.
func (c *ListCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes: []string{
			"Newest first, as ordered by the backend",
			"The open conversation is marked with *",
			"Use the numbers with \\open, \\delete and \\rename",
		},
	}
}

// Execute reloads the list. On failure the last loaded list is shown.
func (c *ListCommand) Execute(ctx context.Context, env *commands.Env, _ string) error {
	if err := env.Chat.RefreshConversations(ctx); err != nil {
		printer(env).Warning("Could not refresh conversations; showing the last loaded list.")
	}
	printConversationList(env)
	return nil
}

// OpenCommand implements \open: load a conversation into the transcript.
type OpenCommand struct{}

// Name returns "open".
func (c *OpenCommand) Name() string { return "open" }

// Description returns a brief description of the command.
func (c *OpenCommand) Description() string { return "Open a conversation" }

// Usage returns the command syntax.
func (c *OpenCommand) Usage() string { return "\\open <number|id>" }

// RequiresAuth returns true.
func (c *OpenCommand) RequiresAuth() bool { return true }

// HelpInfo returns structured help.
func (c *OpenCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Examples: []commands.HelpExample{
			{Command: "\\open 1", Description: "Open the newest conversation"},
			{Command: "\\open c42", Description: "Open a conversation by id"},
		},
	}
}

// Execute selects the conversation and prints its transcript.
func (c *OpenCommand) Execute(ctx context.Context, env *commands.Env, args string) error {
	id, err := resolveConversation(env, args)
	if err != nil {
		return err
	}
	if err := env.Chat.Select(ctx, id); err != nil {
		if errors.Is(err, chat.ErrStaleResponse) {
			return nil
		}
		return err
	}
	printTranscript(env)
	return nil
}

// DeleteCommand implements \delete.
type DeleteCommand struct{}

// Name returns "delete".
func (c *DeleteCommand) Name() string { return "delete" }

// Description returns a brief description of the command.
func (c *DeleteCommand) Description() string { return "Delete a conversation" }

// Usage returns the command syntax.
func (c *DeleteCommand) Usage() string { return "\\delete <number|id>" }

// RequiresAuth returns true.
func (c *DeleteCommand) RequiresAuth() bool { return true }

// HelpInfo returns structured help.
func (c *DeleteCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Notes: []string{
			"Asks for confirmation first",
			"Deleting the open conversation starts a new one",
		},
	}
}

// Execute confirms and deletes.
func (c *DeleteCommand) Execute(ctx context.Context, env *commands.Env, args string) error {
	id, err := resolveConversation(env, args)
	if err != nil {
		return err
	}

	err = env.Chat.Delete(ctx, id)
	switch {
	case errors.Is(err, chat.ErrDeleteCancelled):
		printer(env).Info("Delete cancelled.")
		return nil
	case errors.Is(err, chat.ErrUnknownConversation):
		return fmt.Errorf("no conversation %q in the list (see \\list)", strings.TrimSpace(args))
	case err != nil:
		return err
	}
	printer(env).Success("Conversation deleted.")
	return nil
}

// CreateCommand implements \create: create an empty conversation with a title.
type CreateCommand struct{}

// Name returns "create".
func (c *CreateCommand) Name() string { return "create" }

// Description returns a brief description of the command.
func (c *CreateCommand) Description() string { return "Create an empty conversation" }

// Usage returns the command syntax.
func (c *CreateCommand) Usage() string { return "\\create [title]" }

// RequiresAuth returns true.
func (c *CreateCommand) RequiresAuth() bool { return true }

// HelpInfo returns structured help.
func (c *CreateCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Examples: []commands.HelpExample{
			{Command: "\\create Blood pressure meds", Description: "Create and open a titled conversation"},
		},
	}
}

// Execute creates and opens the conversation.
func (c *CreateCommand) Execute(ctx context.Context, env *commands.Env, args string) error {
	created, err := env.Chat.Create(ctx, args)
	if err != nil {
		return err
	}
	printer(env).Success(fmt.Sprintf("Created %q (%s).", created.Title, created.ID))
	return nil
}

// RenameCommand implements \rename.
type RenameCommand struct{}

// Name returns "rename".
func (c *RenameCommand) Name() string { return "rename" }

// Description returns a brief description of the command.
func (c *RenameCommand) Description() string { return "Rename a conversation" }

// Usage returns the command syntax.
func (c *RenameCommand) Usage() string { return "\\rename <number|id> <title>" }

// RequiresAuth returns true.
func (c *RenameCommand) RequiresAuth() bool { return true }

// HelpInfo returns structured help.
func (c *RenameCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Examples: []commands.HelpExample{
			{Command: "\\rename 2 Warfarin and aspirin", Description: "Rename the second conversation in the list"},
		},
	}
}

// Execute renames the conversation.
func (c *RenameCommand) Execute(ctx context.Context, env *commands.Env, args string) error {
	ref, title, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := resolveConversation(env, ref)
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	renamed, err := env.Chat.Rename(ctx, id, title)
	if err != nil {
		return err
	}
	printer(env).Success(fmt.Sprintf("Renamed to %q.", renamed.Title))
	return nil
}

func init() {
	register(&NewCommand{})
	register(&ListCommand{})
	register(&OpenCommand{})
	register(&DeleteCommand{})
	register(&CreateCommand{})
	register(&RenameCommand{})
}
