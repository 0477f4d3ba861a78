package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mediwise/internal/commands"
	"mediwise/pkg/chattypes"
)

// transcriptExport is the on-disk form of an exported conversation.
type transcriptExport struct {
	ConversationID string              `json:"conversation_id,omitempty" yaml:"conversation_id,omitempty"`
	Title          string              `json:"title" yaml:"title"`
	ExportedAt     time.Time           `json:"exported_at" yaml:"exported_at"`
	Messages       []chattypes.Message `json:"messages" yaml:"messages"`
}

// ExportCommand implements \export: write the open transcript to a JSON or YAML file.
type ExportCommand struct{}

// Name returns the command name "export" for registration and lookup.
func (c *ExportCommand) Name() string {
	return "export"
}

// Description returns a brief description of what the export command does.
func (c *ExportCommand) Description() string {
	return "Save the open conversation to a file"
}

// Usage returns the syntax for the export command.
func (c *ExportCommand) Usage() string {
	return "\\export <file.json|file.yaml>"
}

// RequiresAuth returns true.
func (c *ExportCommand) RequiresAuth() bool {
	return true
}

// HelpInfo returns structured help information for the export command.
func (c *ExportCommand) HelpInfo() commands.HelpInfo {
	return commands.HelpInfo{
		Command:     c.Name(),
		Description: c.Description(),
		Usage:       c.Usage(),
		Examples: []commands.HelpExample{
			{Command: "\\export xarelto.json", Description: "Export as JSON"},
			{Command: "\\export xarelto.yaml", Description: "Export as YAML"},
		},
		Notes: []string{"The file is written with owner-only permissions"},
	}
}

// Execute writes the transcript in the format chosen by the file extension.
func (c *ExportCommand) Execute(_ context.Context, env *commands.Env, args string) error {
	path := strings.TrimSpace(args)
	if path == "" {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	messages := env.Chat.Transcript()
	if len(messages) == 0 {
		printer(env).Warning("Nothing to export: the transcript is empty.")
		return nil
	}

	doc := transcriptExport{
		ConversationID: env.Chat.CurrentConversationID(),
		Title:          "New Conversation",
		ExportedAt:     env.Clock().UTC(),
		Messages:       messages,
	}
	if summary, ok := env.Chat.CurrentConversation(); ok && summary.Title != "" {
		doc.Title = summary.Title
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(doc, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(doc)
	default:
		return fmt.Errorf("unsupported export format %q (use .json or .yaml)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	printer(env).Success(fmt.Sprintf("Exported %d messages to %s.", len(messages), path))
	return nil
}

func init() {
	register(&ExportCommand{})
}
