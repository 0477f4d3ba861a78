// Package builtin contains the MediWise shell commands. Each command registers itself with
// commands.GlobalRegistry when the package is imported.
package builtin

import (
	"fmt"
	"strings"

	"mediwise/internal/commands"
	"mediwise/internal/output"
)

func register(cmd commands.Command) {
	if err := commands.GlobalRegistry.Register(cmd); err != nil {
		panic(fmt.Sprintf("failed to register %s command: %v", cmd.Name(), err))
	}
}

func printer(env *commands.Env) *output.Printer {
	if env.Printer == nil {
		return output.NewPrinter()
	}
	return env.Printer
}

// resolveConversation accepts a list position or an id. Ids missing from the cached list are
// passed through so the backend can decide.
func resolveConversation(env *commands.Env, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("conversation number or id is required (see \\list)")
	}
	if id, ok := output.ConversationAt(env.Chat.Conversations(), ref); ok {
		return id, nil
	}
	return ref, nil
}

func printConversationList(env *commands.Env) {
	printer(env).Block(output.RenderConversationList(
		env.Chat.Conversations(),
		env.Chat.CurrentConversationID(),
		env.Chat.Deleting,
		env.Clock(),
		env.Styles(),
	))
}

func printTranscript(env *commands.Env) {
	printer(env).Block(output.RenderTranscript(env.Chat.Transcript(), env.Styles(), env.Markdown))
}

func readRequired(env *commands.Env, prompt, field string, password bool) (string, error) {
	read := env.Console.ReadLine
	if password {
		read = env.Console.ReadPassword
	}
	value, err := read(prompt)
	if err != nil {
		return "", err
	}
	if !password {
		value = strings.TrimSpace(value)
	}
	if value == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	return value, nil
}
