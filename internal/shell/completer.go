package shell

import (
	"sort"
	"strconv"
	"strings"

	"mediwise/internal/commands"
	"mediwise/pkg/chattypes"
)

// conversationSource is the part of the controller the completer reads.
type conversationSource interface {
	Conversations() []chattypes.ConversationSummary
}

// commandsTakingConversation complete their first argument with conversation refs.
var commandsTakingConversation = map[string]bool{
	"open":   true,
	"delete": true,
	"rename": true,
}

// Completer provides tab completion for command names, \help topics and conversation refs.
// It implements the readline.AutoCompleter interface used by ishell.
type Completer struct {
	registry      *commands.Registry
	conversations conversationSource
}

// NewCompleter creates a completer over the command registry and the cached conversation list.
func NewCompleter(registry *commands.Registry, conversations conversationSource) *Completer {
	return &Completer{registry: registry, conversations: conversations}
}

// Do returns the suffixes that complete the word before pos, and the length of that word.
func (c *Completer) Do(line []rune, pos int) (newLine [][]rune, offset int) {
	if pos > len(line) {
		pos = len(line)
	}
	text := string(line[:pos])

	wordStart := strings.LastIndexAny(text, " \t") + 1
	currentWord := text[wordStart:]
	before := strings.Fields(text[:wordStart])

	var candidates []string
	switch {
	case len(before) == 0:
		if strings.HasPrefix(currentWord, "\\") || currentWord == "" {
			candidates = c.commandNames("\\")
		}
	case len(before) == 1 && before[0] == "\\help":
		candidates = c.commandNames("")
	case len(before) == 1 && commandsTakingConversation[strings.TrimPrefix(before[0], "\\")]:
		candidates = c.conversationRefs()
	}

	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, currentWord) {
			newLine = append(newLine, []rune(strings.TrimPrefix(candidate, currentWord)))
		}
	}
	return newLine, len([]rune(currentWord))
}

func (c *Completer) commandNames(prefix string) []string {
	if c.registry == nil {
		return nil
	}
	all := c.registry.GetAll()
	names := make([]string, 0, len(all))
	for _, cmd := range all {
		names = append(names, prefix+cmd.Name())
	}
	sort.Strings(names)
	return names
}

// conversationRefs offers list positions first, then ids.
func (c *Completer) conversationRefs() []string {
	if c.conversations == nil {
		return nil
	}
	list := c.conversations.Conversations()
	refs := make([]string, 0, 2*len(list))
	for i := range list {
		refs = append(refs, strconv.Itoa(i+1))
	}
	for _, conversation := range list {
		refs = append(refs, conversation.ID)
	}
	return refs
}
