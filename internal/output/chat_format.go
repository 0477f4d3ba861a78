package output

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/list"

	"mediwise/pkg/chattypes"
)

// Placeholder texts for an empty transcript and an empty conversation list.
const (
	WelcomeTitle        = "Welcome to MediWise.AI"
	WelcomeText         = "Ask me anything about medications, side effects, dosages, and more. I'm here to help you understand your medicines better."
	NoConversationsText = "No conversations yet"
)

const previewWidth = 60

// MarkdownRenderer renders assistant replies.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// MarkdownFunc adapts a function to MarkdownRenderer.
type MarkdownFunc func(markdown string) (string, error)

// Render calls f.
func (f MarkdownFunc) Render(markdown string) (string, error) {
	return f(markdown)
}

// FormatRelativeTime formats t relative to now the way the conversation list shows it:
// a clock time within a day, "Yesterday" within two days, the weekday within a week and
// the month and day after that. The zero time formats as "".
func FormatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	local := t.In(now.Location())
	age := now.Sub(t)
	switch {
	case age < 24*time.Hour:
		return local.Format("3:04 PM")
	case age < 48*time.Hour:
		return "Yesterday"
	case age < 7*24*time.Hour:
		return local.Format("Mon")
	default:
		return local.Format("Jan 2")
	}
}

// WelcomeBanner renders the empty-transcript greeting.
func WelcomeBanner(styles StyleProvider) string {
	styles = orPlain(styles)
	return styles.GetStyle(string(SemanticTitle)).Render(WelcomeTitle) + "\n" +
		styles.GetStyle(string(SemanticMuted)).Render(WelcomeText)
}

// RenderTranscript renders messages in order, labelled by role. Assistant replies go through
// markdown when a renderer is given; a rendering failure falls back to the raw text.
func RenderTranscript(messages []chattypes.Message, styles StyleProvider, markdown MarkdownRenderer) string {
	styles = orPlain(styles)
	if len(messages) == 0 {
		return WelcomeBanner(styles)
	}

	blocks := make([]string, 0, len(messages))
	for _, message := range messages {
		blocks = append(blocks, RenderMessage(message, styles, markdown))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderMessage renders a single transcript entry.
func RenderMessage(message chattypes.Message, styles StyleProvider, markdown MarkdownRenderer) string {
	styles = orPlain(styles)

	var label string
	var semantic SemanticType
	switch message.Role {
	case chattypes.RoleUser:
		label, semantic = "You", SemanticUser
	case chattypes.RoleAssistant:
		label, semantic = "MediWise", SemanticAssistant
	default:
		label, semantic = "Error", SemanticError
	}

	header := styles.GetStyle(string(semantic)).Render(label)
	if stamp := message.Timestamp; !stamp.IsZero() {
		header += " " + styles.GetStyle(string(SemanticMuted)).Render(stamp.Local().Format("3:04 PM"))
	}

	if message.Role == chattypes.RoleAssistant && markdown != nil {
		if rendered, err := markdown.Render(message.Content); err == nil && strings.TrimSpace(rendered) != "" {
			return header + "\n" + strings.TrimRight(rendered, "\n")
		}
	}

	return header + "\n" + indent(message.Content)
}

// RenderConversationList renders the cached list as a numbered list in backend order. The
// numbers can be used in place of ids by the shell commands.
func RenderConversationList(conversations []chattypes.ConversationSummary, currentID string, deleting func(id string) bool, now time.Time, styles StyleProvider) string {
	styles = orPlain(styles)
	if len(conversations) == 0 {
		return styles.GetStyle(string(SemanticMuted)).Render(NoConversationsText)
	}

	muted := styles.GetStyle(string(SemanticMuted))
	items := list.New().Enumerator(list.Arabic)
	for _, conversation := range conversations {
		title := conversation.Title
		if title == "" {
			title = "Untitled"
		}
		if conversation.ID == currentID {
			title = styles.GetStyle(string(SemanticHighlight)).Render(title + " *")
		}

		line := title + "  " + muted.Render(conversation.ID)
		if when := FormatRelativeTime(conversation.UpdatedAt.Time, now); when != "" {
			line += muted.Render(" · " + when)
		}
		if deleting != nil && deleting(conversation.ID) {
			line += " " + styles.GetStyle(string(SemanticWarning)).Render("(deleting)")
		}
		if conversation.Preview != "" {
			line += "\n" + muted.Render(truncate(conversation.Preview, previewWidth))
		}
		items.Item(line)
	}
	return items.String()
}

// ConversationAt resolves a 1-based list position or an id to a conversation id.
func ConversationAt(conversations []chattypes.ConversationSummary, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	for _, conversation := range conversations {
		if conversation.ID == ref {
			return ref, true
		}
	}
	if position, err := strconv.Atoi(ref); err == nil && position >= 1 && position <= len(conversations) {
		return conversations[position-1].ID, true
	}
	return "", false
}

func truncate(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-1]) + "…"
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}

func orPlain(styles StyleProvider) StyleProvider {
	if styles == nil || !styles.IsAvailable() {
		return PlainStyles{}
	}
	return styles
}
