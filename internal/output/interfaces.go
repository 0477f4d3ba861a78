// Package output provides console output for MediWise: a printer with optional styling and
// formatting for transcripts and the conversation list.
package output

// StyleProvider supplies styles by semantic name. Themes implement it; the output package
// depends only on this interface.
type StyleProvider interface {
	// GetStyle returns the style for a semantic type such as "error" or "assistant".
	GetStyle(semantic string) TextStyle

	// IsAvailable reports whether the provider can style text. When false, output is plain.
	IsAvailable() bool
}

// TextStyle renders text with styling.
type TextStyle interface {
	Render(text string) string
}

// StyleFunc adapts a rendering function to TextStyle.
type StyleFunc func(text string) string

// Render calls f.
func (f StyleFunc) Render(text string) string {
	return f(text)
}

// SemanticType is the meaning of a piece of output, used to pick its style.
type SemanticType string

// Semantic types.
const (
	SemanticPlain     SemanticType = "plain"
	SemanticInfo      SemanticType = "info"
	SemanticSuccess   SemanticType = "success"
	SemanticWarning   SemanticType = "warning"
	SemanticError     SemanticType = "error"
	SemanticUser      SemanticType = "user"
	SemanticAssistant SemanticType = "assistant"
	SemanticMuted     SemanticType = "muted"
	SemanticHighlight SemanticType = "highlight"
	SemanticTitle     SemanticType = "title"
)
