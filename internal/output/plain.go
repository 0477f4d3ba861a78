package output

var plainPrefixes = map[SemanticType]string{
	SemanticInfo:    "ℹ ",
	SemanticSuccess: "✓ ",
	SemanticWarning: "⚠ ",
	SemanticError:   "✗ ",
}

// PlainStyles is the StyleProvider used without a theme. Status output gets a symbol prefix
// and everything else passes through unchanged.
type PlainStyles struct{}

// GetStyle returns the prefix style for semantic.
func (PlainStyles) GetStyle(semantic string) TextStyle {
	prefix := plainPrefixes[SemanticType(semantic)]
	return StyleFunc(func(text string) string {
		return prefix + text
	})
}

// IsAvailable always returns true.
func (PlainStyles) IsAvailable() bool {
	return true
}
