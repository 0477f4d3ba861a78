package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"mediwise/internal/logger"
)

// DefaultMarkdownWidth is the word wrap column used when none is configured.
const DefaultMarkdownWidth = 80

// glamourStyles maps MediWise theme names to glamour standard styles. Themes not listed
// use glamour's background detection.
var glamourStyles = map[string]string{
	"dark":         "dark",
	"light":        "light",
	PlainThemeName: "notty",
}

// MarkdownService renders assistant replies for the terminal with glamour. Renderers are
// built lazily, one per glamour style.
type MarkdownService struct {
	mu          sync.Mutex
	initialized bool
	width       int
	renderers   map[string]*glamour.TermRenderer
}

// NewMarkdownService creates a renderer that wraps at width columns. A non-positive width
// uses DefaultMarkdownWidth.
func NewMarkdownService(width int) *MarkdownService {
	if width <= 0 {
		width = DefaultMarkdownWidth
	}
	return &MarkdownService{width: width, renderers: make(map[string]*glamour.TermRenderer)}
}

// Name returns the service name "markdown" for registration.
func (m *MarkdownService) Name() string {
	return "markdown"
}

// Initialize builds the auto-detecting renderer so a broken glamour setup fails at startup.
func (m *MarkdownService) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.renderer("auto"); err != nil {
		return err
	}
	m.initialized = true
	logger.Debug("Markdown renderer ready", "width", m.width)
	return nil
}

// RenderWithTheme renders markdown in the glamour style that goes with a MediWise theme.
func (m *MarkdownService) RenderWithTheme(markdown string, theme string) (string, error) {
	style, ok := glamourStyles[strings.ToLower(theme)]
	if !ok {
		style = "auto"
	}
	return m.RenderWithStyle(markdown, style)
}

// RenderWithStyle renders markdown with a glamour standard style such as "dark" or "notty".
// Styles glamour does not know fall back to "auto".
func (m *MarkdownService) RenderWithStyle(markdown string, style string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return "", ErrServiceNotInitialized
	}
	if strings.TrimSpace(markdown) == "" {
		return "", fmt.Errorf("markdown content cannot be empty")
	}

	r, err := m.renderer(style)
	if err != nil {
		logger.Debug("Unknown glamour style, using auto", "style", style, "error", err)
		if r, err = m.renderer("auto"); err != nil {
			return "", err
		}
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// renderer must be called with m.mu held.
func (m *MarkdownService) renderer(style string) (*glamour.TermRenderer, error) {
	if r, ok := m.renderers[style]; ok {
		return r, nil
	}

	styleOpt := glamour.WithStandardStyle(style)
	if style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(m.width))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	m.renderers[style] = r
	return r, nil
}
