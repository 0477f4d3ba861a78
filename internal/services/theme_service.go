package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"mediwise/internal/data/embedded"
	"mediwise/internal/logger"
	"mediwise/internal/output"
	"mediwise/pkg/chattypes"
)

// PlainThemeName names the theme that leaves output unstyled.
const PlainThemeName = "plain"

// ThemeService loads the embedded color themes and resolves the one named in configuration.
type ThemeService struct {
	initialized bool
	themes      map[string]*Theme
}

// Theme maps output semantics to lipgloss styles. It implements output.StyleProvider.
type Theme struct {
	Name   string
	styles map[output.SemanticType]lipgloss.Style
}

// NewThemeService creates a ThemeService. Themes are parsed on Initialize.
func NewThemeService() *ThemeService {
	return &ThemeService{themes: make(map[string]*Theme)}
}

// Name returns the service name "theme" for registration.
func (t *ThemeService) Name() string {
	return "theme"
}

// Initialize parses every embedded theme. A theme that fails to parse is replaced by an
// unstyled one of the same name so a bad file never blocks startup.
func (t *ThemeService) Initialize() error {
	for _, name := range embedded.ThemeNames() {
		theme, err := loadTheme(name)
		if err != nil {
			logger.Error("Failed to load theme", "theme", name, "error", err)
			theme = &Theme{Name: name}
		}
		t.themes[name] = theme
	}
	if _, ok := t.themes[PlainThemeName]; !ok {
		t.themes[PlainThemeName] = &Theme{Name: PlainThemeName}
	}
	t.initialized = true
	return nil
}

func loadTheme(name string) (*Theme, error) {
	data, err := embedded.Theme(name)
	if err != nil {
		return nil, err
	}
	theme, err := parseTheme(data)
	if err != nil {
		return nil, err
	}
	theme.Name = name
	return theme, nil
}

func parseTheme(data []byte) (*Theme, error) {
	var config chattypes.ThemeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	theme := &Theme{Name: config.Name, styles: make(map[output.SemanticType]lipgloss.Style, len(config.Styles))}
	for semantic, style := range config.Styles {
		theme.styles[output.SemanticType(semantic)] = newStyle(style)
	}
	return theme, nil
}

func newStyle(config chattypes.StyleConfig) lipgloss.Style {
	style := lipgloss.NewStyle().
		Bold(config.Bold).
		Italic(config.Italic).
		Underline(config.Underline).
		Strikethrough(config.Strikethrough)

	if color := parseColor(config.Foreground); color != nil {
		style = style.Foreground(color)
	}
	if color := parseColor(config.Background); color != nil {
		style = style.Background(color)
	}
	return style
}

// parseColor accepts a color string or an adaptive {light, dark} map.
func parseColor(value interface{}) lipgloss.TerminalColor {
	switch v := value.(type) {
	case string:
		return lipgloss.Color(v)
	case map[string]interface{}:
		light, okLight := v["light"].(string)
		dark, okDark := v["dark"].(string)
		if okLight && okDark {
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
	}
	return nil
}

// GetAvailableThemes returns the sorted theme names, or none before Initialize.
func (t *ThemeService) GetAvailableThemes() []string {
	names := make([]string, 0, len(t.themes))
	for name := range t.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetThemeByName resolves a theme case-insensitively. It never fails: unknown names and
// terminals without color support get the plain theme.
func (t *ThemeService) GetThemeByName(name string) *Theme {
	plain := &Theme{Name: PlainThemeName}
	if !t.initialized {
		return plain
	}
	if p, ok := t.themes[PlainThemeName]; ok {
		plain = p
	}
	if !ColorsEnabled() {
		return plain
	}

	if theme, ok := t.themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return theme
	}
	if name != "" {
		logger.Debug("Unknown theme, using plain", "theme", name, "available", t.GetAvailableThemes())
	}
	return plain
}

// ColorsEnabled reports whether the terminal profile supports colors.
func ColorsEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}

// Style returns the lipgloss style for semantic. Semantics the theme does not define get
// an empty style.
func (t *Theme) Style(semantic output.SemanticType) lipgloss.Style {
	if style, ok := t.styles[semantic]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// GetStyle implements output.StyleProvider.
func (t *Theme) GetStyle(semantic string) output.TextStyle {
	style := t.Style(output.SemanticType(semantic))
	return output.StyleFunc(func(text string) string { return style.Render(text) })
}

// IsAvailable reports whether the theme styles text. The plain theme does not, so output
// keeps its text markers.
func (t *Theme) IsAvailable() bool {
	return t != nil && t.Name != PlainThemeName
}
