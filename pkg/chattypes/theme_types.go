package chattypes

// ThemeConfig is a color theme as stored in a theme YAML file. Styles is keyed by the
// semantic name of the element it styles ("user", "assistant", "error", ...); elements
// without an entry render unstyled.
type ThemeConfig struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description,omitempty"`
	Styles      map[string]StyleConfig `yaml:"styles"`
}

// StyleConfig describes how one element is drawn. A color is either a hex string or an
// adaptive {light, dark} pair picked by the terminal background.
type StyleConfig struct {
	Foreground    interface{} `yaml:"foreground,omitempty"`
	Background    interface{} `yaml:"background,omitempty"`
	Bold          bool        `yaml:"bold,omitempty"`
	Italic        bool        `yaml:"italic,omitempty"`
	Underline     bool        `yaml:"underline,omitempty"`
	Strikethrough bool        `yaml:"strikethrough,omitempty"`
}
