// Package embedded holds the color themes compiled into the binary.
package embedded

import (
	"embed"
	"path"
	"sort"
	"strings"
)

//go:embed themes/*.yaml
var themes embed.FS

// ThemeNames lists the embedded themes, sorted.
func ThemeNames() []string {
	entries, _ := themes.ReadDir("themes")
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Theme returns the YAML source of the named theme.
func Theme(name string) ([]byte, error) {
	return themes.ReadFile(path.Join("themes", name+".yaml"))
}
