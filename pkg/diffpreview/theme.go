package diffpreview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme styles a rendered diff. Field names and values are styled by their
// syntax kind ("key", "string", "number", "bool" or "null"), lines by how
// the field changed. Missing entries render unstyled.
type Theme struct {
	Name    string
	Syntax  map[string]lipgloss.Style
	Changes map[ChangeType]lipgloss.Style
}

// PlainTheme renders without any styling.
var PlainTheme = Theme{Name: "plain"}

var DarkTheme = Theme{
	Name: "dark",
	Syntax: map[string]lipgloss.Style{
		"key":    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Bold(true),
		"string": lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")),
		"number": lipgloss.NewStyle().Foreground(lipgloss.Color("#D19A66")),
		"bool":   lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		"null":   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true),
	},
	Changes: map[ChangeType]lipgloss.Style{
		Added:    lipgloss.NewStyle().Background(lipgloss.Color("#144212")).Foreground(lipgloss.Color("#A9DC76")),
		Removed:  lipgloss.NewStyle().Background(lipgloss.Color("#4C1F1F")).Foreground(lipgloss.Color("#E06C75")),
		Modified: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	},
}

var LightTheme = Theme{
	Name: "light",
	Syntax: map[string]lipgloss.Style{
		"key":    lipgloss.NewStyle().Foreground(lipgloss.Color("#383A42")).Bold(true),
		"string": lipgloss.NewStyle().Foreground(lipgloss.Color("#4078F2")),
		"number": lipgloss.NewStyle().Foreground(lipgloss.Color("#986801")),
		"bool":   lipgloss.NewStyle().Foreground(lipgloss.Color("#A626A4")),
		"null":   lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A1A7")).Italic(true),
	},
	Changes: map[ChangeType]lipgloss.Style{
		Added:    lipgloss.NewStyle().Background(lipgloss.Color("#E6FFEC")).Foreground(lipgloss.Color("#22863A")),
		Removed:  lipgloss.NewStyle().Background(lipgloss.Color("#FFEEF0")).Foreground(lipgloss.Color("#CB2431")),
		Modified: lipgloss.NewStyle().Foreground(lipgloss.Color("#B08800")),
	},
}

var themes = []Theme{DarkTheme, LightTheme, PlainTheme}

// ThemeNames lists the names accepted by [ThemeByName].
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// ThemeByName returns the built-in theme called [name].
func ThemeByName(name string) (Theme, error) {
	i := slices.IndexFunc(themes, func(t Theme) bool { return t.Name == name })
	if i < 0 {
		return Theme{}, fmt.Errorf("unknown theme %q, want one of: %s",
			name, strings.Join(ThemeNames(), ", "))
	}
	return themes[i], nil
}

func (t Theme) SyntaxHighlight(kind string, content string) string {
	if style, ok := t.Syntax[kind]; ok {
		return style.Render(content)
	}
	return content
}

func (t Theme) BackgroundHighlight(change ChangeType, content string) string {
	if style, ok := t.Changes[change]; ok {
		return style.Render(content)
	}
	return content
}
