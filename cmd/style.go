package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/loog-project/auditlog/internal/store"
	"github.com/loog-project/auditlog/pkg/auditdiff"
)

const (
	purple    = lipgloss.Color("99")
	orange    = lipgloss.Color("214")
	gray      = lipgloss.Color("245")
	lightGray = lipgloss.Color("241")
	green     = lipgloss.Color("2")
	red       = lipgloss.Color("1")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Align(lipgloss.Center)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)
	OddRowStyle = CellStyle.
			Foreground(gray)
	EvenRowStyle = CellStyle.
			Foreground(lightGray)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lightGray).
			Italic(true)

	ActionStyles = map[store.Action]lipgloss.Style{
		store.ActionCreate: lipgloss.NewStyle().Foreground(green).Bold(true),
		store.ActionUpdate: lipgloss.NewStyle().Foreground(orange).Bold(true),
		store.ActionDelete: lipgloss.NewStyle().Foreground(red).Bold(true),
	}
)

func tableStyleFunc(row, _ int) lipgloss.Style {
	switch {
	case row == table.HeaderRow:
		return HeaderStyle
	case row%2 == 0:
		return EvenRowStyle
	default:
		return OddRowStyle
	}
}

func renderAction(a store.Action) string {
	if style, ok := ActionStyles[a]; ok {
		return style.Render(a.String())
	}
	return a.String()
}

// changesTable renders one row per changed field, sorted by field name.
func changesTable(diff auditdiff.Diff) *table.Table {
	t := table.New().
		StyleFunc(tableStyleFunc).
		Headers("FIELD", "OLD", "NEW")
	for _, name := range diff.Fields() {
		change := diff[name]
		t.Row(name, change.Old, change.New)
	}
	return t
}
