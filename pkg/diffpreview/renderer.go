package diffpreview

import (
	"strconv"
	"strings"
)

type RenderOptions struct {
	IndentSize                int
	EnableBackgroundHighlight bool
}

var DefaultRenderOptions = RenderOptions{
	IndentSize:                2,
	EnableBackgroundHighlight: true,
}

func RenderYAML(fields []AnnotatedField, theme Theme, opts RenderOptions) string {
	var sb strings.Builder
	space := strings.Repeat(" ", opts.IndentSize)

	for _, field := range fields {
		keyStr := theme.SyntaxHighlight("key", field.Name) + ":"
		if opts.EnableBackgroundHighlight {
			keyStr = theme.BackgroundHighlight(field.Change, keyStr)
		}
		sb.WriteString(keyStr + "\n")

		switch field.Change {
		case Added:
			renderLine(&sb, space, "+", field.New, Added, theme, opts)
		case Removed:
			renderLine(&sb, space, "-", field.Old, Removed, theme, opts)
		case Modified:
			renderLine(&sb, space, "-", field.Old, Removed, theme, opts)
			renderLine(&sb, space, "+", field.New, Added, theme, opts)
		default:
			renderLine(&sb, space, " ", field.New, Unchanged, theme, opts)
		}
	}
	return sb.String()
}

func renderLine(
	sb *strings.Builder,
	space, marker, text string,
	change ChangeType,
	theme Theme,
	opts RenderOptions,
) {
	kind := kindOf(text)
	if kind == "string" {
		text = strconv.Quote(text)
	}
	content := marker + " " + theme.SyntaxHighlight(kind, text)
	content = maybeHighlightBackground(content, change, theme, opts)
	sb.WriteString(space + content + "\n")
}

func maybeHighlightBackground(content string, change ChangeType, theme Theme, opts RenderOptions) string {
	if opts.EnableBackgroundHighlight {
		return theme.BackgroundHighlight(change, content)
	}
	return content
}
