// Package diffpreview renders field diffs as a colored, YAML-like view.
package diffpreview

import "github.com/loog-project/auditlog/pkg/auditdiff"

// Render renders a YAML-like view of [diff].
func Render(diff auditdiff.Diff, theme Theme) string {
	return RenderWithOptions(diff, theme, DefaultRenderOptions)
}

// RenderWithOptions renders a YAML-like view of [diff] with custom options.
func RenderWithOptions(diff auditdiff.Diff, theme Theme, opts RenderOptions) string {
	return RenderYAML(Annotate(diff), theme, opts)
}
