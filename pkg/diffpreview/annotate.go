package diffpreview

import (
	"strconv"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// ChangeType indicates how a field changed
type ChangeType int

const (
	Unchanged ChangeType = iota
	Added
	Removed
	Modified
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unchanged"
	}
}

// AnnotatedField is one changed field of a diff
type AnnotatedField struct {
	Name   string
	Change ChangeType
	Old    string
	New    string
}

// Annotate classifies the fields of [diff], sorted by name. A field whose old
// text is None was added, one whose new text is None was removed.
func Annotate(diff auditdiff.Diff) []AnnotatedField {
	fields := make([]AnnotatedField, 0, len(diff))
	for _, name := range diff.Fields() {
		c := diff[name]
		af := AnnotatedField{Name: name, Old: c.Old, New: c.New, Change: Modified}
		switch {
		case c.Old == c.New:
			af.Change = Unchanged
		case c.Old == auditdiff.NoneText:
			af.Change = Added
		case c.New == auditdiff.NoneText:
			af.Change = Removed
		}
		fields = append(fields, af)
	}
	return fields
}

// kindOf guesses the syntax kind of a rendered value
func kindOf(text string) string {
	switch text {
	case auditdiff.NoneText:
		return "null"
	case "true", "false":
		return "bool"
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return "number"
	}
	return "string"
}
