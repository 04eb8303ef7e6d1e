// Package auditdiff computes the field-level difference between two
// snapshots of a record, as stored in an audit log history entry.
//
// A record is anything implementing [Record]. Either snapshot may be nil,
// which stands for "did not exist" (a creation or a deletion). The result is
// a [Diff] that maps every changed field to the text of its old and new value,
// or nil when nothing changed.
package auditdiff

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidArgument is returned by [Compute] when a non-nil snapshot is
	// not a usable record.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRelatedObjectMissing is returned by [Record.Value] when a relational
	// field points at an object that no longer exists.
	ErrRelatedObjectMissing = errors.New("related object missing")
)

// NoneText is the text stored for a nil value.
const NoneText = "None"

// Field describes a single field of a [Model].
type Field struct {
	Name string
	// Default is the declared default value, nil when the field declares none.
	Default any
}

// Model is the kind of a record together with the fields it declares.
type Model struct {
	Name   string
	Fields []Field
}

// Field returns the descriptor with the given name.
func (m *Model) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Record is one persisted object at a point in time.
type Record interface {
	// Model returns the kind of the record and its declared fields.
	Model() *Model
	// Value returns the current value of the named field. Relational fields
	// whose target is gone return an error wrapping [ErrRelatedObjectMissing].
	// Fields the record does not declare yield nil.
	Value(field string) (any, error)
}

// Change holds the text of a field before and after.
type Change struct {
	Old string `msgpack:"o" json:"old" yaml:"old"`
	New string `msgpack:"n" json:"new" yaml:"new"`
}

// Diff maps changed field names to their [Change].
// A nil Diff means there is no difference.
type Diff map[string]Change

// Has reports whether the named field changed.
func (d Diff) Has(field string) bool {
	_, ok := d[field]
	return ok
}

// Fields returns the changed field names in sorted order.
func (d Diff) Fields() []string {
	if len(d) == 0 {
		return nil
	}
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
