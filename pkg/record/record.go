// Package record provides [auditdiff.Record] implementations backed by Go
// structs and plain maps.
package record

import (
	"maps"
	"slices"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// Map is a record whose values are held in a map.
// Field names listed in Missing behave like relations whose target is gone.
type Map struct {
	Meta    *auditdiff.Model
	Values  map[string]any
	Missing []string
}

var _ auditdiff.Record = (*Map)(nil)

// NewMap returns a map record for the given model. When the model declares
// no fields, the keys of values are used in sorted order.
func NewMap(model *auditdiff.Model, values map[string]any) *Map {
	if model != nil && len(model.Fields) == 0 && len(values) > 0 {
		derived := &auditdiff.Model{Name: model.Name}
		for _, name := range slices.Sorted(maps.Keys(values)) {
			derived.Fields = append(derived.Fields, auditdiff.Field{Name: name})
		}
		model = derived
	}
	return &Map{Meta: model, Values: values}
}

func (m *Map) Model() *auditdiff.Model {
	return m.Meta
}

func (m *Map) Value(field string) (any, error) {
	if slices.Contains(m.Missing, field) {
		return nil, auditdiff.ErrRelatedObjectMissing
	}
	return m.Values[field], nil
}

// Freeze copies the current values of [r] into a [Map], so later changes to
// the source no longer show up. Dangling relations stay dangling. A nil
// record freezes to nil.
func Freeze(r auditdiff.Record) (*Map, error) {
	if r == nil {
		return nil, nil
	}
	if m, ok := r.(*Map); ok && m == nil {
		return nil, nil
	}
	model := r.Model()
	if model == nil {
		return nil, auditdiff.ErrInvalidArgument
	}
	frozen := &Map{
		Meta:   model,
		Values: make(map[string]any, len(model.Fields)),
	}
	for _, f := range model.Fields {
		v, err := r.Value(f.Name)
		if err != nil {
			if isMissing(err) {
				frozen.Missing = append(frozen.Missing, f.Name)
				continue
			}
			return nil, err
		}
		frozen.Values[f.Name] = v
	}
	return frozen, nil
}
