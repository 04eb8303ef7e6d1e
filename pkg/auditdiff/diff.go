package auditdiff

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// Compute returns the fields that differ between [oldRec] and [newRec].
//
// Either record may be nil: a nil old record is a creation, a nil new record a
// deletion, and every field holding a value shows up as changed. When both are
// given the fields of both models are compared. The field configuration of the
// model (the new record's if present) restricts which fields are considered;
// a nil [lookup] disables filtering.
//
// Compute returns nil when no field changed, never an empty map.
func Compute(oldRec, newRec Record, lookup FieldConfigLookup) (Diff, error) {
	if err := validate(oldRec); err != nil {
		return nil, fmt.Errorf("old record: %w", err)
	}
	if err := validate(newRec); err != nil {
		return nil, fmt.Errorf("new record: %w", err)
	}

	var (
		fields []Field
		model  *Model
	)
	switch {
	case oldRec != nil && newRec != nil:
		model = newRec.Model()
		fields = unionFields(oldRec.Model().Fields, model.Fields)
	case oldRec != nil:
		model = oldRec.Model()
		fields = model.Fields
	case newRec != nil:
		model = newRec.Model()
		fields = model.Fields
	default:
		return nil, nil
	}

	if lookup != nil && len(fields) > 0 {
		if cfg, ok := lookup.FieldConfig(model.Name); ok && !cfg.IsZero() {
			fields = filterFields(fields, cfg)
		}
	}

	var diff Diff
	for _, field := range fields {
		oldValue, err := resolveOld(oldRec, field)
		if err != nil {
			return nil, err
		}
		newValue, err := resolveNew(newRec, field)
		if err != nil {
			return nil, err
		}
		if Equal(oldValue, newValue) {
			continue
		}
		if diff == nil {
			diff = make(Diff)
		}
		diff[field.Name] = Change{Old: Text(oldValue), New: Text(newValue)}
	}
	return diff, nil
}

// validate rejects records that cannot describe themselves.
func validate(r Record) error {
	if r == nil {
		return nil
	}
	if isNil(r) {
		return fmt.Errorf("%w: %T is nil", ErrInvalidArgument, r)
	}
	if m := r.Model(); m == nil || m.Name == "" {
		return fmt.Errorf("%w: %T does not describe a model", ErrInvalidArgument, r)
	}
	return nil
}

// resolveOld falls back to the declared default when a relation is dangling.
func resolveOld(r Record, field Field) (any, error) {
	if r == nil {
		return nil, nil
	}
	v, err := r.Value(field.Name)
	if err != nil {
		if errors.Is(err, ErrRelatedObjectMissing) {
			return field.Default, nil
		}
		return nil, fmt.Errorf("resolve old %s: %w", field.Name, err)
	}
	return v, nil
}

// resolveNew treats a dangling relation as nil. Unlike resolveOld it does not
// look at the declared default.
func resolveNew(r Record, field Field) (any, error) {
	if r == nil {
		return nil, nil
	}
	v, err := r.Value(field.Name)
	if err != nil {
		if errors.Is(err, ErrRelatedObjectMissing) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve new %s: %w", field.Name, err)
	}
	return v, nil
}

// unionFields merges two field lists by name, keeping the order of [a].
func unionFields(a, b []Field) []Field {
	out := slices.Clone(a)
	for _, f := range b {
		if !slices.ContainsFunc(out, func(g Field) bool { return g.Name == f.Name }) {
			out = append(out, f)
		}
	}
	return out
}

func filterFields(fields []Field, cfg FieldConfig) []Field {
	out := fields
	if len(cfg.Include) > 0 {
		out = nil
		for _, f := range fields {
			if slices.Contains(cfg.Include, f.Name) {
				out = append(out, f)
			}
		}
	}
	if len(cfg.Exclude) > 0 {
		out = slices.DeleteFunc(slices.Clone(out), func(f Field) bool {
			return slices.Contains(cfg.Exclude, f.Name)
		})
	}
	return out
}

// isNil reports whether v is nil or a nil pointer hidden in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
