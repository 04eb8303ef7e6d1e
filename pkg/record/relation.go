package record

import (
	"errors"
	"fmt"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// Relation is implemented by struct fields that point at another object.
// Resolve returns the target, or an error wrapping
// [auditdiff.ErrRelatedObjectMissing] when it no longer exists.
type Relation interface {
	Resolve() (any, error)
}

// Ref is a reference to a related object of type T identified by Key.
// An unset Key is an empty relation and resolves to nil.
type Ref[T any] struct {
	Key    any
	Target *T
}

// To returns a reference pointing at target.
func To[T any](key any, target *T) Ref[T] {
	return Ref[T]{Key: key, Target: target}
}

// Dangling returns a reference whose target is gone.
func Dangling[T any](key any) Ref[T] {
	return Ref[T]{Key: key}
}

// Resolve returns a [Related] value carrying the key and the rendered target.
func (r Ref[T]) Resolve() (any, error) {
	if r.Key == nil {
		return nil, nil
	}
	if r.Target == nil {
		return nil, fmt.Errorf("%w: %v", auditdiff.ErrRelatedObjectMissing, r.Key)
	}
	return Related{Key: r.Key, Label: auditdiff.Text(r.Target)}, nil
}

// Related is the value of a resolved relation. It compares by Key and
// renders as Label, the text of the target at the time it was resolved.
type Related struct {
	Key   any
	Label string
}

var _ auditdiff.Identifier = Related{}

func (r Related) Identity() any {
	return r.Key
}

func (r Related) String() string {
	return r.Label
}

func isMissing(err error) bool {
	return errors.Is(err, auditdiff.ErrRelatedObjectMissing)
}
