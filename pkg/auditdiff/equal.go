package auditdiff

import (
	"reflect"
	"time"
)

// Identifier is implemented by values that stand for another object, such as
// a reference to a related record. Two identifiers are equal when their
// identities are.
type Identifier interface {
	Identity() any
}

// Equal reports whether two field values are the same.
//
// Numbers are compared by value regardless of their Go type, so 30, int64(30)
// and 30.0 are equal. Nil pointers equal nil, empty slices and maps equal
// their nil counterparts, and everything else falls back to
// [reflect.DeepEqual].
func Equal(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case time.Time:
		vb, ok := b.(time.Time)
		return ok && va.Equal(vb)
	case Identifier:
		vb, ok := b.(Identifier)
		return ok && Equal(va.Identity(), vb.Identity())
	}

	if na, ok := asNumber(a); ok {
		nb, ok := asNumber(b)
		return ok && na.equal(nb)
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() == rb.Type() {
		switch ra.Kind() {
		case reflect.Slice, reflect.Map:
			if ra.Len() == 0 && rb.Len() == 0 {
				return true
			}
		}
	}
	return reflect.DeepEqual(a, b)
}

// number holds any Go integer, unsigned or float value.
type number struct {
	kind reflect.Kind // reflect.Int, reflect.Uint or reflect.Float64
	i    int64
	u    uint64
	f    float64
}

func asNumber(v any) (number, bool) {
	switch n := v.(type) {
	case int:
		return number{kind: reflect.Int, i: int64(n)}, true
	case int64:
		return number{kind: reflect.Int, i: n}, true
	case float64:
		return number{kind: reflect.Float64, f: n}, true
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return number{kind: reflect.Int, i: rv.Int()}, true
	case rv.CanUint():
		return number{kind: reflect.Uint, u: rv.Uint()}, true
	case rv.CanFloat():
		return number{kind: reflect.Float64, f: rv.Float()}, true
	}
	return number{}, false
}

func (n number) float() float64 {
	switch n.kind {
	case reflect.Int:
		return float64(n.i)
	case reflect.Uint:
		return float64(n.u)
	}
	return n.f
}

func (n number) equal(m number) bool {
	switch {
	case n.kind == reflect.Float64 || m.kind == reflect.Float64:
		return n.float() == m.float()
	case n.kind == m.kind:
		return n.i == m.i && n.u == m.u
	case n.kind == reflect.Int:
		return n.i >= 0 && uint64(n.i) == m.u
	default:
		return m.i >= 0 && uint64(m.i) == n.u
	}
}
