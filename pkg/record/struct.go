package record

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// Modeler lets a struct choose its model name instead of the snake_cased
// type name.
type Modeler interface {
	AuditModel() string
}

// structMeta is the cached model of a struct type.
type structMeta struct {
	model *auditdiff.Model
	index map[string][]int
}

var metaCache sync.Map // reflect.Type -> *structMeta

type structRecord struct {
	value reflect.Value
	meta  *structMeta
}

// Struct returns a record reading the exported fields of the struct [v]
// points to. Fields are named after the snake_cased Go name unless tagged:
//
//	Title  string `audit:"headline"`
//	Secret string `audit:"-"`
//	Pages  int    `audit:",default=1"`
//
// Fields holding a [Relation] are resolved on access.
func Struct(v any) (auditdiff.Record, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T is not a non-nil pointer to a struct", auditdiff.ErrInvalidArgument, v)
	}
	meta, err := metaFor(rv.Elem().Type(), v)
	if err != nil {
		return nil, err
	}
	return &structRecord{value: rv.Elem(), meta: meta}, nil
}

// MustStruct is like [Struct] but panics on error.
func MustStruct(v any) auditdiff.Record {
	r, err := Struct(v)
	if err != nil {
		panic(err)
	}
	return r
}

func (s *structRecord) Model() *auditdiff.Model {
	return s.meta.model
}

func (s *structRecord) Value(field string) (any, error) {
	idx, ok := s.meta.index[field]
	if !ok {
		return nil, nil
	}
	fv, err := s.value.FieldByIndexErr(idx)
	if err != nil {
		// nil embedded pointer
		return nil, nil
	}
	if fv.Kind() == reflect.Pointer && fv.IsNil() {
		return nil, nil
	}
	v := fv.Interface()
	if rel, ok := v.(Relation); ok {
		return rel.Resolve()
	}
	return v, nil
}

func metaFor(t reflect.Type, v any) (*structMeta, error) {
	if cached, ok := metaCache.Load(t); ok {
		return cached.(*structMeta), nil
	}

	name := snakeCase(t.Name())
	if m, ok := v.(Modeler); ok {
		name = m.AuditModel()
	}
	meta := &structMeta{
		model: &auditdiff.Model{Name: name},
		index: make(map[string][]int),
	}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			continue // promoted fields are listed on their own
		}
		tag, hasTag := sf.Tag.Lookup("audit")
		if tag == "-" {
			continue
		}
		fieldName, opts, _ := strings.Cut(tag, ",")
		if fieldName == "" {
			fieldName = snakeCase(sf.Name)
		}
		if _, dup := meta.index[fieldName]; dup {
			if hasTag {
				return nil, fmt.Errorf("%s: duplicate audit field %q", t, fieldName)
			}
			continue
		}

		field := auditdiff.Field{Name: fieldName}
		if raw, ok := strings.CutPrefix(opts, "default="); ok {
			def, err := parseDefault(sf.Type, raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t, sf.Name, err)
			}
			field.Default = def
		}
		meta.model.Fields = append(meta.model.Fields, field)
		meta.index[fieldName] = sf.Index
	}

	actual, _ := metaCache.LoadOrStore(t, meta)
	return actual.(*structMeta), nil
}

// parseDefault converts a tag default to the kind of the field. Kinds that
// have no literal form keep the raw string.
func parseDefault(t reflect.Type, raw string) (any, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid default %q: %w", raw, err)
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid default %q: %w", raw, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid default %q: %w", raw, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid default %q: %w", raw, err)
		}
		out.SetFloat(f)
	default:
		return raw, nil
	}
	return out.Interface(), nil
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
