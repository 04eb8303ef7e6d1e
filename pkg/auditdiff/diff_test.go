package auditdiff_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// fakeRecord is a record whose values live in a map. Fields listed in
// dangling report a missing related object.
type fakeRecord struct {
	model    *auditdiff.Model
	values   map[string]any
	dangling map[string]bool
	failing  map[string]error
}

func (f *fakeRecord) Model() *auditdiff.Model { return f.model }

func (f *fakeRecord) Value(field string) (any, error) {
	if err, ok := f.failing[field]; ok {
		return nil, err
	}
	if f.dangling[field] {
		return nil, auditdiff.ErrRelatedObjectMissing
	}
	return f.values[field], nil
}

var personModel = &auditdiff.Model{
	Name: "person",
	Fields: []auditdiff.Field{
		{Name: "name"},
		{Name: "age"},
	},
}

func person(values map[string]any) *fakeRecord {
	return &fakeRecord{model: personModel, values: values}
}

func configFor(model string, cfg auditdiff.FieldConfig) auditdiff.FieldConfigLookup {
	return auditdiff.FieldConfigFunc(func(m string) (auditdiff.FieldConfig, bool) {
		return cfg, m == model
	})
}

func TestComputeScenarios(t *testing.T) {
	cases := []struct {
		name   string
		old    auditdiff.Record
		new    auditdiff.Record
		lookup auditdiff.FieldConfigLookup
		want   auditdiff.Diff
	}{
		{
			name: "creation",
			old:  nil,
			new:  person(map[string]any{"name": "Alice", "age": 30}),
			want: auditdiff.Diff{
				"name": {Old: "None", New: "Alice"},
				"age":  {Old: "None", New: "30"},
			},
		},
		{
			name: "deletion",
			old:  person(map[string]any{"name": "Alice", "age": 30}),
			new:  nil,
			want: auditdiff.Diff{
				"name": {Old: "Alice", New: "None"},
				"age":  {Old: "30", New: "None"},
			},
		},
		{
			name: "update",
			old:  person(map[string]any{"name": "Alice", "age": 30}),
			new:  person(map[string]any{"name": "Alice", "age": 31}),
			want: auditdiff.Diff{"age": {Old: "30", New: "31"}},
		},
		{
			name: "identical",
			old:  person(map[string]any{"name": "Alice", "age": 30}),
			new:  person(map[string]any{"name": "Alice", "age": 30}),
			want: nil,
		},
		{
			name:   "excluded field unchanged",
			old:    person(map[string]any{"name": "Alice"}),
			new:    person(map[string]any{"name": "Alice"}),
			lookup: configFor("person", auditdiff.FieldConfig{Exclude: []string{"name"}}),
			want:   nil,
		},
		{
			name: "both absent",
			want: nil,
		},
		{
			name:   "include list",
			old:    person(map[string]any{"name": "Alice", "age": 30}),
			new:    person(map[string]any{"name": "Bob", "age": 31}),
			lookup: configFor("person", auditdiff.FieldConfig{Include: []string{"age"}}),
			want:   auditdiff.Diff{"age": {Old: "30", New: "31"}},
		},
		{
			name:   "exclude list",
			old:    person(map[string]any{"name": "Alice", "age": 30}),
			new:    person(map[string]any{"name": "Bob", "age": 31}),
			lookup: configFor("person", auditdiff.FieldConfig{Exclude: []string{"age"}}),
			want:   auditdiff.Diff{"name": {Old: "Alice", New: "Bob"}},
		},
		{
			name: "include then exclude",
			old:  person(map[string]any{"name": "Alice", "age": 30}),
			new:  person(map[string]any{"name": "Bob", "age": 31}),
			lookup: configFor("person", auditdiff.FieldConfig{
				Include: []string{"name", "age"},
				Exclude: []string{"name"},
			}),
			want: auditdiff.Diff{"age": {Old: "30", New: "31"}},
		},
		{
			name:   "configuration of another model",
			old:    person(map[string]any{"name": "Alice"}),
			new:    person(map[string]any{"name": "Bob"}),
			lookup: configFor("invoice", auditdiff.FieldConfig{Exclude: []string{"name"}}),
			want:   auditdiff.Diff{"name": {Old: "Alice", New: "Bob"}},
		},
		{
			name:   "no configuration lookup",
			old:    person(map[string]any{"name": "Alice"}),
			new:    person(map[string]any{"name": "Bob"}),
			lookup: auditdiff.NoFieldConfig,
			want:   auditdiff.Diff{"name": {Old: "Alice", New: "Bob"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := auditdiff.Compute(tc.old, tc.new, tc.lookup)
			if err != nil {
				t.Fatalf("compute: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestComputeNeverReturnsEmptyMap(t *testing.T) {
	same := person(map[string]any{"name": "Alice", "age": 30})
	got, err := auditdiff.Compute(same, same, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil diff, got %#v", got)
	}
}

func TestComputeComparesNumbersByValue(t *testing.T) {
	cases := []struct {
		old, new any
	}{
		{30, 30.0},
		{30, int64(30)},
		{uint8(30), int32(30)},
	}
	for _, tc := range cases {
		old := person(map[string]any{"name": "Alice", "age": tc.old})
		cur := person(map[string]any{"name": "Alice", "age": tc.new})
		got, err := auditdiff.Compute(old, cur, nil)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if got != nil {
			t.Fatalf("%T(%v) vs %T(%v): want nil diff, got %#v", tc.old, tc.old, tc.new, tc.new, got)
		}
	}

	old := person(map[string]any{"age": 30})
	cur := person(map[string]any{"age": 30.5})
	got, _ := auditdiff.Compute(old, cur, nil)
	if want := (auditdiff.Diff{"age": {Old: "30", New: "30.5"}}); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestComputeIdempotent(t *testing.T) {
	old := person(map[string]any{"name": "Alice", "age": 30})
	cur := person(map[string]any{"name": "Alice", "age": 31})
	first, _ := auditdiff.Compute(old, cur, nil)
	second, _ := auditdiff.Compute(old, cur, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
}

func TestComputeSkipsLookupWhenBothAbsent(t *testing.T) {
	called := false
	lookup := auditdiff.FieldConfigFunc(func(string) (auditdiff.FieldConfig, bool) {
		called = true
		return auditdiff.FieldConfig{}, false
	})
	if _, err := auditdiff.Compute(nil, nil, lookup); err != nil {
		t.Fatalf("compute: %v", err)
	}
	if called {
		t.Fatal("lookup must not be consulted without records")
	}
}

func TestComputeUsesNewModelConfiguration(t *testing.T) {
	oldModel := &auditdiff.Model{Name: "person_v1", Fields: []auditdiff.Field{{Name: "name"}}}
	newModel := &auditdiff.Model{Name: "person_v2", Fields: []auditdiff.Field{{Name: "name"}, {Name: "email"}}}
	old := &fakeRecord{model: oldModel, values: map[string]any{"name": "Alice"}}
	cur := &fakeRecord{model: newModel, values: map[string]any{"name": "Bob", "email": "bob@example.com"}}

	var asked []string
	lookup := auditdiff.FieldConfigFunc(func(m string) (auditdiff.FieldConfig, bool) {
		asked = append(asked, m)
		return auditdiff.FieldConfig{}, false
	})
	got, err := auditdiff.Compute(old, cur, lookup)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if !reflect.DeepEqual(asked, []string{"person_v2"}) {
		t.Fatalf("lookup asked for %v", asked)
	}
	// union of both models: email only exists on the new one
	want := auditdiff.Diff{
		"name":  {Old: "Alice", New: "Bob"},
		"email": {Old: "None", New: "bob@example.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestComputeInvalidArgument(t *testing.T) {
	var typedNil *fakeRecord
	valid := person(map[string]any{"name": "Alice"})
	noModel := &fakeRecord{}

	cases := []struct {
		name     string
		old, new auditdiff.Record
	}{
		{"typed nil old", typedNil, valid},
		{"typed nil new", valid, typedNil},
		{"missing model", noModel, nil},
		{"unnamed model", &fakeRecord{model: &auditdiff.Model{}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auditdiff.Compute(tc.old, tc.new, nil)
			if !errors.Is(err, auditdiff.ErrInvalidArgument) {
				t.Fatalf("want ErrInvalidArgument, got %v", err)
			}
		})
	}
}

// The old side falls back to the declared default on a dangling relation,
// the new side does not. This mirrors the behavior of the audit log this
// package replaces and is kept as documented, not endorsed, behavior.
func TestComputeDanglingRelationAsymmetry(t *testing.T) {
	model := &auditdiff.Model{
		Name: "book",
		Fields: []auditdiff.Field{
			{Name: "title"},
			{Name: "author", Default: "anonymous"},
			{Name: "editor"},
		},
	}

	t.Run("new side resolves to nil", func(t *testing.T) {
		old := &fakeRecord{model: model, values: map[string]any{"title": "Go"}}
		cur := &fakeRecord{
			model:    model,
			values:   map[string]any{"title": "Go"},
			dangling: map[string]bool{"editor": true},
		}
		got, err := auditdiff.Compute(old, cur, nil)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if got != nil {
			t.Fatalf("dangling relation with nil old value must not show up, got %v", got)
		}
	})

	t.Run("old side resolves to default", func(t *testing.T) {
		old := &fakeRecord{
			model:    model,
			values:   map[string]any{"title": "Go"},
			dangling: map[string]bool{"author": true, "editor": true},
		}
		cur := &fakeRecord{model: model, values: map[string]any{"title": "Go", "author": "anonymous"}}
		got, err := auditdiff.Compute(old, cur, nil)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if got != nil {
			t.Fatalf("default should match the new value, got %v", got)
		}
	})

	t.Run("both sides dangling", func(t *testing.T) {
		dangling := map[string]bool{"author": true}
		old := &fakeRecord{model: model, dangling: dangling}
		cur := &fakeRecord{model: model, dangling: dangling}
		got, err := auditdiff.Compute(old, cur, nil)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		want := auditdiff.Diff{"author": {Old: "anonymous", New: "None"}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("want %v, got %v", want, got)
		}
	})
}

func TestComputePropagatesProviderErrors(t *testing.T) {
	boom := errors.New("connection reset")
	cur := &fakeRecord{
		model:   personModel,
		values:  map[string]any{"name": "Alice"},
		failing: map[string]error{"age": boom},
	}
	_, err := auditdiff.Compute(nil, cur, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("want provider error, got %v", err)
	}
}

func TestDiffFields(t *testing.T) {
	d := auditdiff.Diff{"b": {}, "a": {}, "c": {}}
	if got := d.Fields(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("fields: %v", got)
	}
	if !d.Has("a") || d.Has("z") {
		t.Fatal("Has mismatch")
	}
	var none auditdiff.Diff
	if none.Fields() != nil {
		t.Fatal("nil diff should have no fields")
	}
}

func BenchmarkCompute_Update(b *testing.B) {
	old := person(map[string]any{"name": "Alice", "age": 30})
	cur := person(map[string]any{"name": "Alice", "age": 31})
	for i := 0; i < b.N; i++ {
		_, _ = auditdiff.Compute(old, cur, nil)
	}
}
