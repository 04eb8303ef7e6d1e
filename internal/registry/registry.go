package registry

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

var ErrEmptyModelName = errors.New("model name must not be empty")

// Options configures how a registered model is tracked.
type Options struct {
	Include []string
	Exclude []string
	// Fields optionally declares the model's fields and their defaults for
	// records that cannot describe themselves (documents, maps).
	Fields []auditdiff.Field
}

// Registry holds the models that are tracked by the audit log.
// It is safe for concurrent use.
type Registry struct {
	mutex  sync.RWMutex
	models map[string]Options
}

var _ auditdiff.FieldConfigLookup = (*Registry)(nil)

// New returns an empty registry.
func New() *Registry {
	return &Registry{models: make(map[string]Options)}
}

// Register starts tracking [model], replacing any earlier registration.
func (r *Registry) Register(model string, opts Options) error {
	if model == "" {
		return ErrEmptyModelName
	}
	opts.Include = slices.Clone(opts.Include)
	opts.Exclude = slices.Clone(opts.Exclude)
	opts.Fields = slices.Clone(opts.Fields)

	r.mutex.Lock()
	r.models[model] = opts
	r.mutex.Unlock()
	return nil
}

// Unregister stops tracking [model]. It returns false if it was not tracked.
func (r *Registry) Unregister(model string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.models[model]; !ok {
		return false
	}
	delete(r.models, model)
	return true
}

// Contains reports whether [model] is tracked.
func (r *Registry) Contains(model string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.models[model]
	return ok
}

// Models returns the tracked model names in sorted order.
func (r *Registry) Models() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return slices.Sorted(maps.Keys(r.models))
}

// FieldConfig returns the include and exclude lists of [model].
func (r *Registry) FieldConfig(model string) (auditdiff.FieldConfig, bool) {
	r.mutex.RLock()
	opts, ok := r.models[model]
	r.mutex.RUnlock()
	if !ok {
		return auditdiff.FieldConfig{}, false
	}
	return auditdiff.FieldConfig{
		Include: slices.Clone(opts.Include),
		Exclude: slices.Clone(opts.Exclude),
	}, true
}

// Model returns the declared model. The result has no fields when the
// registration declared none.
func (r *Registry) Model(name string) (*auditdiff.Model, bool) {
	r.mutex.RLock()
	opts, ok := r.models[name]
	r.mutex.RUnlock()
	if !ok {
		return nil, false
	}
	return &auditdiff.Model{Name: name, Fields: slices.Clone(opts.Fields)}, true
}
