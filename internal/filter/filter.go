package filter

import (
	"fmt"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/loog-project/auditlog/internal/store"
)

// DefaultExpression accepts every entry.
const DefaultExpression = "All()"

// Env is the environment filter expressions are evaluated against.
type Env struct {
	Action    string
	Model     string
	ObjectKey string
	Actor     string
	Fields    []string
}

// NewEnv returns the environment describing [entry].
func NewEnv(entry *store.Entry) Env {
	return Env{
		Action:    entry.Action.String(),
		Model:     entry.Model,
		ObjectKey: entry.ObjectKey,
		Actor:     entry.Actor,
		Fields:    entry.Changes.Fields(),
	}
}

func (e Env) All() bool {
	return true
}

func (e Env) None() bool {
	return false
}

// Models matches entries of any of the given models.
func (e Env) Models(vals ...string) bool {
	if len(vals) == 0 {
		return true
	}
	return slices.Contains(vals, e.Model)
}

// Actions matches entries produced by any of the given actions.
func (e Env) Actions(vals ...string) bool {
	if len(vals) == 0 {
		return true
	}
	return slices.Contains(vals, e.Action)
}

// Changed matches entries where any of the given fields changed.
// Without arguments it matches entries that changed anything.
func (e Env) Changed(fields ...string) bool {
	if len(fields) == 0 {
		return len(e.Fields) > 0
	}
	for _, f := range fields {
		if slices.Contains(e.Fields, f) {
			return true
		}
	}
	return false
}

// Filter decides which entries are written to the history.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile compiles a boolean expression over [Env]. An empty source compiles
// [DefaultExpression].
func Compile(source string) (*Filter, error) {
	if source == "" {
		source = DefaultExpression
	}
	program, err := expr.Compile(source, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// MustCompile is like [Compile] but panics on error.
func MustCompile(source string) *Filter {
	f, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Filter) String() string {
	return f.source
}

// Match evaluates the filter for [entry].
func (f *Filter) Match(entry *store.Entry) (bool, error) {
	out, err := expr.Run(f.program, NewEnv(entry))
	if err != nil {
		return false, fmt.Errorf("run filter %q: %w", f.source, err)
	}
	return out.(bool), nil
}
