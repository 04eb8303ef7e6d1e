package auditdiff

// FieldConfig restricts which fields of a model take part in a diff.
// Include wins over Exclude: when both are set, Exclude is applied to the
// fields that Include kept.
type FieldConfig struct {
	Include []string `yaml:"include" json:"include,omitempty"`
	Exclude []string `yaml:"exclude" json:"exclude,omitempty"`
}

// IsZero reports whether the configuration filters nothing.
func (c FieldConfig) IsZero() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0
}

// FieldConfigLookup returns the field configuration of a model.
type FieldConfigLookup interface {
	// FieldConfig returns false when the model has no configuration.
	FieldConfig(model string) (FieldConfig, bool)
}

// FieldConfigFunc adapts an ordinary function to a [FieldConfigLookup].
type FieldConfigFunc func(model string) (FieldConfig, bool)

func (f FieldConfigFunc) FieldConfig(model string) (FieldConfig, bool) {
	return f(model)
}

// NoFieldConfig is a lookup without any configuration.
var NoFieldConfig FieldConfigLookup = FieldConfigFunc(func(string) (FieldConfig, bool) {
	return FieldConfig{}, false
})
