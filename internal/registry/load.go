package registry

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/loog-project/auditlog/pkg/auditdiff"
)

// File is the on-disk registry format.
//
//	models:
//	  - name: person
//	    exclude: [updated_at]
//	    fields:
//	      - name: name
//	      - name: age
//	        default: 0
type File struct {
	Models []ModelSpec `yaml:"models" validate:"unique=Name,dive"`
}

type ModelSpec struct {
	Name    string      `yaml:"name" validate:"required"`
	Include []string    `yaml:"include" validate:"unique,dive,required"`
	Exclude []string    `yaml:"exclude" validate:"unique,dive,required"`
	Fields  []FieldSpec `yaml:"fields" validate:"unique=Name,dive"`
}

type FieldSpec struct {
	Name    string `yaml:"name" validate:"required"`
	Default any    `yaml:"default"`
}

var validate = validator.New()

// Load parses and validates a registry file. An empty input yields an empty
// registry.
func Load(r io.Reader) (*Registry, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("registry validation failed: %w", err)
	}

	reg := New()
	for _, m := range file.Models {
		opts := Options{Include: m.Include, Exclude: m.Exclude}
		for _, f := range m.Fields {
			opts.Fields = append(opts.Fields, auditdiff.Field{Name: f.Name, Default: f.Default})
		}
		if err := reg.Register(m.Name, opts); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFile reads the registry file at [path].
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}
