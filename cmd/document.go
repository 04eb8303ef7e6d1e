package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/loog-project/auditlog/internal/registry"
	"github.com/loog-project/auditlog/pkg/auditdiff"
	"github.com/loog-project/auditlog/pkg/record"
)

// absentDocument stands for a record that does not exist.
const absentDocument = "-"

// document is a record snapshot stored as YAML or JSON.
//
//	model: person
//	values:
//	  name: Alice
//	  age: 30
//	missing: [employer]
type document struct {
	Model   string         `yaml:"model"`
	Values  map[string]any `yaml:"values"`
	Missing []string       `yaml:"missing"`
}

// readDocument loads the snapshot at [path]. [absentDocument] or an empty
// path yield a nil record.
func readDocument(path string, reg *registry.Registry) (*record.Map, error) {
	if path == "" || path == absentDocument {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rec, err := parseDocument(data, reg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// parseDocument decodes a document. The field list comes from the registry
// when the model declares one there, otherwise from the document itself.
func parseDocument(data []byte, reg *registry.Registry) (*record.Map, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Model == "" {
		return nil, fmt.Errorf("%w: document has no model", auditdiff.ErrInvalidArgument)
	}

	model, ok := reg.Model(doc.Model)
	if !ok || len(model.Fields) == 0 {
		model = &auditdiff.Model{Name: doc.Model}
		names := slices.Sorted(maps.Keys(doc.Values))
		for _, name := range doc.Missing {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
		for _, name := range names {
			model.Fields = append(model.Fields, auditdiff.Field{Name: name})
		}
	}
	return &record.Map{Meta: model, Values: doc.Values, Missing: doc.Missing}, nil
}

// readPair loads the old and new snapshot.
func readPair(oldPath, newPath string, reg *registry.Registry) (auditdiff.Record, auditdiff.Record, error) {
	oldRec, err := readDocument(oldPath, reg)
	if err != nil {
		return nil, nil, err
	}
	newRec, err := readDocument(newPath, reg)
	if err != nil {
		return nil, nil, err
	}
	// keep absent snapshots as untyped nil
	var o, n auditdiff.Record
	if oldRec != nil {
		o = oldRec
	}
	if newRec != nil {
		n = newRec
	}
	return o, n, nil
}
