package schema

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// fileSchema is the YAML layout:
//
//	types:
//	  Person:
//	    fields:
//	      name: {kind: string, required: true, validate: "min=1"}
type fileSchema struct {
	Types map[string]struct {
		Fields map[string]struct {
			Kind     string `yaml:"kind"`
			Required bool   `yaml:"required"`
			Validate string `yaml:"validate"`
		} `yaml:"fields"`
	} `yaml:"types"`
}

// LoadYAML decodes and validates schemas from r, sorted by type
func LoadYAML(r io.Reader) ([]*NodeSchema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc fileSchema
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode schema file: %w", err)
	}

	names := make([]string, 0, len(doc.Types))
	for name := range doc.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make([]*NodeSchema, 0, len(names))
	for _, name := range names {
		s := &NodeSchema{Type: name, Fields: make(map[string]FieldDef)}
		for fieldName, f := range doc.Types[name].Fields {
			kind, err := ParseFieldKind(f.Kind)
			if err != nil {
				return nil, fmt.Errorf("schema %s: field %s: %w", name, fieldName, err)
			}
			s.Fields[fieldName] = FieldDef{
				Name:     fieldName,
				Kind:     kind,
				Required: f.Required,
				Validate: f.Validate,
			}
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// LoadFile reads schemas from a YAML file
func LoadFile(path string) ([]*NodeSchema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()

	return LoadYAML(f)
}
