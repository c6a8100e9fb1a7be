package schema

import (
	"fmt"
	"sort"

	"raven/domain/core/valueobjects"
	"raven/pkg/utils"
)

// NodeSchema lists the fields a node type allows.
// A schema is treated as immutable once registered.
type NodeSchema struct {
	Type   string
	Fields map[string]FieldDef
}

// NewNodeSchema builds a schema from field definitions
func NewNodeSchema(nodeType string, fields ...FieldDef) *NodeSchema {
	s := &NodeSchema{Type: nodeType, Fields: make(map[string]FieldDef, len(fields))}
	for _, f := range fields {
		s.Fields[f.Name] = f
	}
	return s
}

// Validate checks the schema definition itself
func (s *NodeSchema) Validate() error {
	if _, err := valueobjects.NewNodeType(s.Type); err != nil {
		return err
	}
	for name, f := range s.Fields {
		if name == "" || name != f.Name {
			return fmt.Errorf("schema %s: field name mismatch %q", s.Type, name)
		}
		if IsReserved(name) {
			return fmt.Errorf("schema %s: field %q is reserved", s.Type, name)
		}
		if _, err := ParseFieldKind(string(f.Kind)); err != nil {
			return fmt.Errorf("schema %s: field %s: %w", s.Type, name, err)
		}
		if err := utils.CheckTag(f.Validate, f.Kind.zero()); err != nil {
			return fmt.Errorf("schema %s: field %s: %w", s.Type, name, err)
		}
	}
	return nil
}

// FieldNames returns the declared field names in sorted order
func (s *NodeSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateFields checks a complete field set for a new node. Nil values for
// optional fields are dropped. The returned map holds canonical values.
func (s *NodeSchema) ValidateFields(fields map[string]any) (map[string]any, error) {
	out, err := s.validate(fields, false)
	if err != nil {
		return nil, err
	}
	for _, name := range s.FieldNames() {
		if def := s.Fields[name]; def.Required {
			if _, ok := out[name]; !ok {
				return nil, &FieldError{NodeType: s.Type, Field: name, Reason: ReasonRequired}
			}
		}
	}
	return out, nil
}

// ValidateChanges checks a partial update. A nil value clears an optional field
// and is kept in the result as nil so the caller can remove it.
func (s *NodeSchema) ValidateChanges(changes map[string]any) (map[string]any, error) {
	return s.validate(changes, true)
}

// Coerce converts a single stored value to the field's canonical type
func (s *NodeSchema) Coerce(field string, value any) (any, error) {
	def, ok := s.Fields[field]
	if !ok {
		return nil, &FieldError{NodeType: s.Type, Field: field, Reason: ReasonUnknown}
	}
	v, err := coerce(def.Kind, value)
	if err != nil {
		return nil, &FieldError{NodeType: s.Type, Field: field, Reason: ReasonKind, Err: err}
	}
	return v, nil
}

func (s *NodeSchema) validate(input map[string]any, keepNil bool) (map[string]any, error) {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(input))
	for _, key := range keys {
		value := input[key]
		if IsReserved(key) {
			return nil, &FieldError{NodeType: s.Type, Field: key, Reason: ReasonReserved}
		}
		def, ok := s.Fields[key]
		if !ok {
			return nil, &FieldError{NodeType: s.Type, Field: key, Reason: ReasonUnknown}
		}
		if value == nil {
			if def.Required {
				return nil, &FieldError{NodeType: s.Type, Field: key, Reason: ReasonRequired}
			}
			if keepNil {
				out[key] = nil
			}
			continue
		}
		v, err := coerce(def.Kind, value)
		if err != nil {
			return nil, &FieldError{NodeType: s.Type, Field: key, Reason: ReasonKind, Err: err}
		}
		if err := utils.ValidateVar(key, v, def.Validate); err != nil {
			return nil, &FieldError{NodeType: s.Type, Field: key, Reason: ReasonRule, Err: err}
		}
		out[key] = v
	}
	return out, nil
}
