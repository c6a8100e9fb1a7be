package validators

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"raven/domain/config"
	"raven/domain/core/schema"
)

// NodeValidator enforces domain-wide limits that apply to every node type,
// on top of the per-field rules of each schema
type NodeValidator struct {
	maxFields       int
	maxStringLength int
	maxListLength   int
	forbidden       []string
}

// NewNodeValidator creates a validator from domain configuration
func NewNodeValidator(cfg *config.DomainConfig) *NodeValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &NodeValidator{
		maxFields:       cfg.MaxFieldsPerNode,
		maxStringLength: cfg.MaxStringLength,
		maxListLength:   cfg.MaxListLength,
		forbidden:       []string{"<script>", "javascript:"},
	}
}

// ValidateProperties checks the full property set of a node
func (v *NodeValidator) ValidateProperties(nodeType string, props map[string]any) error {
	if len(props) > v.maxFields {
		return &schema.FieldError{
			NodeType: nodeType,
			Field:    "*",
			Reason:   schema.ReasonLimit,
			Err:      fmt.Errorf("at most %d fields allowed, got %d", v.maxFields, len(props)),
		}
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := v.validateValue(props[k]); err != nil {
			return &schema.FieldError{NodeType: nodeType, Field: k, Reason: schema.ReasonLimit, Err: err}
		}
	}
	return nil
}

func (v *NodeValidator) validateValue(value any) error {
	switch t := value.(type) {
	case string:
		return v.validateString(t)
	case []string:
		if len(t) > v.maxListLength {
			return fmt.Errorf("at most %d items allowed, got %d", v.maxListLength, len(t))
		}
		for _, s := range t {
			if err := v.validateString(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *NodeValidator) validateString(s string) error {
	if n := utf8.RuneCountInString(s); n > v.maxStringLength {
		return fmt.Errorf("at most %d characters allowed, got %d", v.maxStringLength, n)
	}

	// Check for potentially malicious content
	lower := strings.ToLower(s)
	for _, f := range v.forbidden {
		if strings.Contains(lower, f) {
			return fmt.Errorf("value contains potentially malicious content")
		}
	}
	return nil
}
