package schema

import (
	"errors"
	"fmt"
	"time"
)

// FieldKind is the value kind a schema field accepts
type FieldKind string

const (
	KindString     FieldKind = "string"
	KindInt        FieldKind = "int"
	KindFloat      FieldKind = "float"
	KindBool       FieldKind = "bool"
	KindStringList FieldKind = "string_list"
	KindTime       FieldKind = "time"
)

// ParseFieldKind converts a kind name from a schema file
func ParseFieldKind(s string) (FieldKind, error) {
	switch k := FieldKind(s); k {
	case KindString, KindInt, KindFloat, KindBool, KindStringList, KindTime:
		return k, nil
	default:
		return "", fmt.Errorf("unknown field kind %q", s)
	}
}

// zero returns a representative value of the kind, used to check validation rules
func (k FieldKind) zero() any {
	switch k {
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindStringList:
		return []string{}
	case KindTime:
		return time.Time{}
	default:
		return ""
	}
}

// FieldDef describes one allowed field of a node type
type FieldDef struct {
	Name     string
	Kind     FieldKind
	Required bool
	// Validate is a go-playground/validator tag, e.g. "min=1,max=200"
	Validate string
}

// Reserved keys are owned by the entity and never settable through fields
var reservedKeys = map[string]bool{
	"node_id":    true,
	"type":       true,
	"created_at": true,
	"updated_at": true,
	"version":    true,
}

// IsReserved reports whether key is an entity-managed attribute
func IsReserved(key string) bool {
	return reservedKeys[key]
}

// ErrUnknownNodeType is returned when no schema is registered for a discriminator
var ErrUnknownNodeType = errors.New("unknown node type")

// Field error reasons
const (
	ReasonUnknown  = "unknown field"
	ReasonReserved = "field cannot be set"
	ReasonRequired = "field is required"
	ReasonKind     = "wrong value kind"
	ReasonRule     = "validation failed"
	ReasonLimit    = "limit exceeded"
)

// FieldError describes why a single field was rejected
type FieldError struct {
	NodeType string
	Field    string
	Reason   string
	Err      error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.NodeType, e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.NodeType, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
