package valueobjects

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var nodeTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// NodeType is the discriminator selecting which schema a node follows.
// It doubles as the graph label, so it is restricted to identifier characters.
type NodeType struct {
	value string
}

// NewNodeType validates and wraps a type discriminator
func NewNodeType(name string) (NodeType, error) {
	if name == "" {
		return NodeType{}, fmt.Errorf("node type cannot be empty")
	}
	if !nodeTypePattern.MatchString(name) {
		return NodeType{}, fmt.Errorf("node type %q must start with a letter and contain only letters, digits or underscores", name)
	}
	return NodeType{value: name}, nil
}

// String returns the discriminator
func (t NodeType) String() string {
	return t.value
}

// Equals checks if two NodeTypes are equal
func (t NodeType) Equals(other NodeType) bool {
	return t.value == other.value
}

// IsZero checks if the NodeType is the zero value
func (t NodeType) IsZero() bool {
	return t.value == ""
}

// MarshalJSON implements json.Marshaler
func (t NodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}
