package entities

import (
	"sort"
	"time"

	"raven/domain/core/valueobjects"
	"raven/domain/events"
	pkgerrors "raven/pkg/errors"
)

// Node is a typed record in the graph. Its allowed fields are defined by the
// schema of its type; the entity itself only guards identity and bookkeeping.
type Node struct {
	// Private fields ensure encapsulation
	id         valueobjects.NodeID
	nodeType   valueobjects.NodeType
	properties map[string]any
	createdAt  time.Time
	updatedAt  time.Time
	version    int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewNode creates a new node from already validated properties
func NewNode(id valueobjects.NodeID, nodeType valueobjects.NodeType, properties map[string]any, now time.Time) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if nodeType.IsZero() {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}

	node := &Node{
		id:         id,
		nodeType:   nodeType,
		properties: copyProperties(properties),
		createdAt:  now,
		updatedAt:  now,
		version:    1,
		events:     []events.DomainEvent{},
	}

	node.addEvent(events.NewNodeCreated(id, nodeType.String(), node.FieldNames(), now))

	return node, nil
}

// ReconstructNode reconstructs a node from repository data with preserved timestamps
func ReconstructNode(
	id valueobjects.NodeID,
	nodeType valueobjects.NodeType,
	properties map[string]any,
	createdAt, updatedAt time.Time,
	version int,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if nodeType.IsZero() {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}
	if version < 1 {
		version = 1
	}

	return &Node{
		id:         id,
		nodeType:   nodeType,
		properties: copyProperties(properties),
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		version:    version,
		events:     []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node's type discriminator
func (n *Node) Type() valueobjects.NodeType {
	return n.nodeType
}

// Get returns a single field value
func (n *Node) Get(field string) (any, bool) {
	v, ok := n.properties[field]
	return copyValue(v), ok
}

// Properties returns a copy of all field values
func (n *Node) Properties() map[string]any {
	return copyProperties(n.properties)
}

// FieldNames returns the names of the set fields in sorted order
func (n *Node) FieldNames() []string {
	names := make([]string, 0, len(n.properties))
	for k := range n.properties {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Version returns the number of accepted changes, starting at 1
func (n *Node) Version() int {
	return n.version
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// ApplyChanges assigns already validated values. A nil value removes the field.
// Returns the changed field names; an empty change set leaves the node untouched.
func (n *Node) ApplyChanges(changes map[string]any, now time.Time) []string {
	if len(changes) == 0 {
		return nil
	}

	changed := make([]string, 0, len(changes))
	for k, v := range changes {
		if v == nil {
			delete(n.properties, k)
		} else {
			n.properties[k] = copyValue(v)
		}
		changed = append(changed, k)
	}
	sort.Strings(changed)

	n.updatedAt = now
	n.version++

	n.addEvent(events.NewNodeUpdated(n.id, n.nodeType.String(), changed, n.version, now))

	return changed
}

// MarkDeleted records the removal of the node
func (n *Node) MarkDeleted(now time.Time) {
	n.addEvent(events.NewNodeDeleted(n.id, n.nodeType.String(), n.version, now))
}

// Clone returns a deep copy without pending events
func (n *Node) Clone() *Node {
	return &Node{
		id:         n.id,
		nodeType:   n.nodeType,
		properties: copyProperties(n.properties),
		createdAt:  n.createdAt,
		updatedAt:  n.updatedAt,
		version:    n.version,
		events:     []events.DomainEvent{},
	}
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}

func copyProperties(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case []string:
		c := make([]string, len(t))
		copy(c, t)
		return c
	case []any:
		c := make([]any, len(t))
		copy(c, t)
		return c
	default:
		return v
	}
}
