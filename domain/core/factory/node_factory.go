// Package factory builds node entities from a type discriminator and raw fields.
package factory

import (
	"fmt"
	"time"

	"raven/domain/config"
	"raven/domain/core/entities"
	"raven/domain/core/schema"
	"raven/domain/core/validators"
	"raven/domain/core/valueobjects"
)

// NodeFactory maps a type discriminator plus fields to a node, using the
// schemas currently held by its registry
type NodeFactory struct {
	registry  *schema.Registry
	validator *validators.NodeValidator
	newID     func() string
	now       func() time.Time
}

// Option configures a NodeFactory
type Option func(*NodeFactory)

// WithIDGenerator overrides identifier generation
func WithIDGenerator(gen func() string) Option {
	return func(f *NodeFactory) {
		f.newID = gen
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(f *NodeFactory) {
		f.now = now
	}
}

// WithDomainConfig sets the cross-type limits
func WithDomainConfig(cfg *config.DomainConfig) Option {
	return func(f *NodeFactory) {
		f.validator = validators.NewNodeValidator(cfg)
	}
}

// NewNodeFactory creates a factory backed by registry
func NewNodeFactory(registry *schema.Registry, opts ...Option) *NodeFactory {
	f := &NodeFactory{
		registry:  registry,
		validator: validators.NewNodeValidator(nil),
		newID:     func() string { return valueobjects.NewNodeID().String() },
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds a new node. Unknown types return an error wrapping
// schema.ErrUnknownNodeType; rejected fields return a *schema.FieldError.
func (f *NodeFactory) Create(nodeType string, fields map[string]any) (*entities.Node, error) {
	s, err := f.registry.Lookup(nodeType)
	if err != nil {
		return nil, err
	}
	nt, err := valueobjects.NewNodeType(s.Type)
	if err != nil {
		return nil, err
	}

	props, err := s.ValidateFields(fields)
	if err != nil {
		return nil, err
	}
	if err := f.validator.ValidateProperties(s.Type, props); err != nil {
		return nil, err
	}

	id, err := valueobjects.NewNodeIDFromString(f.newID())
	if err != nil {
		return nil, fmt.Errorf("failed to generate node ID: %w", err)
	}

	return entities.NewNode(id, nt, props, f.now())
}

// Apply validates every change against the node's schema and only then assigns
// them, so a rejected change set leaves the node untouched
func (f *NodeFactory) Apply(node *entities.Node, changes map[string]any) error {
	s, err := f.registry.Lookup(node.Type().String())
	if err != nil {
		return err
	}

	validated, err := s.ValidateChanges(changes)
	if err != nil {
		return err
	}

	merged := node.Properties()
	for k, v := range validated {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	if err := f.validator.ValidateProperties(s.Type, merged); err != nil {
		return err
	}

	node.ApplyChanges(validated, f.now())
	return nil
}

// Reconstruct rebuilds a stored node. Required fields are not enforced and
// values that no longer match the current schema are kept as stored.
func (f *NodeFactory) Reconstruct(
	id, nodeType string,
	props map[string]any,
	createdAt, updatedAt time.Time,
	version int,
) (*entities.Node, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		return nil, err
	}
	nt, err := valueobjects.NewNodeType(nodeType)
	if err != nil {
		return nil, err
	}

	restored := make(map[string]any, len(props))
	s, lookupErr := f.registry.Lookup(nodeType)
	for k, v := range props {
		if v == nil {
			continue
		}
		if lookupErr == nil {
			if c, err := s.Coerce(k, v); err == nil {
				v = c
			}
		}
		restored[k] = v
	}

	return entities.ReconstructNode(nodeID, nt, restored, createdAt, updatedAt, version)
}

// Now returns the factory's current time
func (f *NodeFactory) Now() time.Time {
	return f.now()
}
