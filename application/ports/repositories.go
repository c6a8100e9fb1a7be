package ports

import (
	"context"
	"time"

	"raven/domain/core/entities"
	"raven/domain/core/valueobjects"
	"raven/domain/events"
)

// NodeRepository defines the interface for node persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type NodeRepository interface {
	// Save persists a node (create or update)
	Save(ctx context.Context, node *entities.Node) error

	// GetByID retrieves a node by its ID. A missing node returns an error
	// for which errors.IsNotFound is true.
	GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error)

	// Delete removes a node. A missing node returns a not-found error.
	Delete(ctx context.Context, id valueobjects.NodeID) error
}

// NodeFactory builds and mutates nodes according to their type's schema
type NodeFactory interface {
	// Create builds a new node of nodeType from fields
	Create(nodeType string, fields map[string]any) (*entities.Node, error)

	// Apply validates and assigns changes to an existing node
	Apply(node *entities.Node, changes map[string]any) error
}

// NodeReconstructor rebuilds nodes loaded from storage
type NodeReconstructor interface {
	Reconstruct(id, nodeType string, props map[string]any, createdAt, updatedAt time.Time, version int) (*entities.Node, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}
