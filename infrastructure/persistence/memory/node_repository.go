// Package memory provides an in-process NodeRepository for development and tests.
package memory

import (
	"context"
	"sync"

	"raven/domain/core/entities"
	"raven/domain/core/valueobjects"
	pkgerrors "raven/pkg/errors"
)

// NodeRepository stores deep copies of nodes in a map
type NodeRepository struct {
	mu    sync.RWMutex
	nodes map[string]*entities.Node
}

// NewNodeRepository creates an empty repository
func NewNodeRepository() *NodeRepository {
	return &NodeRepository{nodes: make(map[string]*entities.Node)}
}

// Save inserts or replaces the node
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.ID().String()] = node.Clone()
	return nil
}

// GetByID returns a copy of the stored node
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	node, ok := r.nodes[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node.Clone(), nil
}

// Delete removes the node
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nodes[id.String()]; !ok {
		return pkgerrors.NewNotFoundError("node")
	}
	delete(r.nodes, id.String())
	return nil
}

// Len returns the number of stored nodes
func (r *NodeRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Ping always succeeds
func (r *NodeRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
