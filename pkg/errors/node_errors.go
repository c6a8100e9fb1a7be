package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NodeErrorKind is the closed set of ways a node operation can fail
type NodeErrorKind string

const (
	// NodeNotFound means the identifier did not resolve to a stored node
	NodeNotFound NodeErrorKind = "NOT_FOUND"

	// NodeConstructionFailed means the node (or its updated state) could not be built
	// from the supplied fields: unknown type, unknown field, wrong kind, rule violation
	NodeConstructionFailed NodeErrorKind = "CONSTRUCTION_FAILED"

	// NodePersistenceFailed means the store rejected or failed the read, save or delete
	NodePersistenceFailed NodeErrorKind = "PERSISTENCE_FAILED"
)

// NodeOperation names the service operation that failed
type NodeOperation string

const (
	OpAdd    NodeOperation = "add"
	OpUpdate NodeOperation = "update"
	OpDelete NodeOperation = "delete"
)

// Sentinels for errors.Is matching against a NodeValidationError's kind
var (
	ErrNodeNotFound     = &NodeValidationError{Kind: NodeNotFound}
	ErrNodeConstruction = &NodeValidationError{Kind: NodeConstructionFailed}
	ErrNodePersistence  = &NodeValidationError{Kind: NodePersistenceFailed}
)

// NodeValidationError is the single error kind returned by the node service
type NodeValidationError struct {
	Kind   NodeErrorKind `json:"kind"`
	Op     NodeOperation `json:"op"`
	NodeID string        `json:"node_id,omitempty"`
	Cause  error         `json:"-"`
}

// NewNodeNotFound reports that nodeID does not exist
func NewNodeNotFound(op NodeOperation, nodeID string) *NodeValidationError {
	return &NodeValidationError{Kind: NodeNotFound, Op: op, NodeID: nodeID}
}

// NewNodeConstructionFailed wraps a factory or field-assignment failure
func NewNodeConstructionFailed(op NodeOperation, nodeID string, cause error) *NodeValidationError {
	return &NodeValidationError{Kind: NodeConstructionFailed, Op: op, NodeID: nodeID, Cause: cause}
}

// NewNodePersistenceFailed wraps a store failure
func NewNodePersistenceFailed(op NodeOperation, nodeID string, cause error) *NodeValidationError {
	return &NodeValidationError{Kind: NodePersistenceFailed, Op: op, NodeID: nodeID, Cause: cause}
}

// Error implements the error interface
func (e *NodeValidationError) Error() string {
	if e.Kind == NodeNotFound {
		return fmt.Sprintf("Node with ID %s not found.", e.NodeID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("Failed to %s node: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("Failed to %s node", e.Op)
}

// Unwrap returns the underlying cause
func (e *NodeValidationError) Unwrap() error {
	return e.Cause
}

// Is matches any NodeValidationError of the same kind
func (e *NodeValidationError) Is(target error) bool {
	t, ok := target.(*NodeValidationError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// HTTPStatus maps the error kind to a response status
func (e *NodeValidationError) HTTPStatus() int {
	switch e.Kind {
	case NodeNotFound:
		return http.StatusNotFound
	case NodeConstructionFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetNodeValidationError extracts a NodeValidationError from an error chain
func GetNodeValidationError(err error) *NodeValidationError {
	var nodeErr *NodeValidationError
	if errors.As(err, &nodeErr) {
		return nodeErr
	}
	return nil
}

// IsNodeNotFound checks if err is a node service not-found error
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}
