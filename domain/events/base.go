package events

import (
	"time"

	"raven/domain/core/valueobjects"
)

// Event types published for node changes
const (
	TypeNodeCreated = "node.created"
	TypeNodeUpdated = "node.updated"
	TypeNodeDeleted = "node.deleted"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// NodeCreated is raised when a new node is created
type NodeCreated struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	NodeType string              `json:"node_type"`
	Fields   []string            `json:"fields"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(nodeID valueobjects.NodeID, nodeType string, fields []string, timestamp time.Time) NodeCreated {
	return NodeCreated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeNodeCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:   nodeID,
		NodeType: nodeType,
		Fields:   fields,
	}
}

// NodeUpdated is raised when node fields change
type NodeUpdated struct {
	BaseEvent
	NodeID        valueobjects.NodeID `json:"node_id"`
	NodeType      string              `json:"node_type"`
	ChangedFields []string            `json:"changed_fields"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(nodeID valueobjects.NodeID, nodeType string, changed []string, version int, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeNodeUpdated,
			Timestamp:   timestamp,
			Version:     version,
		},
		NodeID:        nodeID,
		NodeType:      nodeType,
		ChangedFields: changed,
	}
}

// NodeDeleted is raised when a node is removed
type NodeDeleted struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	NodeType string              `json:"node_type"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(nodeID valueobjects.NodeID, nodeType string, version int, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeNodeDeleted,
			Timestamp:   timestamp,
			Version:     version,
		},
		NodeID:   nodeID,
		NodeType: nodeType,
	}
}
