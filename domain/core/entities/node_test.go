package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raven/domain/core/valueobjects"
	"raven/domain/events"
)

var testTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	id, err := valueobjects.NewNodeIDFromString("123")
	require.NoError(t, err)
	nt, err := valueobjects.NewNodeType("Person")
	require.NoError(t, err)

	node, err := NewNode(id, nt, map[string]any{"name": "Alice", "age": int64(30)}, testTime)
	require.NoError(t, err)
	return node
}

func TestNewNode(t *testing.T) {
	node := newTestNode(t)

	assert.Equal(t, "123", node.ID().String())
	assert.Equal(t, "Person", node.Type().String())
	assert.Equal(t, 1, node.Version())
	assert.Equal(t, testTime, node.CreatedAt())
	assert.Equal(t, []string{"age", "name"}, node.FieldNames())

	evts := node.GetUncommittedEvents()
	require.Len(t, evts, 1)
	created, ok := evts[0].(events.NodeCreated)
	require.True(t, ok)
	assert.Equal(t, events.TypeNodeCreated, created.GetEventType())
	assert.Equal(t, "123", created.GetAggregateID())
}

func TestNewNode_RequiresIdentity(t *testing.T) {
	nt, _ := valueobjects.NewNodeType("Person")
	_, err := NewNode(valueobjects.NodeID{}, nt, nil, testTime)
	assert.Error(t, err)

	_, err = NewNode(valueobjects.NewNodeID(), valueobjects.NodeType{}, nil, testTime)
	assert.Error(t, err)
}

func TestApplyChanges(t *testing.T) {
	// Arrange
	node := newTestNode(t)
	node.MarkEventsAsCommitted()
	later := testTime.Add(time.Hour)

	// Act
	changed := node.ApplyChanges(map[string]any{"age": int64(31), "email": nil}, later)

	// Assert
	assert.Equal(t, []string{"age", "email"}, changed)
	age, _ := node.Get("age")
	assert.Equal(t, int64(31), age)
	name, _ := node.Get("name")
	assert.Equal(t, "Alice", name)
	assert.Equal(t, 2, node.Version())
	assert.Equal(t, later, node.UpdatedAt())
	assert.Equal(t, testTime, node.CreatedAt())

	evts := node.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeNodeUpdated, evts[0].GetEventType())
}

func TestApplyChanges_NilRemovesField(t *testing.T) {
	node := newTestNode(t)

	node.ApplyChanges(map[string]any{"age": nil}, testTime)

	_, ok := node.Get("age")
	assert.False(t, ok)
}

func TestApplyChanges_EmptyIsNoop(t *testing.T) {
	node := newTestNode(t)
	node.MarkEventsAsCommitted()

	changed := node.ApplyChanges(map[string]any{}, testTime.Add(time.Minute))

	assert.Nil(t, changed)
	assert.Equal(t, 1, node.Version())
	assert.Empty(t, node.GetUncommittedEvents())
}

func TestProperties_AreCopies(t *testing.T) {
	node := newTestNode(t)
	node.ApplyChanges(map[string]any{"aliases": []string{"Al"}}, testTime)

	props := node.Properties()
	props["name"] = "Mallory"
	props["aliases"].([]string)[0] = "X"

	name, _ := node.Get("name")
	aliases, _ := node.Get("aliases")
	assert.Equal(t, "Alice", name)
	assert.Equal(t, []string{"Al"}, aliases)
}

func TestClone(t *testing.T) {
	node := newTestNode(t)

	clone := node.Clone()
	clone.ApplyChanges(map[string]any{"age": int64(99)}, testTime)

	age, _ := node.Get("age")
	assert.Equal(t, int64(30), age)
	assert.Equal(t, 1, node.Version())
	assert.Equal(t, 2, clone.Version())
	require.Len(t, clone.GetUncommittedEvents(), 1)
	assert.Equal(t, events.TypeNodeUpdated, clone.GetUncommittedEvents()[0].GetEventType())
}

func TestReconstructNode(t *testing.T) {
	id, _ := valueobjects.NewNodeIDFromString("abc")
	nt, _ := valueobjects.NewNodeType("Topic")

	node, err := ReconstructNode(id, nt, map[string]any{"title": "Go"}, testTime, testTime, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, node.Version())
	assert.Empty(t, node.GetUncommittedEvents())
}

func TestMarkDeleted(t *testing.T) {
	node := newTestNode(t)
	node.MarkEventsAsCommitted()

	node.MarkDeleted(testTime)

	evts := node.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeNodeDeleted, evts[0].GetEventType())
}
