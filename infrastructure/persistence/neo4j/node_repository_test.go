package neo4j

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"raven/domain/core/entities"
	"raven/domain/core/factory"
	"raven/domain/core/schema"
	"raven/domain/core/valueobjects"
	pkgerrors "raven/pkg/errors"
)

// MockRunner fakes Cypher execution
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, cypher string, params map[string]any, mode neo4j.AccessMode) (*neo4j.EagerResult, error) {
	args := m.Called(ctx, cypher, params, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*neo4j.EagerResult), args.Error(1)
}

var created = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newRepo(runner *MockRunner) *NodeRepository {
	f := factory.NewNodeFactory(schema.NewRegistry(schema.DefaultSchemas()...))
	return NewNodeRepository(runner, f, zap.NewNop())
}

func testNode(t *testing.T) *entities.Node {
	t.Helper()
	id, _ := valueobjects.NewNodeIDFromString("123")
	nt, _ := valueobjects.NewNodeType("Person")
	node, err := entities.NewNode(id, nt, map[string]any{"name": "Alice", "age": int64(30), "aliases": []string{"Al"}}, created)
	require.NoError(t, err)
	return node
}

func result(key string, value any) *neo4j.EagerResult {
	return &neo4j.EagerResult{
		Keys:    []string{key},
		Records: []*neo4j.Record{{Keys: []string{key}, Values: []any{value}}},
	}
}

func TestSave_MergesVertexWithLabelAndProps(t *testing.T) {
	// Arrange
	runner := new(MockRunner)
	var params map[string]any
	runner.On("Run", mock.Anything, "MERGE (n:Node {node_id: $id}) SET n = $props, n:`Person` RETURN n.node_id AS node_id", mock.Anything, neo4j.AccessModeWrite).
		Run(func(args mock.Arguments) { params = args.Get(2).(map[string]any) }).
		Return(result("node_id", "123"), nil)
	repo := newRepo(runner)

	// Act
	err := repo.Save(context.Background(), testNode(t))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "123", params["id"])
	props := params["props"].(map[string]any)
	assert.Equal(t, "Alice", props["name"])
	assert.Equal(t, int64(30), props["age"])
	assert.Equal(t, []string{"Al"}, props["aliases"])
	assert.Equal(t, "Person", props["type"])
	assert.Equal(t, int64(1), props["version"])
	assert.Equal(t, created.Format(time.RFC3339Nano), props["created_at"])
	runner.AssertExpectations(t)
}

func TestSave_DriverError(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, mock.Anything, mock.Anything, neo4j.AccessModeWrite).
		Return(nil, errors.New("connection reset"))
	repo := newRepo(runner)

	err := repo.Save(context.Background(), testNode(t))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestGetByID_RebuildsNode(t *testing.T) {
	// Arrange
	runner := new(MockRunner)
	vertex := neo4j.Node{
		Labels: []string{"Node", "Person"},
		Props: map[string]any{
			"node_id":    "123",
			"type":       "Person",
			"created_at": created.Format(time.RFC3339Nano),
			"updated_at": created.Add(time.Hour).Format(time.RFC3339Nano),
			"version":    int64(2),
			"name":       "Alice",
			"age":        int64(31),
			"aliases":    []any{"Al", "Ally"},
		},
	}
	runner.On("Run", mock.Anything, getNodeCypher, map[string]any{"id": "123"}, neo4j.AccessModeRead).
		Return(result("n", vertex), nil)
	repo := newRepo(runner)
	id, _ := valueobjects.NewNodeIDFromString("123")

	// Act
	node, err := repo.GetByID(context.Background(), id)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Person", node.Type().String())
	assert.Equal(t, 2, node.Version())
	assert.Equal(t, created, node.CreatedAt())
	assert.Equal(t, map[string]any{
		"name":    "Alice",
		"age":     int64(31),
		"aliases": []string{"Al", "Ally"},
	}, node.Properties())
	assert.Empty(t, node.GetUncommittedEvents())
}

func TestGetByID_NotFound(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, getNodeCypher, mock.Anything, neo4j.AccessModeRead).
		Return(&neo4j.EagerResult{Keys: []string{"n"}}, nil)
	repo := newRepo(runner)

	_, err := repo.GetByID(context.Background(), valueobjects.NewNodeID())

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		deleted  int64
		wantNF   bool
		runError error
	}{
		{name: "removes existing vertex", deleted: 1},
		{name: "missing vertex is not found", deleted: 0, wantNF: true},
		{name: "driver failure", runError: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockRunner)
			call := runner.On("Run", mock.Anything, deleteNodeCypher, map[string]any{"id": "123"}, neo4j.AccessModeWrite)
			if tt.runError != nil {
				call.Return(nil, tt.runError)
			} else {
				call.Return(result("deleted", tt.deleted), nil)
			}
			repo := newRepo(runner)
			id, _ := valueobjects.NewNodeIDFromString("123")

			err := repo.Delete(context.Background(), id)

			switch {
			case tt.runError != nil:
				assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
			case tt.wantNF:
				assert.True(t, pkgerrors.IsNotFound(err))
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, pingCypher, mock.Anything, neo4j.AccessModeRead).
		Return(result("ok", int64(1)), nil)

	assert.NoError(t, newRepo(runner).Ping(context.Background()))
}

func TestEnsureConstraints(t *testing.T) {
	t.Run("creates node_id constraint", func(t *testing.T) {
		runner := new(MockRunner)
		runner.On("Run", mock.Anything, nodeIDConstraintCypher, mock.Anything, neo4j.AccessModeWrite).
			Return(&neo4j.EagerResult{}, nil)

		require.NoError(t, EnsureConstraints(context.Background(), runner))
		runner.AssertExpectations(t)
	})

	t.Run("driver failure", func(t *testing.T) {
		runner := new(MockRunner)
		runner.On("Run", mock.Anything, nodeIDConstraintCypher, mock.Anything, neo4j.AccessModeWrite).
			Return(nil, errors.New("permission denied"))

		err := EnsureConstraints(context.Background(), runner)

		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	})
}
