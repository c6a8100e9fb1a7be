package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raven/domain/config"
	"raven/domain/core/schema"
)

var fixedTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestFactory(opts ...Option) *NodeFactory {
	base := []Option{
		WithIDGenerator(func() string { return "123" }),
		WithClock(func() time.Time { return fixedTime }),
	}
	return NewNodeFactory(schema.NewRegistry(schema.DefaultSchemas()...), append(base, opts...)...)
}

func TestCreate(t *testing.T) {
	// Arrange
	f := newTestFactory()

	// Act
	node, err := f.Create("Person", map[string]any{"name": "Alice", "age": 30})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "123", node.ID().String())
	assert.Equal(t, "Person", node.Type().String())
	age, _ := node.Get("age")
	assert.Equal(t, int64(30), age)
	assert.Equal(t, fixedTime, node.CreatedAt())
}

func TestCreate_DefaultIDIsUUID(t *testing.T) {
	f := NewNodeFactory(schema.NewRegistry(schema.DefaultSchemas()...))

	node, err := f.Create("Topic", map[string]any{"title": "Go"})

	require.NoError(t, err)
	assert.True(t, node.ID().IsUUID())
}

func TestCreate_UnknownType(t *testing.T) {
	_, err := newTestFactory().Create("Spaceship", map[string]any{"name": "x"})

	assert.True(t, errors.Is(err, schema.ErrUnknownNodeType))
}

func TestCreate_FieldErrors(t *testing.T) {
	f := newTestFactory()

	_, err := f.Create("Person", map[string]any{"age": 30})
	var fieldErr *schema.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, schema.ReasonRequired, fieldErr.Reason)

	_, err = f.Create("Person", map[string]any{"name": "A", "type": "Topic"})
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, schema.ReasonReserved, fieldErr.Reason)
}

func TestCreate_DomainLimits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxStringLength = 3
	f := newTestFactory(WithDomainConfig(cfg))

	_, err := f.Create("Person", map[string]any{"name": "Alice"})

	var fieldErr *schema.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, schema.ReasonLimit, fieldErr.Reason)
}

func TestCreate_EmptyGeneratedID(t *testing.T) {
	f := newTestFactory(WithIDGenerator(func() string { return "" }))

	_, err := f.Create("Person", map[string]any{"name": "Alice"})

	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	f := newTestFactory()
	node, err := f.Create("Person", map[string]any{"name": "Alice", "age": 30})
	require.NoError(t, err)

	require.NoError(t, f.Apply(node, map[string]any{"age": float64(31)}))

	age, _ := node.Get("age")
	name, _ := node.Get("name")
	assert.Equal(t, int64(31), age)
	assert.Equal(t, "Alice", name)
	assert.Equal(t, 2, node.Version())
}

func TestApply_AllOrNothing(t *testing.T) {
	f := newTestFactory()
	node, err := f.Create("Person", map[string]any{"name": "Alice", "age": 30})
	require.NoError(t, err)

	err = f.Apply(node, map[string]any{"age": 31, "nickname": "Al"})

	require.Error(t, err)
	age, _ := node.Get("age")
	assert.Equal(t, int64(30), age)
	assert.Equal(t, 1, node.Version())
}

func TestApply_ImmutableKeys(t *testing.T) {
	f := newTestFactory()
	node, err := f.Create("Person", map[string]any{"name": "Alice"})
	require.NoError(t, err)

	for _, key := range []string{"node_id", "type"} {
		err := f.Apply(node, map[string]any{key: "other"})
		var fieldErr *schema.FieldError
		require.True(t, errors.As(err, &fieldErr), key)
		assert.Equal(t, schema.ReasonReserved, fieldErr.Reason)
	}
	assert.Equal(t, "123", node.ID().String())
	assert.Equal(t, "Person", node.Type().String())
}

func TestApply_CannotClearRequired(t *testing.T) {
	f := newTestFactory()
	node, err := f.Create("Person", map[string]any{"name": "Alice"})
	require.NoError(t, err)

	assert.Error(t, f.Apply(node, map[string]any{"name": nil}))
}

func TestReconstruct(t *testing.T) {
	f := newTestFactory()

	node, err := f.Reconstruct("abc", "Person", map[string]any{
		"name":   "Alice",
		"age":    float64(30),
		"legacy": "kept",
		"email":  nil,
	}, fixedTime, fixedTime, 4)

	require.NoError(t, err)
	age, _ := node.Get("age")
	assert.Equal(t, int64(30), age)
	legacy, _ := node.Get("legacy")
	assert.Equal(t, "kept", legacy)
	_, hasEmail := node.Get("email")
	assert.False(t, hasEmail)
	assert.Equal(t, 4, node.Version())
}

func TestReconstruct_UnregisteredType(t *testing.T) {
	f := newTestFactory()

	node, err := f.Reconstruct("abc", "Retired", map[string]any{"x": "y"}, fixedTime, fixedTime, 1)

	require.NoError(t, err)
	assert.Equal(t, "Retired", node.Type().String())
}
