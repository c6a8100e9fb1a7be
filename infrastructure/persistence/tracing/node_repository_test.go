package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"raven/domain/core/entities"
	"raven/domain/core/valueobjects"
	"raven/infrastructure/persistence/memory"
	pkgerrors "raven/pkg/errors"
)

type failingRepo struct {
	*memory.NodeRepository
}

func (failingRepo) Save(context.Context, *entities.Node) error {
	return pkgerrors.NewDatabaseError("PutItem", errors.New("throttled"))
}

func setup(t *testing.T) (*tracetest.SpanRecorder, trace.Tracer) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder, tp.Tracer("test")
}

func newNode(t *testing.T) *entities.Node {
	t.Helper()
	nt, _ := valueobjects.NewNodeType("Topic")
	node, err := entities.NewNode(valueobjects.NewNodeID(), nt, map[string]any{"title": "Go"}, time.Now())
	require.NoError(t, err)
	return node
}

func TestTraceRepository_RecordsSpans(t *testing.T) {
	// Arrange
	recorder, tracer := setup(t)
	repo := TraceRepository(memory.NewNodeRepository(), tracer)
	node := newNode(t)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Save(ctx, node))
	_, err := repo.GetByID(ctx, node.ID())
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, node.ID()))

	// Assert
	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "repository.Save", spans[0].Name())
	assert.Equal(t, "repository.GetByID", spans[1].Name())
	assert.Equal(t, "repository.Delete", spans[2].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("node.type", "Topic"))
	for _, s := range spans {
		assert.NotEqual(t, codes.Error, s.Status().Code)
	}
}

func TestTraceRepository_NotFoundIsNotAnError(t *testing.T) {
	recorder, tracer := setup(t)
	repo := TraceRepository(memory.NewNodeRepository(), tracer)

	_, err := repo.GetByID(context.Background(), valueobjects.NewNodeID())

	assert.True(t, pkgerrors.IsNotFound(err))
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.Bool("node.found", false))
}

func TestTraceRepository_FailureMarksSpan(t *testing.T) {
	recorder, tracer := setup(t)
	repo := TraceRepository(failingRepo{memory.NewNodeRepository()}, tracer)

	err := repo.Save(context.Background(), newNode(t))

	require.Error(t, err)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NotEmpty(t, spans[0].Events())
}
