// Package tracing decorates repositories with OpenTelemetry spans.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"raven/application/ports"
	"raven/domain/core/entities"
	"raven/domain/core/valueobjects"
	pkgerrors "raven/pkg/errors"
)

// TraceRepository wraps a repository with tracing
func TraceRepository(repo ports.NodeRepository, tracer trace.Tracer) ports.NodeRepository {
	return &tracedNodeRepository{
		inner:  repo,
		tracer: tracer,
	}
}

type tracedNodeRepository struct {
	inner  ports.NodeRepository
	tracer trace.Tracer
}

func (r *tracedNodeRepository) Save(ctx context.Context, node *entities.Node) error {
	ctx, span := r.tracer.Start(ctx, "repository.Save",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("node.id", node.ID().String()),
			attribute.String("node.type", node.Type().String()),
			attribute.Int("node.version", node.Version()),
		),
	)
	defer span.End()

	err := r.inner.Save(ctx, node)
	record(span, err)
	return err
}

func (r *tracedNodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	ctx, span := r.tracer.Start(ctx, "repository.GetByID",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("node.id", id.String())),
	)
	defer span.End()

	node, err := r.inner.GetByID(ctx, id)
	record(span, err)
	return node, err
}

func (r *tracedNodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	ctx, span := r.tracer.Start(ctx, "repository.Delete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("node.id", id.String())),
	)
	defer span.End()

	err := r.inner.Delete(ctx, id)
	record(span, err)
	return err
}

// Ping forwards to the wrapped repository when it supports health checks
func (r *tracedNodeRepository) Ping(ctx context.Context) error {
	hc, ok := r.inner.(ports.HealthChecker)
	if !ok {
		return nil
	}
	return hc.Ping(ctx)
}

// record marks the span failed. Not found is an expected answer, so it is
// noted as an attribute rather than an error.
func record(span trace.Span, err error) {
	if err == nil {
		return
	}
	if pkgerrors.IsNotFound(err) {
		span.SetAttributes(attribute.Bool("node.found", false))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
