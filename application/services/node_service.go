// Package services contains the application services that orchestrate node use cases.
// Services are kept thin: node construction rules live in the domain factory and
// storage in the repository adapters.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"raven/application/ports"
	"raven/domain/core/entities"
	"raven/domain/core/valueobjects"
	pkgerrors "raven/pkg/errors"
	"raven/pkg/observability"
)

var errMissingType = errors.New(`node data must include a "type" string`)

// NodeService adds, updates and deletes typed nodes. It holds no state between
// calls and every failure is returned as a *pkgerrors.NodeValidationError.
type NodeService struct {
	factory   ports.NodeFactory
	repo      ports.NodeRepository
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewNodeService creates a new node service. publisher and metrics may be nil.
func NewNodeService(
	factory ports.NodeFactory,
	repo ports.NodeRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *NodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NodeService{
		factory:   factory,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer("raven.application.node_service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Add constructs a node from nodeData and persists it. nodeData must carry the
// type discriminator under "type"; the remaining keys become the node's fields.
// The caller's map is not modified.
func (s *NodeService) Add(ctx context.Context, nodeData map[string]any) (id string, err error) {
	ctx, span := s.tracer.Start(ctx, "NodeService.Add",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("fields.count", len(nodeData))),
	)
	defer s.finish(ctx, span, pkgerrors.OpAdd, time.Now(), &err)

	fields := make(map[string]any, len(nodeData))
	for k, v := range nodeData {
		fields[k] = v
	}
	nodeType, ok := fields["type"].(string)
	delete(fields, "type")
	if !ok {
		return "", pkgerrors.NewNodeConstructionFailed(pkgerrors.OpAdd, "", errMissingType)
	}
	span.SetAttributes(attribute.String("node.type", nodeType))

	node, err := s.factory.Create(nodeType, fields)
	if err != nil {
		return "", pkgerrors.NewNodeConstructionFailed(pkgerrors.OpAdd, "", err)
	}

	id = node.ID().String()
	span.SetAttributes(attribute.String("node.id", id))

	if err := s.repo.Save(ctx, node); err != nil {
		return "", pkgerrors.NewNodePersistenceFailed(pkgerrors.OpAdd, id, err)
	}

	s.publishEvents(ctx, node)

	s.logger.Info("Node added",
		zap.String("nodeID", id),
		zap.String("type", nodeType),
	)

	return id, nil
}

// Update loads the node, applies every key of updateData and saves it.
// Fields not mentioned keep their values; a nil value clears an optional field.
func (s *NodeService) Update(ctx context.Context, nodeID string, updateData map[string]any) (err error) {
	ctx, span := s.tracer.Start(ctx, "NodeService.Update",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("node.id", nodeID),
			attribute.Int("fields.count", len(updateData)),
		),
	)
	defer s.finish(ctx, span, pkgerrors.OpUpdate, time.Now(), &err)

	node, err := s.load(ctx, pkgerrors.OpUpdate, nodeID)
	if err != nil {
		return err
	}

	if err := s.factory.Apply(node, updateData); err != nil {
		return pkgerrors.NewNodeConstructionFailed(pkgerrors.OpUpdate, nodeID, err)
	}

	if err := s.repo.Save(ctx, node); err != nil {
		return pkgerrors.NewNodePersistenceFailed(pkgerrors.OpUpdate, nodeID, err)
	}

	s.publishEvents(ctx, node)

	s.logger.Info("Node updated",
		zap.String("nodeID", nodeID),
		zap.Int("version", node.Version()),
	)

	return nil
}

// Delete removes the node. Deleting an absent node reports not found, so a
// second delete of the same identifier fails.
func (s *NodeService) Delete(ctx context.Context, nodeID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "NodeService.Delete",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("node.id", nodeID)),
	)
	defer s.finish(ctx, span, pkgerrors.OpDelete, time.Now(), &err)

	node, err := s.load(ctx, pkgerrors.OpDelete, nodeID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, node.ID()); err != nil {
		// Removed between lookup and delete
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NewNodeNotFound(pkgerrors.OpDelete, nodeID)
		}
		return pkgerrors.NewNodePersistenceFailed(pkgerrors.OpDelete, nodeID, err)
	}

	node.MarkDeleted(s.now())
	s.publishEvents(ctx, node)

	s.logger.Info("Node deleted", zap.String("nodeID", nodeID))

	return nil
}

// load fetches a node, mapping absence and unusable identifiers to not found
func (s *NodeService) load(ctx context.Context, op pkgerrors.NodeOperation, nodeID string) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(nodeID)
	if err != nil {
		return nil, pkgerrors.NewNodeNotFound(op, nodeID)
	}

	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewNodeNotFound(op, nodeID)
		}
		return nil, pkgerrors.NewNodePersistenceFailed(op, nodeID, err)
	}
	return node, nil
}

// publishEvents sends the node's pending events. Publication never changes
// the outcome of the operation.
func (s *NodeService) publishEvents(ctx context.Context, node *entities.Node) {
	pending := node.GetUncommittedEvents()
	defer node.MarkEventsAsCommitted()

	if s.publisher == nil || len(pending) == 0 {
		return
	}

	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("Failed to publish node events",
			zap.Error(err),
			zap.String("nodeID", node.ID().String()),
			zap.Int("count", len(pending)),
		)
	}
}

func (s *NodeService) finish(ctx context.Context, span trace.Span, op pkgerrors.NodeOperation, start time.Time, errp *error) {
	err := *errp
	s.metrics.RecordOperation(ctx, string(op), time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
