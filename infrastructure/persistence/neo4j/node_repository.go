// Package neo4j implements the node repository on a Neo4j graph database.
// Every node is stored as a single (:Node:<Type>) vertex keyed by node_id.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"raven/application/ports"
	"raven/domain/core/entities"
	"raven/domain/core/valueobjects"
	pkgerrors "raven/pkg/errors"
	"raven/pkg/utils"
)

// Bookkeeping properties stored next to the node's own fields
const (
	propNodeID    = "node_id"
	propType      = "type"
	propCreatedAt = "created_at"
	propUpdatedAt = "updated_at"
	propVersion   = "version"
)

const (
	getNodeCypher    = `MATCH (n:Node {node_id: $id}) RETURN n`
	deleteNodeCypher = `MATCH (n:Node {node_id: $id}) DELETE n RETURN count(n) AS deleted`
	pingCypher       = `RETURN 1 AS ok`
)

// saveNodeCypher upserts the vertex. The label is a validated NodeType, so it
// is safe to interpolate.
func saveNodeCypher(label string) string {
	return fmt.Sprintf("MERGE (n:Node {node_id: $id}) SET n = $props, n:`%s` RETURN n.node_id AS node_id", label)
}

// QueryRunner executes one auto-committed Cypher query
type QueryRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any, mode neo4j.AccessMode) (*neo4j.EagerResult, error)
}

// NodeRepository stores nodes as Neo4j vertices
type NodeRepository struct {
	runner        QueryRunner
	reconstructor ports.NodeReconstructor
	logger        *zap.Logger
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(runner QueryRunner, reconstructor ports.NodeReconstructor, logger *zap.Logger) *NodeRepository {
	return &NodeRepository{
		runner:        runner,
		reconstructor: reconstructor,
		logger:        logger,
	}
}

// Save replaces every property of the node's vertex, creating it if needed
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	id := node.ID().String()
	props := flatten(node.Properties())
	props[propNodeID] = id
	props[propType] = node.Type().String()
	props[propCreatedAt] = node.CreatedAt().UTC().Format(time.RFC3339Nano)
	props[propUpdatedAt] = node.UpdatedAt().UTC().Format(time.RFC3339Nano)
	props[propVersion] = int64(node.Version())

	_, err := r.runner.Run(ctx, saveNodeCypher(node.Type().String()), map[string]any{
		"id":    id,
		"props": props,
	}, neo4j.AccessModeWrite)
	if err != nil {
		return pkgerrors.NewDatabaseError("MERGE node", err)
	}

	r.logger.Debug("Node saved to Neo4j",
		zap.String("nodeID", id),
		zap.Int("version", node.Version()),
	)
	return nil
}

// GetByID loads a node by its identifier
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	result, err := r.runner.Run(ctx, getNodeCypher, map[string]any{"id": id.String()}, neo4j.AccessModeRead)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("MATCH node", err)
	}
	if len(result.Records) == 0 {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	raw, ok := result.Records[0].Get("n")
	if !ok {
		return nil, fmt.Errorf("neo4j record has no node column")
	}
	vertex, ok := raw.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("unexpected neo4j value %T", raw)
	}

	return r.fromVertex(vertex)
}

// Delete removes the node's vertex; a missing vertex is reported as not found.
// Relationships are not removed, so a connected vertex fails to delete.
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	result, err := r.runner.Run(ctx, deleteNodeCypher, map[string]any{"id": id.String()}, neo4j.AccessModeWrite)
	if err != nil {
		return pkgerrors.NewDatabaseError("DELETE node", err)
	}

	var deleted int64
	if len(result.Records) > 0 {
		if v, ok := result.Records[0].Get("deleted"); ok {
			deleted, _ = v.(int64)
		}
	}
	if deleted == 0 {
		return pkgerrors.NewNotFoundError("node")
	}

	r.logger.Debug("Node deleted from Neo4j", zap.String("nodeID", id.String()))
	return nil
}

// Ping checks that the database answers queries
func (r *NodeRepository) Ping(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, pingCypher, nil, neo4j.AccessModeRead); err != nil {
		return pkgerrors.NewDatabaseError("ping", err)
	}
	return nil
}

func (r *NodeRepository) fromVertex(vertex neo4j.Node) (*entities.Node, error) {
	fields := make(map[string]any, len(vertex.Props))
	for k, v := range vertex.Props {
		fields[k] = v
	}

	id, _ := fields[propNodeID].(string)
	nodeType, _ := fields[propType].(string)
	createdRaw, _ := fields[propCreatedAt].(string)
	updatedRaw, _ := fields[propUpdatedAt].(string)
	version, _ := fields[propVersion].(int64)
	for _, k := range []string{propNodeID, propType, propCreatedAt, propUpdatedAt, propVersion} {
		delete(fields, k)
	}

	createdAt, _ := utils.ParseRFC3339(createdRaw)
	updatedAt, _ := utils.ParseRFC3339(updatedRaw)

	node, err := r.reconstructor.Reconstruct(id, nodeType, fields, createdAt, updatedAt, int(version))
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct node from Neo4j data: %w", err)
	}
	return node, nil
}

// flatten converts field values to types the Bolt protocol can carry as
// vertex properties
func flatten(props map[string]any) map[string]any {
	out := make(map[string]any, len(props)+5)
	for k, v := range props {
		switch val := v.(type) {
		case time.Time:
			out[k] = val.UTC()
		case []string:
			list := make([]string, len(val))
			copy(list, val)
			out[k] = list
		default:
			out[k] = val
		}
	}
	return out
}
