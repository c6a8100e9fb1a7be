// Package dynamodb implements the node repository on a single DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"raven/application/ports"
	"raven/domain/core/entities"
	"raven/domain/core/valueobjects"
	pkgerrors "raven/pkg/errors"
)

const (
	entityTypeNode = "NODE"
	nodeSortKey    = "NODE"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the repository
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// NodeRepository stores one item per node: PK=NODE#{id}, SK=NODE
type NodeRepository struct {
	client        DynamoDBAPI
	tableName     string
	reconstructor ports.NodeReconstructor
	logger        *zap.Logger
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(client DynamoDBAPI, tableName string, reconstructor ports.NodeReconstructor, logger *zap.Logger) *NodeRepository {
	return &NodeRepository{
		client:        client,
		tableName:     tableName,
		reconstructor: reconstructor,
		logger:        logger,
	}
}

// nodeItem represents the DynamoDB item structure for a node
type nodeItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	EntityType string                 `dynamodbav:"EntityType"`
	NodeID     string                 `dynamodbav:"NodeID"`
	NodeType   string                 `dynamodbav:"NodeType"`
	Properties map[string]interface{} `dynamodbav:"Properties"`
	CreatedAt  string                 `dynamodbav:"CreatedAt"`
	UpdatedAt  string                 `dynamodbav:"UpdatedAt"`
	Version    int                    `dynamodbav:"Version"`
}

// itemDecoder keeps numbers as their decimal text; the default decodes them
// to float64, which loses integers above 2^53
var itemDecoder = attributevalue.NewDecoder(func(o *attributevalue.DecoderOptions) {
	o.UseNumber = true
})

// restoreNumbers turns decoded numbers into int64 when they are whole and
// fit, float64 otherwise
func restoreNumbers(props map[string]interface{}) {
	for k, v := range props {
		n, ok := v.(attributevalue.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			props[k] = i
		} else if f, err := n.Float64(); err == nil {
			props[k] = f
		}
	}
}

func nodeKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: nodeSortKey},
	}
}

// Save writes the whole node item, replacing any previous version
func (r *NodeRepository) Save(ctx context.Context, node *entities.Node) error {
	id := node.ID().String()
	item := nodeItem{
		PK:         fmt.Sprintf("NODE#%s", id),
		SK:         nodeSortKey,
		EntityType: entityTypeNode,
		NodeID:     id,
		NodeType:   node.Type().String(),
		Properties: node.Properties(),
		CreatedAt:  node.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:  node.UpdatedAt().UTC().Format(time.RFC3339Nano),
		Version:    node.Version(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return dbError("PutItem", err)
	}

	r.logger.Debug("Node saved to DynamoDB",
		zap.String("nodeID", id),
		zap.Int("version", node.Version()),
	)
	return nil
}

// GetByID loads a node by its identifier
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            nodeKey(id.String()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, dbError("GetItem", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	var item nodeItem
	if err := itemDecoder.Decode(&types.AttributeValueMemberM{Value: result.Item}, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node item: %w", err)
	}
	restoreNumbers(item.Properties)

	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)

	node, err := r.reconstructor.Reconstruct(item.NodeID, item.NodeType, item.Properties, createdAt, updatedAt, item.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct node from DynamoDB data: %w", err)
	}
	return node, nil
}

// Delete removes the node item; a missing item is reported as not found
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       nodeKey(id.String()),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("node")
		}
		return dbError("DeleteItem", err)
	}

	r.logger.Debug("Node deleted from DynamoDB", zap.String("nodeID", id.String()))
	return nil
}

// Ping checks that the table is reachable
func (r *NodeRepository) Ping(ctx context.Context) error {
	if _, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	}); err != nil {
		return dbError("DescribeTable", err)
	}
	return nil
}

// dbError wraps an SDK failure, keeping the AWS error code when there is one
func dbError(operation string, err error) error {
	appErr := pkgerrors.NewDatabaseError(operation, err)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return appErr.WithCode(apiErr.ErrorCode())
	}
	return appErr
}
