package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	pkgerrors "raven/pkg/errors"
)

// The constraint keeps node_id unique and backs every MATCH/MERGE on it
// with an index
const nodeIDConstraintCypher = `CREATE CONSTRAINT node_id_unique IF NOT EXISTS FOR (n:Node) REQUIRE n.node_id IS UNIQUE`

// DriverRunner runs queries through a shared driver against one database
type DriverRunner struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewDriver opens a driver and verifies the server is reachable
func NewDriver(ctx context.Context, uri, username, password string) (neo4j.DriverWithContext, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable at %s: %w", uri, err)
	}
	return driver, nil
}

// EnsureConstraints creates the node_id uniqueness constraint if it is missing
func EnsureConstraints(ctx context.Context, runner QueryRunner) error {
	if _, err := runner.Run(ctx, nodeIDConstraintCypher, nil, neo4j.AccessModeWrite); err != nil {
		return pkgerrors.NewDatabaseError("CREATE CONSTRAINT node_id_unique", err)
	}
	return nil
}

// NewDriverRunner creates a runner; an empty database uses the server default
func NewDriverRunner(driver neo4j.DriverWithContext, database string) *DriverRunner {
	return &DriverRunner{driver: driver, database: database}
}

// Run executes cypher, routing writes to the leader and reads to followers
func (d *DriverRunner) Run(ctx context.Context, cypher string, params map[string]any, mode neo4j.AccessMode) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}
	if mode == neo4j.AccessModeRead {
		opts = append(opts, neo4j.ExecuteQueryWithReadersRouting())
	} else {
		opts = append(opts, neo4j.ExecuteQueryWithWritersRouting())
	}

	return neo4j.ExecuteQuery(ctx, d.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
}
