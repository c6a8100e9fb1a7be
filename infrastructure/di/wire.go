//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"raven/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideSchemaRegistry,
	ProvideSchemaWatcher,
	ProvideNodeFactory,
	ProvideTracerProvider,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideNeo4jDriver,
	ProvideNodeRepository,
	ProvideHealthChecker,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideNodeService,
	ProvideJWTValidator,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// closes store connections and flushes telemetry.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
