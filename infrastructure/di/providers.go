package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"raven/application/ports"
	"raven/application/services"
	domainconfig "raven/domain/config"
	"raven/domain/core/factory"
	"raven/domain/core/schema"
	"raven/infrastructure/config"
	"raven/infrastructure/messaging/eventbridge"
	"raven/infrastructure/persistence/dynamodb"
	"raven/infrastructure/persistence/memory"
	"raven/infrastructure/persistence/neo4j"
	"raven/infrastructure/persistence/tracing"
	"raven/interfaces/http/rest"
	"raven/pkg/auth"
	"raven/pkg/observability"
)

const serviceName = "raven"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideDomainConfig selects the cross-type node limits for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domainCfg.Validate(); err != nil {
		return nil, err
	}
	return domainCfg, nil
}

// ProvideSchemaRegistry loads the built-in schemas plus SCHEMA_FILE
func ProvideSchemaRegistry(cfg *config.Config) (*schema.Registry, error) {
	registry := schema.NewRegistry()
	if err := config.LoadSchemas(registry, cfg.SchemaFile); err != nil {
		return nil, fmt.Errorf("failed to load node schemas: %w", err)
	}
	return registry, nil
}

// ProvideSchemaWatcher hot reloads SCHEMA_FILE in development. It returns nil
// when there is nothing to watch.
func ProvideSchemaWatcher(cfg *config.Config, registry *schema.Registry, logger *zap.Logger) (*config.SchemaWatcher, func(), error) {
	if cfg.SchemaFile == "" || !cfg.IsDevelopment() {
		return nil, func() {}, nil
	}

	watcher := config.NewSchemaWatcher(cfg.SchemaFile, registry, logger)
	if err := watcher.Start(); err != nil {
		return nil, nil, err
	}
	return watcher, watcher.Stop, nil
}

// ProvideNodeFactory creates the node factory
func ProvideNodeFactory(registry *schema.Registry, domainCfg *domainconfig.DomainConfig) *factory.NodeFactory {
	return factory.NewNodeFactory(registry, factory.WithDomainConfig(domainCfg))
}

// ProvideTracerProvider starts the OTLP exporter when tracing is enabled.
// A nil provider falls back to the global no-op tracer.
func ProvideTracerProvider(cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}

	tp, err := observability.InitTracing(serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideAWSConfig creates AWS configuration. Inside Lambda with tracing on,
// SDK calls are also recorded as X-Ray subsegments.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.IsLambda && cfg.EnableTracing {
		observability.InstrumentAWS(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideNeo4jDriver connects to Neo4j when it is the selected store and
// makes sure the node_id constraint exists
func ProvideNeo4jDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (neo4jdriver.DriverWithContext, func(), error) {
	if cfg.StoreBackend != config.StoreNeo4j {
		return nil, func() {}, nil
	}

	driver, err := neo4j.NewDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword)
	if err != nil {
		return nil, nil, err
	}
	if err := neo4j.EnsureConstraints(ctx, neo4j.NewDriverRunner(driver, cfg.Neo4jDatabase)); err != nil {
		_ = driver.Close(ctx)
		return nil, nil, err
	}
	cleanup := func() {
		if err := driver.Close(context.Background()); err != nil {
			logger.Warn("Failed to close neo4j driver", zap.Error(err))
		}
	}
	return driver, cleanup, nil
}

// ProvideNodeRepository selects the store named by STORE_BACKEND and wraps it
// with tracing when enabled
func ProvideNodeRepository(
	cfg *config.Config,
	dynamoClient *awsdynamodb.Client,
	driver neo4jdriver.DriverWithContext,
	nodeFactory *factory.NodeFactory,
	tp *observability.TracerProvider,
	logger *zap.Logger,
) (ports.NodeRepository, error) {
	var repo ports.NodeRepository
	switch cfg.StoreBackend {
	case config.StoreNeo4j:
		repo = neo4j.NewNodeRepository(neo4j.NewDriverRunner(driver, cfg.Neo4jDatabase), nodeFactory, logger)
	case config.StoreDynamoDB:
		repo = dynamodb.NewNodeRepository(dynamoClient, cfg.DynamoDBTable, nodeFactory, logger)
	case config.StoreMemory:
		repo = memory.NewNodeRepository()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	logger.Info("Node store selected", zap.String("backend", cfg.StoreBackend))

	if cfg.EnableTracing {
		repo = tracing.TraceRepository(repo, tp.Tracer())
	}
	return repo, nil
}

// ProvideHealthChecker exposes the repository's ping when it has one
func ProvideHealthChecker(repo ports.NodeRepository) ports.HealthChecker {
	if hc, ok := repo.(ports.HealthChecker); ok {
		return hc
	}
	return nil
}

// ProvideEventPublisher returns the EventBridge publisher, or nil when events
// are disabled
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates the metrics recorder. CloudWatch push is only used
// inside Lambda, where nothing scrapes /metrics.
func ProvideMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.Metrics {
	if !cfg.EnableMetrics {
		return nil
	}
	var push observability.CloudWatchAPI
	if cfg.IsLambda {
		push = client
	}
	return observability.NewMetrics("Raven/"+cfg.Environment, push, logger)
}

// ProvideNodeService creates the node service
func ProvideNodeService(
	nodeFactory *factory.NodeFactory,
	repo ports.NodeRepository,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.NodeService {
	return services.NewNodeService(nodeFactory, repo, publisher, metrics, logger)
}

// ProvideJWTValidator enables bearer authentication when JWT_SECRET is set
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	service *services.NodeService,
	health ports.HealthChecker,
	metrics *observability.Metrics,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(service, health, metrics, validator, rest.Options{
		EnableCORS: cfg.EnableCORS,
		Debug:      cfg.IsDevelopment(),
	}, logger)
}
