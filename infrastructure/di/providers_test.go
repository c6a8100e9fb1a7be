package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"raven/infrastructure/config"
	"raven/infrastructure/persistence/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress:   ":0",
		Environment:     "development",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		StoreBackend:    config.StoreMemory,
		AWSRegion:       "us-west-2",
		LogLevel:        "error",
		EnableMetrics:   true,
	}
}

func TestInitializeContainer_MemoryBackend(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	container, cleanup, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.IsType(t, &memory.NodeRepository{}, container.NodeRepo)
	assert.Nil(t, container.Publisher)
	assert.Nil(t, container.SchemaWatcher)
	assert.NotNil(t, container.Metrics)
	assert.Equal(t, []string{"Document", "Interaction", "Person", "Topic"}, container.Schemas.Types())

	id, err := container.NodeService.Add(context.Background(), map[string]any{"type": "Topic", "title": "Go"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestProvideNodeRepository_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = "cassandra"

	_, err := ProvideNodeRepository(cfg, nil, nil, nil, nil, zap.NewNop())

	assert.ErrorContains(t, err, "cassandra")
}

func TestProvideLogger_RejectsBadLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"

	_, err := ProvideLogger(cfg)

	assert.Error(t, err)
}

func TestOptionalProviders(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMetrics = false

	assert.Nil(t, ProvideMetrics(cfg, nil, zap.NewNop()))
	assert.Nil(t, ProvideEventPublisher(cfg, nil, zap.NewNop()))

	validator, err := ProvideJWTValidator(cfg)
	assert.NoError(t, err)
	assert.Nil(t, validator)

	tp, cleanup, err := ProvideTracerProvider(cfg, zap.NewNop())
	require.NoError(t, err)
	cleanup()
	assert.Nil(t, tp)
}
