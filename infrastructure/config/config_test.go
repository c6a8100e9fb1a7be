package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"raven/domain/core/schema"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "neo4j")
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("READ_TIMEOUT", "30")
	t.Setenv("ENABLE_CORS", "false")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "raven-api")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StoreNeo4j, cfg.StoreBackend)
	assert.Equal(t, "neo4j://graph:7687", cfg.Neo4jURI)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.False(t, cfg.EnableCORS)
	assert.True(t, cfg.IsLambda)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerAddress:   ":8080",
			Environment:     "production",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
			StoreBackend:    StoreDynamoDB,
			AWSRegion:       "us-west-2",
			DynamoDBTable:   "raven-nodes",
			LogLevel:        "info",
			JWTSecret:       "secret",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid production config", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.StoreBackend = "redis" }, wantErr: "invalid configuration"},
		{name: "dynamodb without table", mutate: func(c *Config) { c.DynamoDBTable = "" }, wantErr: "invalid configuration"},
		{name: "neo4j without uri", mutate: func(c *Config) { c.StoreBackend = StoreNeo4j }, wantErr: "invalid configuration"},
		{name: "production requires jwt", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "production forbids memory", mutate: func(c *Config) { c.StoreBackend = StoreMemory }, wantErr: "memory"},
		{name: "events need a bus", mutate: func(c *Config) { c.EnableEvents = true }, wantErr: "EVENT_BUS_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

const placeSchema = `
types:
  Place:
    fields:
      label: {kind: string, required: true}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadSchemas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	writeFile(t, path, placeSchema)
	registry := schema.NewRegistry()

	require.NoError(t, LoadSchemas(registry, path))

	assert.Equal(t, []string{"Document", "Interaction", "Person", "Place", "Topic"}, registry.Types())
}

func TestSchemaWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	writeFile(t, path, placeSchema)
	registry := schema.NewRegistry(schema.DefaultSchemas()...)
	w := NewSchemaWatcher(path, registry, zap.NewNop())
	require.NoError(t, w.Reload())

	// Act
	writeFile(t, path, "types:\n  Broken:\n    fields:\n      x: {kind: complex}\n")
	err := w.Reload()

	// Assert
	assert.Error(t, err)
	_, lookupErr := registry.Lookup("Place")
	assert.NoError(t, lookupErr)
}

func TestSchemaWatcher_PicksUpChanges(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	writeFile(t, path, "")
	registry := schema.NewRegistry(schema.DefaultSchemas()...)
	w := NewSchemaWatcher(path, registry, zap.NewNop())
	w.debounce = 10 * time.Millisecond
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	// Act
	writeFile(t, path, placeSchema)

	// Assert
	assert.Eventually(t, func() bool {
		_, err := registry.Lookup("Place")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}
