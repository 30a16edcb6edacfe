package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Config{OpenAI: OpenAIConfig{APIKey: "sk-test"}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, 1536, cfg.Qdrant.Dimension)
	assert.Equal(t, "cosine", cfg.Qdrant.Metric)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	assert.Equal(t, 10, cfg.Query.TopK)
	assert.Equal(t, 3, cfg.Query.MaxLinks)
	assert.Equal(t, "http", cfg.Server.Mode)
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing api key", func(c *Config) { c.OpenAI.APIKey = "" }, "openai.api_key is required"},
		{"bad port", func(c *Config) { c.Qdrant.Port = 70000 }, "qdrant.port must be between 1 and 65535"},
		{"bad metric", func(c *Config) { c.Qdrant.Metric = "manhattan" }, `qdrant.metric must be one of cosine, dot, euclid, got "manhattan"`},
		{"batch too large", func(c *Config) { c.Ingest.BatchSize = 250 }, "ingest.batch_size must be between 1 and 100, got 250"},
		{"bad mode", func(c *Config) { c.Server.Mode = "grpc" }, `server.mode must be "http" or "stdio"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")
	t.Setenv("QDRANT_INDEX", "")

	path := filepath.Join(t.TempDir(), "test.yaml")
	yaml := `
qdrant:
  host: qdrant.internal
  index: ${TEST_INDEX:-handbook}
openai:
  api_key: ${TEST_OPENAI_KEY}
query:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, "handbook", cfg.Qdrant.Index)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
	assert.Equal(t, 5, cfg.Query.TopK)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env-only")
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("QDRANT_INDEX", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env-only", cfg.OpenAI.APIKey)
	assert.Equal(t, "askdocs", cfg.Qdrant.Index)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("qdrant: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
