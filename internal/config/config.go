// Package config loads askdocs configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the askdocs configuration.
type Config struct {
	Qdrant  QdrantConfig  `yaml:"qdrant"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Query   QueryConfig   `yaml:"query"`
	GitHub  GitHubConfig  `yaml:"github"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// QdrantConfig holds vector store connection and index settings.
type QdrantConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	APIKey          string `yaml:"api_key"`
	UseTLS          bool   `yaml:"use_tls"`
	Index           string `yaml:"index"`
	Dimension       int    `yaml:"dimension"`
	Metric          string `yaml:"metric"` // cosine, dot, euclid
	ReadyTimeoutSec int    `yaml:"ready_timeout_sec"`
}

// OpenAIConfig holds embedding and completion endpoint settings.
type OpenAIConfig struct {
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	EmbeddingModel   string  `yaml:"embedding_model"`
	CompletionModel  string  `yaml:"completion_model"`
	EmbedBatchSize   int     `yaml:"embed_batch_size"`
	MaxContextTokens int     `yaml:"max_context_tokens"`
	Temperature      float64 `yaml:"temperature"`
}

// IngestConfig holds chunking and upsert settings.
type IngestConfig struct {
	ChunkSize int      `yaml:"chunk_size"`
	BatchSize int      `yaml:"batch_size"`
	Includes  []string `yaml:"includes"`
	Excludes  []string `yaml:"excludes"`
	CachePath string   `yaml:"cache_path"` // empty disables the embedding cache
}

// QueryConfig holds retrieval and reply settings.
type QueryConfig struct {
	TopK     int `yaml:"top_k"`
	MaxLinks int `yaml:"max_links"`
}

// GitHubConfig points the GitHub loader at a documentation directory.
type GitHubConfig struct {
	Owner    string `yaml:"owner"`
	Repo     string `yaml:"repo"`
	BasePath string `yaml:"base_path"`
	Ref      string `yaml:"ref"`
	Token    string `yaml:"token"` // optional, raises the API rate limit
}

// ServerConfig holds bot server settings.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // http, stdio
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, dev, prod
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// MaxUpsertBatch is the largest upsert batch the vector store accepts from us.
const MaxUpsertBatch = 100

// Load reads configuration from path. An empty path resolves config/<ENV>.yaml;
// a missing file yields defaults. A .env file in the working directory is loaded first.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = filepath.Join("config", GetEnv()+".yaml")
	}

	var cfg Config
	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults + environment only
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// applyEnv fills secrets and endpoints left empty by the file from well-known variables.
func (c *Config) applyEnv() {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = os.Getenv("QDRANT_API_KEY")
	}
	if c.Qdrant.Host == "" {
		c.Qdrant.Host = os.Getenv("QDRANT_HOST")
	}
	if c.Qdrant.Index == "" {
		c.Qdrant.Index = os.Getenv("QDRANT_INDEX")
	}
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.Logging.Env == "" {
		c.Logging.Env = os.Getenv("ENV")
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Qdrant.Host == "" {
		c.Qdrant.Host = "localhost"
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
	if c.Qdrant.Index == "" {
		c.Qdrant.Index = "askdocs"
	}
	if c.Qdrant.Dimension == 0 {
		c.Qdrant.Dimension = 1536
	}
	if c.Qdrant.Metric == "" {
		c.Qdrant.Metric = "cosine"
	}
	if c.Qdrant.ReadyTimeoutSec <= 0 {
		c.Qdrant.ReadyTimeoutSec = 60
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.OpenAI.CompletionModel == "" {
		c.OpenAI.CompletionModel = "gpt-4o-mini"
	}
	if c.OpenAI.EmbedBatchSize <= 0 {
		c.OpenAI.EmbedBatchSize = 500
	}
	if c.OpenAI.MaxContextTokens <= 0 {
		c.OpenAI.MaxContextTokens = 12000
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 1000
	}
	if c.Ingest.BatchSize == 0 {
		c.Ingest.BatchSize = MaxUpsertBatch
	}
	if len(c.Ingest.Includes) == 0 {
		c.Ingest.Includes = []string{"**/*.md", "**/*.txt"}
	}
	if c.Query.TopK <= 0 {
		c.Query.TopK = 10
	}
	if c.Query.MaxLinks <= 0 {
		c.Query.MaxLinks = 3
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "http"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required (or set OPENAI_API_KEY)")
	}
	if c.Qdrant.Port <= 0 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("qdrant.port must be between 1 and 65535, got %d", c.Qdrant.Port)
	}
	if c.Qdrant.Dimension <= 0 {
		return fmt.Errorf("qdrant.dimension must be positive, got %d", c.Qdrant.Dimension)
	}
	switch c.Qdrant.Metric {
	case "cosine", "dot", "euclid":
	default:
		return fmt.Errorf("qdrant.metric must be one of cosine, dot, euclid, got %q", c.Qdrant.Metric)
	}
	if c.Ingest.BatchSize < 1 || c.Ingest.BatchSize > MaxUpsertBatch {
		return fmt.Errorf("ingest.batch_size must be between 1 and %d, got %d", MaxUpsertBatch, c.Ingest.BatchSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("server.mode must be \"http\" or \"stdio\", got %q", c.Server.Mode)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
