package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:tripmind.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Scoring   ScoringConfig   `yaml:"scoring" json:"scoring" jsonschema:"description=Hybrid scoring configuration"`
	Consensus ConsensusConfig `yaml:"consensus" json:"consensus" jsonschema:"description=Confidence and group consensus configuration"`
	Embedding EmbeddingConfig `yaml:"embedding" json:"embedding" jsonschema:"description=Embedding backend for the semantic filter"`
	Catalog   CatalogConfig   `yaml:"catalog" json:"catalog" jsonschema:"description=Destination catalog import fallback"`
}

// ScoringConfig holds the aggregator weights and related tunables. The
// weights are configuration, not hardcoded law.
type ScoringConfig struct {
	WeightCollaborative      float64 `yaml:"weight_collaborative" json:"weight_collaborative" jsonschema:"default=0.4,minimum=0,maximum=1,description=Collaborative filter weight"`
	WeightContent            float64 `yaml:"weight_content" json:"weight_content" jsonschema:"default=0.35,minimum=0,maximum=1,description=Content-based filter weight"`
	WeightSemantic           float64 `yaml:"weight_semantic" json:"weight_semantic" jsonschema:"default=0.25,minimum=0,maximum=1,description=Semantic filter weight"`
	MinSimilarity            float64 `yaml:"min_similarity" json:"min_similarity" jsonschema:"default=0,minimum=0,maximum=1,description=Collaborative neighbor similarity cutoff"`
	HighConfidencePercentile float64 `yaml:"high_confidence_percentile" json:"high_confidence_percentile" jsonschema:"default=0.9,description=Score percentile above which ranked items count as high confidence"`
}

// ConsensusConfig holds the confidence gate thresholds and the group level
type ConsensusConfig struct {
	MinLikes   int     `yaml:"min_likes" json:"min_likes" jsonschema:"default=5,minimum=1,description=Minimum likes before a user can be ready"`
	MinRatio   float64 `yaml:"min_ratio" json:"min_ratio" jsonschema:"default=0.3,minimum=0,maximum=1,description=Minimum likes/swipes ratio before a user can be ready"`
	GroupLevel float64 `yaml:"group_level" json:"group_level" jsonschema:"default=95,description=Overall group confidence level in percent"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding backend settings.
// The backend is optional: with no endpoint the semantic filter degrades to
// stored embeddings only.
type EmbeddingConfig struct {
	Endpoint string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey   string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model    string        `yaml:"model" json:"model" jsonschema:"default=text-embedding-3-small,description=Embedding model name"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Request timeout; the semantic filter degrades to zero scores past it"`
}

// Enabled reports whether an embedding backend is configured
func (c EmbeddingConfig) Enabled() bool {
	return c.Endpoint != "" || c.APIKey != ""
}

// CatalogConfig holds the destination guide import fallback settings
type CatalogConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable catalog import when a destination has no items"`
	SourceURL string        `yaml:"source_url" json:"source_url" jsonschema:"default=https://en.wikivoyage.org/wiki/%s,description=Guide page URL template with %s for the destination"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Fetch timeout per destination"`
	MaxItems  int           `yaml:"max_items" json:"max_items" jsonschema:"default=10,description=Maximum items generated per destination"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Tripmind/1.0,description=User agent for HTTP requests"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:tripmind.db?cache=shared&mode=rwc"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	if c.Scoring.WeightCollaborative == 0 && c.Scoring.WeightContent == 0 && c.Scoring.WeightSemantic == 0 {
		c.Scoring.WeightCollaborative = 0.4
		c.Scoring.WeightContent = 0.35
		c.Scoring.WeightSemantic = 0.25
	}
	if c.Scoring.HighConfidencePercentile == 0 {
		c.Scoring.HighConfidencePercentile = 0.9
	}

	if c.Consensus.MinLikes == 0 {
		c.Consensus.MinLikes = 5
	}
	if c.Consensus.MinRatio == 0 {
		c.Consensus.MinRatio = 0.3
	}
	if c.Consensus.GroupLevel == 0 {
		c.Consensus.GroupLevel = 95
	}

	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Timeout == 0 {
		c.Embedding.Timeout = 10 * time.Second
	}

	if c.Catalog.SourceURL == "" {
		c.Catalog.SourceURL = "https://en.wikivoyage.org/wiki/%s"
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = 30 * time.Second
	}
	if c.Catalog.MaxItems == 0 {
		c.Catalog.MaxItems = 10
	}
	if c.Catalog.UserAgent == "" {
		c.Catalog.UserAgent = "Tripmind/1.0"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	weightSum := cfg.Scoring.WeightCollaborative + cfg.Scoring.WeightContent + cfg.Scoring.WeightSemantic
	if weightSum <= 0 {
		return fmt.Errorf("scoring weights must sum to a positive value")
	}
	for name, w := range map[string]float64{
		"weight_collaborative": cfg.Scoring.WeightCollaborative,
		"weight_content":       cfg.Scoring.WeightContent,
		"weight_semantic":      cfg.Scoring.WeightSemantic,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("scoring.%s must be between 0 and 1", name)
		}
	}
	if cfg.Scoring.HighConfidencePercentile <= 0 || cfg.Scoring.HighConfidencePercentile >= 1 {
		return fmt.Errorf("scoring.high_confidence_percentile must be between 0 and 1 exclusive")
	}

	if cfg.Consensus.MinLikes < 1 {
		return fmt.Errorf("consensus.min_likes must be at least 1")
	}
	if cfg.Consensus.MinRatio < 0 || cfg.Consensus.MinRatio > 1 {
		return fmt.Errorf("consensus.min_ratio must be between 0 and 1")
	}
	if cfg.Consensus.GroupLevel <= 0 || cfg.Consensus.GroupLevel > 100 {
		return fmt.Errorf("consensus.group_level must be between 0 and 100")
	}

	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if cfg.Catalog.Enabled && cfg.Catalog.SourceURL == "" {
		return fmt.Errorf("catalog.source_url is required when catalog import is enabled")
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetEmbeddingConfig returns embedding backend configuration
func (c *Config) GetEmbeddingConfig() EmbeddingConfig {
	return c.Embedding
}

// GetCatalogConfig returns catalog import configuration
func (c *Config) GetCatalogConfig() CatalogConfig {
	return c.Catalog
}
