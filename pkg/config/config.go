package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Extractor providers
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Extractor  ExtractorConfig
	Embedding  EmbeddingConfig
	Chunking   ChunkingConfig
	Similarity SimilarityConfig
	Pipeline   PipelineConfig
	Tags       TagsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	// Static bearer token for the API; empty disables the check
	APIToken string `envconfig:"API_TOKEN"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `envconfig:"DB_DRIVER" default:"postgres"`
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_thoughts"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-transcripts"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// ExtractorConfig holds the thought extraction LLM configuration
type ExtractorConfig struct {
	Provider          string        `envconfig:"EXTRACTOR_PROVIDER" default:"groq"`
	APIKey            string        `envconfig:"EXTRACTOR_API_KEY"`
	BaseURL           string        `envconfig:"EXTRACTOR_BASE_URL"`
	Model             string        `envconfig:"EXTRACTOR_MODEL"`
	MaxTokens         int           `envconfig:"EXTRACTOR_MAX_TOKENS" default:"4096"`
	Temperature       float64       `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.2"`
	RequestsPerMinute int           `envconfig:"EXTRACTOR_RATE_PER_MINUTE" default:"30"`
	Timeout           time.Duration `envconfig:"EXTRACTOR_TIMEOUT" default:"60s"`
	MaxRetryElapsed   time.Duration `envconfig:"EXTRACTOR_MAX_RETRY_ELAPSED" default:"45s"`
}

// EmbeddingConfig holds the embedding provider configuration
type EmbeddingConfig struct {
	Enabled   bool          `envconfig:"EMBEDDING_ENABLED" default:"false"`
	BaseURL   string        `envconfig:"EMBEDDING_BASE_URL" default:"https://api.openai.com/v1"`
	APIKey    string        `envconfig:"EMBEDDING_API_KEY"`
	Model     string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	BatchSize int           `envconfig:"EMBEDDING_BATCH_SIZE" default:"10"`
	CacheTTL  time.Duration `envconfig:"EMBEDDING_CACHE_TTL" default:"720h"`
	Timeout   time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"30s"`
}

// ChunkingConfig holds transcript chunking parameters, in characters
type ChunkingConfig struct {
	MaxSize            int `envconfig:"CHUNK_MAX_SIZE" default:"3000"`
	Overlap            int `envconfig:"CHUNK_OVERLAP" default:"200"`
	SentenceBucketSize int `envconfig:"CHUNK_SENTENCE_BUCKET_SIZE" default:"2000"`
}

// SimilarityConfig holds near-duplicate detection parameters
type SimilarityConfig struct {
	Threshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.5"`
	TopK      int     `envconfig:"SIMILARITY_TOP_K" default:"5"`
}

// PipelineConfig holds processing run parameters
type PipelineConfig struct {
	RunTimeout time.Duration `envconfig:"PIPELINE_RUN_TIMEOUT" default:"15m"`
}

// TagsConfig points at the tag vocabulary seed
type TagsConfig struct {
	SeedFile string `envconfig:"TAGS_SEED_FILE"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config, err := FromEnv()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnv populates every section from the process environment without
// reading .env or validating.
func FromEnv() (*Config, error) {
	config := &Config{}
	sections := []struct {
		name   string
		target interface{}
	}{
		{"server", &config.Server},
		{"database", &config.Database},
		{"redis", &config.Redis},
		{"storage", &config.Storage},
		{"extractor", &config.Extractor},
		{"embedding", &config.Embedding},
		{"chunking", &config.Chunking},
		{"similarity", &config.Similarity},
		{"pipeline", &config.Pipeline},
		{"tags", &config.Tags},
	}
	// Each section is processed without a prefix so the tags are the exact variable names
	for _, s := range sections {
		if err := envconfig.Process("", s.target); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}

	config.applyProviderDefaults()
	return config, nil
}

func (c *Config) applyProviderDefaults() {
	c.Extractor.Provider = strings.ToLower(strings.TrimSpace(c.Extractor.Provider))
	switch c.Extractor.Provider {
	case ProviderGroq:
		if c.Extractor.BaseURL == "" {
			c.Extractor.BaseURL = "https://api.groq.com/openai/v1"
		}
		if c.Extractor.Model == "" {
			c.Extractor.Model = "llama-3.3-70b-versatile"
		}
	case ProviderAnthropic:
		if c.Extractor.Model == "" {
			c.Extractor.Model = "claude-sonnet-4-5"
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}

	switch c.Extractor.Provider {
	case ProviderGroq, ProviderAnthropic:
	default:
		return fmt.Errorf("EXTRACTOR_PROVIDER must be %q or %q, got %q", ProviderGroq, ProviderAnthropic, c.Extractor.Provider)
	}
	if c.Extractor.APIKey == "" {
		return fmt.Errorf("EXTRACTOR_API_KEY is required")
	}
	if c.Extractor.RequestsPerMinute <= 0 {
		return fmt.Errorf("EXTRACTOR_RATE_PER_MINUTE must be positive")
	}

	if c.Embedding.Enabled {
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("EMBEDDING_API_KEY is required when EMBEDDING_ENABLED is set")
		}
		if c.Embedding.BatchSize <= 0 {
			return fmt.Errorf("EMBEDDING_BATCH_SIZE must be positive")
		}
	}

	if c.Chunking.MaxSize <= 0 {
		return fmt.Errorf("CHUNK_MAX_SIZE must be positive")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.MaxSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_MAX_SIZE)")
	}
	if c.Chunking.SentenceBucketSize <= 0 {
		return fmt.Errorf("CHUNK_SENTENCE_BUCKET_SIZE must be positive")
	}

	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in [0, 1]")
	}
	if c.Similarity.TopK <= 0 {
		return fmt.Errorf("SIMILARITY_TOP_K must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetServerAddr returns the HTTP listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
