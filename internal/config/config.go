package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/yswa-var/rfp-bid/internal/pkg/retry"
)

// embeddingDimensions is the vector width of the chunks.embedding column
// (migration 000001). The embeddings connector must produce vectors of this
// width or inserts fail.
const embeddingDimensions = 1536

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	LLMConnectorCfg        LLMConnectorConfig        `envPrefix:"LLM_"`
	EmbeddingsConnectorCfg EmbeddingsConnectorConfig `envPrefix:"EMBEDDINGS_"`
	CallbackConnectorCfg   CallbackConnectorConfig   `envPrefix:"CALLBACK_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Document ingestion configuration
	IngestCfg IngestConfig `envPrefix:"INGEST_"`

	// Corpus locations used by the one-time setup pass
	CorpusCfg CorpusConfig `envPrefix:"CORPUS_"`

	// Orchestration configuration
	OrchestratorCfg OrchestratorConfig `envPrefix:"ORCHESTRATOR_"`

	// Session store configuration
	SessionCfg SessionConfig `envPrefix:"SESSION_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Model            string               `env:"MODEL" envDefault:"gpt-4o-mini"`
	GenerateEndpoint string               `env:"GENERATE_ENDPOINT" envDefault:"/v1/generate"`
	Temperature      float64              `env:"TEMPERATURE" envDefault:"0.3"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type EmbeddingsConnectorConfig struct {
	HTTPClientConfig
	Model         string               `env:"MODEL" envDefault:"text-embedding-3-large"`
	EmbedEndpoint string               `env:"EMBED_ENDPOINT" envDefault:"/v1/embeddings"`
	Dimensions    int                  `env:"DIMENSIONS" envDefault:"1536"`
	MaxBatchSize  int                  `env:"MAX_BATCH_SIZE" envDefault:"64"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	CallbackEndpoint string               `env:"ENDPOINT" envDefault:"/callback"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// IngestConfig holds chunking pipeline parameters
type IngestConfig struct {
	ChunkSize          int  `env:"CHUNK_SIZE" envDefault:"1200"`
	ChunkOverlap       int  `env:"CHUNK_OVERLAP" envDefault:"300"`
	ImproveChunks      bool `env:"IMPROVE_CHUNKS" envDefault:"true"`
	MinMeaningfulChars int  `env:"MIN_MEANINGFUL_CHARS" envDefault:"20"`
	MinMeaningfulWords int  `env:"MIN_MEANINGFUL_WORDS" envDefault:"5"`
}

// CorpusConfig points at the reference document directories indexed by the
// one-time setup pass.
type CorpusConfig struct {
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"corpus/templates"`
	ExamplesDir  string `env:"EXAMPLES_DIR" envDefault:"corpus/examples"`
	SessionDir   string `env:"SESSION_DIR" envDefault:"corpus/session"`
}

// OrchestratorConfig holds supervisor and fan-out parameters
type OrchestratorConfig struct {
	RetrievalTopK   int           `env:"RETRIEVAL_TOP_K" envDefault:"3"`
	DraftWorkers    int           `env:"DRAFT_WORKERS" envDefault:"4"`
	SectionTimeout  time.Duration `env:"SECTION_TIMEOUT" envDefault:"120s"`
	PlannerDisabled bool          `env:"PLANNER_DISABLED" envDefault:"false"`
}

// SessionConfig holds session store parameters
type SessionConfig struct {
	CSVPath       string        `env:"CSV_PATH" envDefault:"sessions.csv"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"1h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.IngestCfg.ChunkSize < 100 {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_SIZE must be at least 100, got %d", cfg.IngestCfg.ChunkSize))
	}

	if cfg.IngestCfg.ChunkOverlap < 0 || cfg.IngestCfg.ChunkOverlap >= cfg.IngestCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("INGEST_CHUNK_OVERLAP must be between 0 and INGEST_CHUNK_SIZE(%d), got %d", cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap))
	}

	if cfg.EmbeddingsConnectorCfg.Dimensions != embeddingDimensions {
		errors = append(errors, fmt.Sprintf("EMBEDDINGS_DIMENSIONS must match the chunks embedding column width (%d), got %d", embeddingDimensions, cfg.EmbeddingsConnectorCfg.Dimensions))
	}

	if cfg.OrchestratorCfg.DraftWorkers < 1 || cfg.OrchestratorCfg.DraftWorkers > 16 {
		errors = append(errors, fmt.Sprintf("ORCHESTRATOR_DRAFT_WORKERS must be between 1 and 16, got %d", cfg.OrchestratorCfg.DraftWorkers))
	}

	if cfg.SessionCfg.Timeout < time.Minute {
		errors = append(errors, fmt.Sprintf("SESSION_TIMEOUT must be at least 1m, got %s", cfg.SessionCfg.Timeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", errors[0])
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
