package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"swiftvisa"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"swiftvisa"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	// Corpus & index artifacts
	CorpusDir    string `envconfig:"CORPUS_DIR" default:"data/corpus"`
	IndexBackend string `envconfig:"INDEX_BACKEND" default:"flat"`
	IndexPath    string `envconfig:"INDEX_PATH" default:"data/index/visa_index.bin"`
	MetadataPath string `envconfig:"METADATA_PATH" default:"data/index/visa_metadata.json"`

	// Segmentation. Window and overlap are counted in whitespace tokens.
	ChunkWindow  int `envconfig:"CHUNK_WINDOW" default:"300"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`

	// Retrieval
	RetrievalK int `envconfig:"RETRIEVAL_K" default:"5"`

	// External models
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"llama-3.1-8b-instant"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GroqAPIKey      string `envconfig:"GROQ_API_KEY"`

	// Confidence calibration bounds (verdict -> adjusted confidence)
	ConfidenceCapYes    float64 `envconfig:"CONFIDENCE_CAP_YES" default:"0.9"`
	ConfidenceCapNo     float64 `envconfig:"CONFIDENCE_CAP_NO" default:"0.85"`
	ConfidenceAmbiguous float64 `envconfig:"CONFIDENCE_AMBIGUOUS" default:"0.3"`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8081"`
	DecisionLogPath string `envconfig:"DECISION_LOG_PATH" default:"data/logs/decisions.jsonl"`
	MigrationPath   string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	EnableAPI           bool `envconfig:"ENABLE_API" default:"true"`
	EnableRebuildWorker bool `envconfig:"ENABLE_REBUILD_WORKER" default:"true"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root.
	// Ignore errors, as env vars might be set in the shell.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChunkWindow <= 0 {
		return fmt.Errorf("%w: CHUNK_WINDOW must be positive", ErrInvalidValue)
	}
	// An overlap >= window would never advance the segmentation window.
	if c.ChunkOverlap <= 0 || c.ChunkOverlap >= c.ChunkWindow {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in (0, CHUNK_WINDOW)", ErrInvalidValue)
	}
	if c.RetrievalK <= 0 {
		return fmt.Errorf("%w: RETRIEVAL_K must be positive", ErrInvalidValue)
	}
	if c.IndexBackend != "flat" && c.IndexBackend != "weaviate" {
		return fmt.Errorf("%w: INDEX_BACKEND must be flat or weaviate", ErrInvalidValue)
	}
	for _, b := range []float64{c.ConfidenceCapYes, c.ConfidenceCapNo, c.ConfidenceAmbiguous} {
		if b < 0 || b > 1 {
			return fmt.Errorf("%w: confidence bounds must be in [0,1]", ErrInvalidValue)
		}
	}
	return nil
}
