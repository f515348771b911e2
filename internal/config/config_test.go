package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	cfg := &Config{
		DatabaseURL: "postgres://localhost/rfp",
		DBMaxConns:  25,
		DBMinConns:  5,
	}
	cfg.EmbeddingsConnectorCfg.Dimensions = 1536
	cfg.IngestCfg = IngestConfig{
		ChunkSize:          1200,
		ChunkOverlap:       300,
		MinMeaningfulChars: 20,
		MinMeaningfulWords: 5,
	}
	cfg.OrchestratorCfg = OrchestratorConfig{
		RetrievalTopK:  3,
		DraftWorkers:   4,
		SectionTimeout: 2 * time.Minute,
	}
	cfg.SessionCfg = SessionConfig{
		Timeout:       time.Hour,
		SweepInterval: 5 * time.Minute,
	}
	return cfg
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"overlap at least chunk size", func(c *Config) { c.IngestCfg.ChunkOverlap = c.IngestCfg.ChunkSize }},
		{"min conns above max conns", func(c *Config) { c.DBMinConns = c.DBMaxConns + 1 }},
		{"too many draft workers", func(c *Config) { c.OrchestratorCfg.DraftWorkers = 64 }},
		{"session timeout too short", func(c *Config) { c.SessionCfg.Timeout = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestValidateConfigPinsEmbeddingDimensions(t *testing.T) {
	cfg := validTestConfig()
	cfg.EmbeddingsConnectorCfg.Dimensions = 3072

	err := validateConfig(cfg)
	assert.ErrorContains(t, err, "EMBEDDINGS_DIMENSIONS",
		"the chunks table pins the embedding width, so a mismatch must fail at startup")
}
