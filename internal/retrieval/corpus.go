package retrieval

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/ingest"
)

// StoreIndexer replaces one named store's contents with a chunk batch.
// Satisfied by the vector store manager.
type StoreIndexer interface {
	Index(ctx context.Context, store entity.StoreName, chunks []entity.Chunk) error
	Status() entity.StoreStatus
}

// CorpusIndexer runs the one-time setup pass: parse each configured corpus
// directory, chunk it, and index it into its store.
type CorpusIndexer struct {
	cfg      config.CorpusConfig
	parser   *ingest.Parser
	pipeline *ingest.Pipeline
	indexer  StoreIndexer
}

func NewCorpusIndexer(cfg config.CorpusConfig, parser *ingest.Parser, pipeline *ingest.Pipeline, indexer StoreIndexer) *CorpusIndexer {
	return &CorpusIndexer{
		cfg:      cfg,
		parser:   parser,
		pipeline: pipeline,
		indexer:  indexer,
	}
}

// EnsureReady indexes every store that is not yet ready from its corpus
// directory. A store whose directory is missing or empty is skipped with a
// warning. Returns entity.ErrNoStoresReady when no store is usable
// afterwards.
func (ci *CorpusIndexer) EnsureReady(ctx context.Context) error {
	status := ci.indexer.Status()
	pending := map[entity.StoreName]string{}
	if !status.TemplatesReady {
		pending[entity.StoreTemplates] = ci.cfg.TemplatesDir
	}
	if !status.ExamplesReady {
		pending[entity.StoreExamples] = ci.cfg.ExamplesDir
	}
	if !status.SessionReady {
		pending[entity.StoreSession] = ci.cfg.SessionDir
	}

	for _, store := range entity.AllStores() {
		dir, ok := pending[store]
		if !ok {
			continue
		}
		if err := ci.IndexDirectory(ctx, store, dir); err != nil {
			ctxzap.Warn(ctx, "store setup skipped",
				zap.String("store", string(store)),
				zap.String("dir", dir),
				zap.Error(err))
		}
	}

	if !ci.indexer.Status().AnyReady() {
		return entity.ErrNoStoresReady
	}
	return nil
}

// IndexDirectory parses, chunks and indexes one directory into one store.
func (ci *CorpusIndexer) IndexDirectory(ctx context.Context, store entity.StoreName, dir string) error {
	docs, err := ci.parser.ParseDirectory(ctx, dir)
	if err != nil {
		return fmt.Errorf("parse corpus for store %s: %w", store, err)
	}

	chunks, err := ci.pipeline.Process(ctx, docs)
	if err != nil {
		return fmt.Errorf("chunk corpus for store %s: %w", store, err)
	}

	if err := ci.indexer.Index(ctx, store, chunks); err != nil {
		return err
	}

	stats := ingest.Stats(chunks)
	ctxzap.Info(ctx, "corpus indexed",
		zap.String("store", string(store)),
		zap.String("dir", dir),
		zap.Int("documents", len(docs)),
		zap.Int("chunks", stats.TotalChunks),
		zap.Float64("avg_chunk_length", stats.AvgChunkLength))
	return nil
}
