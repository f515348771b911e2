package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/repository"
)

// Embedder turns text into vectors. Satisfied by the embeddings connector
// and its mock.
type Embedder interface {
	EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// distanceScale maps L2 distance onto a bounded relevance score:
// relevance = max(0, 1 - distance/distanceScale).
const distanceScale = 10.0

const previewLength = 200

// Manager owns the named vector stores. Indexing replaces a store's contents
// wholesale; queries against a store that was never indexed return empty
// results rather than failing.
type Manager struct {
	repo     repository.ChunkRepository
	embedder Embedder

	mu    sync.Mutex
	ready map[entity.StoreName]bool

	// One writer per store: concurrent Index calls against the same store
	// serialize instead of interleaving delete+insert batches.
	indexMu map[entity.StoreName]*sync.Mutex
}

func NewManager(repo repository.ChunkRepository, embedder Embedder) *Manager {
	indexMu := make(map[entity.StoreName]*sync.Mutex, len(entity.AllStores()))
	for _, store := range entity.AllStores() {
		indexMu[store] = &sync.Mutex{}
	}
	return &Manager{
		repo:     repo,
		embedder: embedder,
		ready:    make(map[entity.StoreName]bool),
		indexMu:  indexMu,
	}
}

// Refresh re-derives per-store readiness from persisted chunk counts. Called
// once at startup so stores indexed by a previous run stay usable.
func (m *Manager) Refresh(ctx context.Context) error {
	for _, store := range entity.AllStores() {
		count, err := m.repo.CountByStore(ctx, store)
		if err != nil {
			return fmt.Errorf("refresh store %s: %w", store, err)
		}
		m.setReady(store, count > 0)
	}
	return nil
}

// Index embeds a chunk batch and replaces the named store's contents with
// it. Indexing the same store twice keeps only the second batch.
func (m *Manager) Index(ctx context.Context, store entity.StoreName, chunks []entity.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: store %s", entity.ErrEmptyChunkSet, store)
	}

	if lock, ok := m.indexMu[store]; ok {
		lock.Lock()
		defer lock.Unlock()
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks for store %s: %w", store, err)
	}

	if err := m.repo.ReplaceStore(ctx, store, chunks, embeddings); err != nil {
		return fmt.Errorf("replace store %s: %w", store, err)
	}

	m.setReady(store, true)

	ctxzap.Info(ctx, "store indexed",
		zap.String("store", string(store)),
		zap.Int("chunks", len(chunks)))
	return nil
}

// Query returns up to k ranked results from the named store. An uninitialized
// store yields empty results and a warning, so callers can degrade instead of
// aborting.
func (m *Manager) Query(ctx context.Context, store entity.StoreName, query string, k int) ([]entity.RetrievalResult, error) {
	if !m.isReady(store) {
		ctxzap.Warn(ctx, "query against uninitialized store",
			zap.String("store", string(store)))
		return nil, nil
	}

	embedding, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query for store %s: %w", store, err)
	}

	matches, err := m.repo.SearchNearest(ctx, store, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search store %s: %w", store, err)
	}

	results := make([]entity.RetrievalResult, 0, len(matches))
	for i, match := range matches {
		results = append(results, entity.RetrievalResult{
			Rank:       i + 1,
			Content:    match.Chunk.Text,
			Preview:    preview(match.Chunk.Text),
			SourceFile: match.Chunk.FileName,
			Page:       match.Chunk.Page,
			Relevance:  Relevance(match.Distance),
			Distance:   match.Distance,
		})
	}
	return results, nil
}

// Status reports per-store readiness.
func (m *Manager) Status() entity.StoreStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entity.StoreStatus{
		TemplatesReady: m.ready[entity.StoreTemplates],
		ExamplesReady:  m.ready[entity.StoreExamples],
		SessionReady:   m.ready[entity.StoreSession],
	}
}

// Info describes one store's persisted state.
func (m *Manager) Info(ctx context.Context, store entity.StoreName) (entity.StoreInfo, error) {
	count, err := m.repo.CountByStore(ctx, store)
	if err != nil {
		return entity.StoreInfo{}, fmt.Errorf("describe store %s: %w", store, err)
	}
	return entity.StoreInfo{
		Name:       store,
		ChunkCount: count,
		Ready:      m.isReady(store),
	}, nil
}

// Relevance converts an L2 distance into a score in [0,1]; distances past
// the scale floor at zero.
func Relevance(distance float64) float64 {
	score := 1 - distance/distanceScale
	if score < 0 {
		return 0
	}
	return score
}

func (m *Manager) setReady(store entity.StoreName, ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready[store] = ready
}

func (m *Manager) isReady(store entity.StoreName) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready[store]
}

func preview(text string) string {
	if len(text) <= previewLength {
		return text
	}
	return text[:previewLength] + "..."
}
