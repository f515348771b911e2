package vectorstore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

type fakeChunkRepo struct {
	stores map[entity.StoreName][]entity.ChunkMatch
}

func newFakeChunkRepo() *fakeChunkRepo {
	return &fakeChunkRepo{stores: make(map[entity.StoreName][]entity.ChunkMatch)}
}

func (f *fakeChunkRepo) ReplaceStore(_ context.Context, store entity.StoreName, chunks []entity.Chunk, _ [][]float32) error {
	matches := make([]entity.ChunkMatch, len(chunks))
	for i, c := range chunks {
		matches[i] = entity.ChunkMatch{Chunk: c, Distance: float64(i)}
	}
	f.stores[store] = matches
	return nil
}

func (f *fakeChunkRepo) SearchNearest(_ context.Context, store entity.StoreName, _ []float32, k int) ([]entity.ChunkMatch, error) {
	matches := f.stores[store]
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (f *fakeChunkRepo) CountByStore(_ context.Context, store entity.StoreName) (int, error) {
	return len(f.stores[store]), nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedBatch(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func testChunks(n int) []entity.Chunk {
	chunks := make([]entity.Chunk, n)
	for i := range chunks {
		chunks[i] = entity.Chunk{
			ID:       "chunk-" + string(rune('a'+i)),
			Text:     "The vendor shall provide managed services under the agreement.",
			FileName: "rfp.pdf",
			Page:     i + 1,
		}
	}
	return chunks
}

func TestManagerIndexEmptyChunkSet(t *testing.T) {
	m := NewManager(newFakeChunkRepo(), fakeEmbedder{})

	err := m.Index(context.Background(), entity.StoreTemplates, nil)
	assert.ErrorIs(t, err, entity.ErrEmptyChunkSet)
	assert.False(t, m.Status().TemplatesReady)
}

func TestManagerIndexReplacesStore(t *testing.T) {
	repo := newFakeChunkRepo()
	m := NewManager(repo, fakeEmbedder{})
	ctx := context.Background()

	require.NoError(t, m.Index(ctx, entity.StoreTemplates, testChunks(5)))
	require.NoError(t, m.Index(ctx, entity.StoreTemplates, testChunks(2)))

	info, err := m.Info(ctx, entity.StoreTemplates)
	require.NoError(t, err)
	assert.Equal(t, 2, info.ChunkCount, "re-indexing must replace, not merge")
	assert.True(t, info.Ready)
}

func TestManagerQueryUninitializedStore(t *testing.T) {
	m := NewManager(newFakeChunkRepo(), fakeEmbedder{})

	results, err := m.Query(context.Background(), entity.StoreExamples, "network migration", 3)
	require.NoError(t, err, "uninitialized store must degrade, not fail")
	assert.Empty(t, results)
}

func TestManagerQueryRanksResults(t *testing.T) {
	m := NewManager(newFakeChunkRepo(), fakeEmbedder{})
	ctx := context.Background()

	require.NoError(t, m.Index(ctx, entity.StoreTemplates, testChunks(4)))

	results, err := m.Query(ctx, entity.StoreTemplates, "managed services", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.LessOrEqual(t, r.Relevance, results[i-1].Relevance)
		}
	}
}

func TestManagerStatusTracksIndexedStores(t *testing.T) {
	m := NewManager(newFakeChunkRepo(), fakeEmbedder{})
	ctx := context.Background()

	require.NoError(t, m.Index(ctx, entity.StoreTemplates, testChunks(1)))
	require.NoError(t, m.Index(ctx, entity.StoreSession, testChunks(1)))

	status := m.Status()
	assert.True(t, status.TemplatesReady)
	assert.False(t, status.ExamplesReady)
	assert.True(t, status.SessionReady)
	assert.Equal(t, 2, status.ReadyCount())
	assert.True(t, status.AnyReady())
}

func TestManagerRefresh(t *testing.T) {
	repo := newFakeChunkRepo()
	require.NoError(t, repo.ReplaceStore(context.Background(), entity.StoreExamples, testChunks(3), nil))

	m := NewManager(repo, fakeEmbedder{})
	require.NoError(t, m.Refresh(context.Background()))

	status := m.Status()
	assert.True(t, status.ExamplesReady, "persisted chunks must survive a restart")
	assert.False(t, status.TemplatesReady)
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		distance float64
		expected float64
	}{
		{0, 1},
		{2.5, 0.75},
		{5, 0.5},
		{10, 0},
		{25, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, Relevance(tt.distance), 1e-9)
	}
}

func TestPreviewTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	assert.Len(t, preview(long), previewLength+3)
	assert.True(t, strings.HasSuffix(preview(long), "..."))

	short := "brief content"
	assert.Equal(t, short, preview(short))
}
