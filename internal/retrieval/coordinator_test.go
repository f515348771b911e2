package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

type fakeQuerier struct {
	results map[entity.StoreName][]entity.RetrievalResult
	failing map[entity.StoreName]error
	queries map[entity.StoreName]string
	status  entity.StoreStatus
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		results: make(map[entity.StoreName][]entity.RetrievalResult),
		failing: make(map[entity.StoreName]error),
		queries: make(map[entity.StoreName]string),
	}
}

func (f *fakeQuerier) Query(_ context.Context, store entity.StoreName, query string, _ int) ([]entity.RetrievalResult, error) {
	f.queries[store] = query
	if err := f.failing[store]; err != nil {
		return nil, err
	}
	return f.results[store], nil
}

func (f *fakeQuerier) Status() entity.StoreStatus {
	return f.status
}

func resultsWithRelevance(relevances ...float64) []entity.RetrievalResult {
	out := make([]entity.RetrievalResult, len(relevances))
	for i, rel := range relevances {
		out[i] = entity.RetrievalResult{Rank: i + 1, Relevance: rel, Content: "chunk"}
	}
	return out
}

func TestQueryAllUsesPurposeQueries(t *testing.T) {
	q := newFakeQuerier()
	c := NewCoordinator(q, 3)

	_, err := c.QueryAll(context.Background(), "data center migration")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(q.queries[entity.StoreTemplates], "proposal template structure format "))
	assert.True(t, strings.HasPrefix(q.queries[entity.StoreExamples], "similar rfp examples "))
	assert.True(t, strings.HasPrefix(q.queries[entity.StoreSession], "current rfp requirements "))
	for _, query := range q.queries {
		assert.True(t, strings.HasSuffix(query, "data center migration"))
	}
}

func TestQueryAllToleratesFailingStore(t *testing.T) {
	q := newFakeQuerier()
	q.results[entity.StoreTemplates] = resultsWithRelevance(0.9)
	q.failing[entity.StoreExamples] = errors.New("connection refused")
	q.results[entity.StoreSession] = resultsWithRelevance(0.4)

	c := NewCoordinator(q, 3)
	rc, err := c.QueryAll(context.Background(), "requirement")
	require.NoError(t, err, "one degraded store must not fail retrieval")

	assert.Len(t, rc.TemplateContext, 1)
	assert.Empty(t, rc.ExamplesContext)
	assert.Len(t, rc.SessionContext, 1)
	assert.Equal(t, 2, rc.TotalResults())
}

func TestMergeTopK(t *testing.T) {
	rc := &entity.RetrievalContext{
		TemplateContext: resultsWithRelevance(0.9, 0.7, 0.5),
		ExamplesContext: resultsWithRelevance(0.8, 0.6),
	}

	merged := MergeTopK(rc, 4)
	require.Len(t, merged, 4)

	relevances := make([]float64, len(merged))
	for i, r := range merged {
		relevances[i] = r.Relevance
		assert.Equal(t, i+1, r.Rank, "ranks must be reassigned after merge")
	}
	assert.Equal(t, []float64{0.9, 0.8, 0.7, 0.6}, relevances)
}

func TestMergeTopKFewerThanK(t *testing.T) {
	rc := &entity.RetrievalContext{
		SessionContext: resultsWithRelevance(0.3),
	}

	merged := MergeTopK(rc, 10)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].Rank)
}

func TestMergeTopKEmpty(t *testing.T) {
	assert.Empty(t, MergeTopK(&entity.RetrievalContext{}, 5))
}
