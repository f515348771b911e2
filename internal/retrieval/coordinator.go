package retrieval

import (
	"context"
	"sort"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

// Purpose prefixes steer each store's similarity search toward what that
// store is for, independent of the raw requirement wording.
const (
	templatesQueryPrefix = "proposal template structure format "
	examplesQueryPrefix  = "similar rfp examples "
	sessionQueryPrefix   = "current rfp requirements "
)

// StoreQuerier answers ranked queries against one named store. Satisfied by
// the vector store manager.
type StoreQuerier interface {
	Query(ctx context.Context, store entity.StoreName, query string, k int) ([]entity.RetrievalResult, error)
	Status() entity.StoreStatus
}

// Coordinator fans one requirement out across the three knowledge stores and
// assembles the per-store contexts. A failing store contributes empty results
// instead of failing the whole retrieval.
type Coordinator struct {
	querier StoreQuerier
	topK    int
}

func NewCoordinator(querier StoreQuerier, topK int) *Coordinator {
	if topK <= 0 {
		topK = 3
	}
	return &Coordinator{querier: querier, topK: topK}
}

// QueryAll queries all three stores concurrently with purpose-augmented
// queries and returns a fresh RetrievalContext.
func (c *Coordinator) QueryAll(ctx context.Context, requirement string) (*entity.RetrievalContext, error) {
	rc := &entity.RetrievalContext{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rc.TemplateContext = c.queryStore(gctx, entity.StoreTemplates, templatesQueryPrefix+requirement)
		return nil
	})
	g.Go(func() error {
		rc.ExamplesContext = c.queryStore(gctx, entity.StoreExamples, examplesQueryPrefix+requirement)
		return nil
	})
	g.Go(func() error {
		rc.SessionContext = c.queryStore(gctx, entity.StoreSession, sessionQueryPrefix+requirement)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "retrieval context assembled",
		zap.Int("template_results", len(rc.TemplateContext)),
		zap.Int("examples_results", len(rc.ExamplesContext)),
		zap.Int("session_results", len(rc.SessionContext)))
	return rc, nil
}

// queryStore never propagates a store failure: the degraded store is logged
// and contributes nothing.
func (c *Coordinator) queryStore(ctx context.Context, store entity.StoreName, query string) []entity.RetrievalResult {
	results, err := c.querier.Query(ctx, store, query, c.topK)
	if err != nil {
		ctxzap.Warn(ctx, "store query failed, continuing without it",
			zap.String("store", string(store)),
			zap.Error(err))
		return nil
	}
	return results
}

// Status reports which stores are currently usable.
func (c *Coordinator) Status() entity.StoreStatus {
	return c.querier.Status()
}

// MergeTopK flattens a retrieval context into the k globally most relevant
// results, sorted by descending relevance. Ranks are reassigned after the
// merge. Ties keep templates before examples before session.
func MergeTopK(rc *entity.RetrievalContext, k int) []entity.RetrievalResult {
	merged := make([]entity.RetrievalResult, 0, rc.TotalResults())
	merged = append(merged, rc.TemplateContext...)
	merged = append(merged, rc.ExamplesContext...)
	merged = append(merged, rc.SessionContext...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Relevance > merged[j].Relevance
	})

	if len(merged) > k {
		merged = merged[:k]
	}
	for i := range merged {
		merged[i].Rank = i + 1
	}
	return merged
}
