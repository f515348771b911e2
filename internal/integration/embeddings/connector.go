package embeddings

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/integration/common"
	pkghttp "github.com/yswa-var/rfp-bid/pkg/http"
)

type Connector struct {
	config    config.EmbeddingsConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingsConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// EmbedBatch embeds a batch of texts, splitting it into provider-sized
// sub-batches. The returned vectors are in input order.
func (c *Connector) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ctxzap.Debug(ctx, "embedding batch via embeddings service", zap.Int("input_count", len(inputs)))

	out := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += c.config.MaxBatchSize {
		end := start + c.config.MaxBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		vectors, err := c.embed(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}

	ctxzap.Debug(ctx, "batch embedded successfully", zap.Int("vector_count", len(out)))

	return out, nil
}

// EmbedQuery embeds a single query string.
func (c *Connector) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Connector) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	req := &entity.EmbeddingsRequest{
		Model: c.config.Model,
		Input: inputs,
	}

	var resp entity.EmbeddingsResponse
	err := c.config.Retry.Do(ctx, func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.EmbedEndpoint, req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}

	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("invalid embeddings response: got %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	vectors := make([][]float32, len(inputs))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(inputs) {
			return nil, fmt.Errorf("invalid embeddings response: index %d out of range", item.Index)
		}
		if len(item.Embedding) != c.config.Dimensions {
			return nil, fmt.Errorf("invalid embeddings response: dimension %d, expected %d", len(item.Embedding), c.config.Dimensions)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
