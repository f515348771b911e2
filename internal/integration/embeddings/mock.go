package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector embeds text deterministically without a provider: each word
// hashes into a bucket of a fixed-size vector, which is then L2-normalized.
// Texts sharing vocabulary land near each other, which is enough for local
// development and tests.
type MockConnector struct {
	dimensions int
	logger     *zap.Logger
}

func NewMockConnector(dimensions int, logger *zap.Logger) *MockConnector {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &MockConnector{
		dimensions: dimensions,
		logger:     logger,
	}
}

func (m *MockConnector) EmbedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	ctxzap.Info(ctx, "[MOCK] embedding batch", zap.Int("input_count", len(inputs)))

	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		out[i] = m.embed(in)
	}
	return out, nil
}

func (m *MockConnector) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return m.embed(query), nil
}

func (m *MockConnector) embed(text string) []float32 {
	vec := make([]float32, m.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%m.dimensions]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
