package llm

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
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Generate runs one completion against the language-generation provider.
func (c *Connector) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Debug(ctx, "generating text via LLM service", zap.Int("prompt_length", len(prompt)))

	req := &entity.LLMGenerateRequest{
		Prompt:      prompt,
		Temperature: c.config.Temperature,
	}

	var resp entity.LLMGenerateResponse
	err := c.config.Retry.Do(ctx, func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.GenerateEndpoint, req, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("generate failed: %w", err)
	}

	if resp.Result == "" {
		return "", fmt.Errorf("invalid generate response: empty or missing result field")
	}

	ctxzap.Debug(ctx, "text generated successfully", zap.Int("result_length", len(resp.Result)))

	return resp.Result, nil
}
