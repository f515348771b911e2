package callback

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

const (
	StatusAwaitingApproval = "awaiting_approval"
	StatusCompleted        = "completed"
	StatusFailed           = "failed"
)

type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// NotifyAwaitingApproval tells the front end that a workflow is paused on a
// human approval gate. Delivery failures are logged, not propagated: the
// workflow state is authoritative and the front end can always poll.
func (c *Connector) NotifyAwaitingApproval(ctx context.Context, sessionID, message string) {
	c.send(ctx, &entity.CallbackPayload{
		SessionID: sessionID,
		Status:    StatusAwaitingApproval,
		Message:   message,
	})
}

// NotifyCompleted tells the front end that a proposal is ready.
func (c *Connector) NotifyCompleted(ctx context.Context, sessionID, message string, details map[string]any) {
	c.send(ctx, &entity.CallbackPayload{
		SessionID: sessionID,
		Status:    StatusCompleted,
		Message:   message,
		Details:   details,
	})
}

// NotifyFailed tells the front end that a workflow failed.
func (c *Connector) NotifyFailed(ctx context.Context, sessionID, message string, details map[string]any) {
	c.send(ctx, &entity.CallbackPayload{
		SessionID: sessionID,
		Status:    StatusFailed,
		Message:   message,
		Details:   details,
	})
}

func (c *Connector) send(ctx context.Context, payload *entity.CallbackPayload) {
	if c.config.Url == "" {
		ctxzap.Debug(ctx, "no callback URL configured, skipping notification",
			zap.String("status", payload.Status))
		return
	}

	err := c.config.Retry.Do(ctx, func() error {
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.CallbackEndpoint, payload, nil)
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send callback",
			zap.String("session_id", payload.SessionID),
			zap.String("status", payload.Status),
			zap.Error(fmt.Errorf("callback delivery: %w", err)))
		return
	}

	ctxzap.Info(ctx, "callback sent",
		zap.String("session_id", payload.SessionID),
		zap.String("status", payload.Status))
}
