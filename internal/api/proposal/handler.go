package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/pkg/logger"
	"github.com/yswa-var/rfp-bid/internal/pkg/response"
)

const storeCacheKey = "stores"

type Handler struct {
	usecase    ProposalUsecase
	storeCache *cache.Cache
}

func NewHandler(usecase ProposalUsecase) *Handler {
	return &Handler{
		usecase:    usecase,
		storeCache: cache.New(30*time.Second, time.Minute),
	}
}

// Generate handles POST /proposals
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Generate")

	var req entity.GenerateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctxzap.Info(ctx, "generating proposal",
		zap.String("user_id", req.UserID),
		zap.String("platform", req.Platform),
		zap.Int("requirement_length", len(req.Requirement)),
	)

	result, err := h.usecase.Generate(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "proposal drafted",
		zap.String("session_id", result.SessionID),
		zap.Int("fallback_count", result.FallbackCount),
	)
	response.Accepted(w, result)
}

// Decide handles POST /proposals/{session_id}/approval
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "Decide"),
	)

	var req entity.ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Approved == nil {
		ctxzap.Warn(ctx, "approval decision missing")
		response.Error(w, http.StatusBadRequest, "approved field is required")
		return
	}

	ctxzap.Info(ctx, "resolving approval gate", zap.Bool("approved", *req.Approved))

	artifact, err := h.usecase.Approve(ctx, sessionID, *req.Approved)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if artifact == nil {
		ctxzap.Info(ctx, "proposal rejected")
		response.Success(w, &entity.ApprovalResponse{
			SessionID: sessionID,
			Status:    "rejected",
		})
		return
	}

	ctxzap.Info(ctx, "proposal approved",
		zap.String("content_type", artifact.ContentType),
		zap.Int("bytes", len(artifact.Data)),
	)
	response.Success(w, &entity.ApprovalResponse{
		SessionID:   sessionID,
		Status:      "completed",
		ContentType: artifact.ContentType,
		ArtifactURL: fmt.Sprintf("/api/v1/proposals/%s/artifact", sessionID),
	})
}

// Status handles GET /proposals/{session_id}
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "Status"),
	)

	ctxzap.Debug(ctx, "fetching proposal status")

	status, err := h.usecase.Status(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, status)
}

// Download handles GET /proposals/{session_id}/artifact
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "session_id")

	ctx = logger.AddFields(ctx,
		zap.String("session_id", sessionID),
		zap.String("action", "Download"),
	)

	artifact, err := h.usecase.Artifact(sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "serving proposal artifact",
		zap.String("content_type", artifact.ContentType),
		zap.Int("bytes", len(artifact.Data)),
	)

	fileName := fmt.Sprintf("proposal-%s%s", sessionID, artifact.FileExtension)
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

// ListStores handles GET /stores
func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListStores")

	if cached, ok := h.storeCache.Get(storeCacheKey); ok {
		response.Success(w, cached)
		return
	}

	infos, err := h.usecase.Stores(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.storeCache.Set(storeCacheKey, infos, cache.DefaultExpiration)

	ctxzap.Info(ctx, "stores listed", zap.Int("count", len(infos)))
	response.Success(w, infos)
}

// Reindex handles POST /stores/reindex
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Reindex")

	var req entity.ReindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctxzap.Info(ctx, "reindexing store",
		zap.String("store", req.Store),
		zap.String("directory", req.Directory),
	)

	if err := h.usecase.Reindex(ctx, req.Store, req.Directory); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.storeCache.Delete(storeCacheKey)

	ctxzap.Info(ctx, "store reindexed")
	response.Success(w, map[string]string{
		"status": "reindexed",
		"store":  req.Store,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	if errors.Is(err, entity.ErrSessionNotFound) {
		response.Error(w, http.StatusNotFound, "resource not found")
	} else if errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField) {
		response.Error(w, http.StatusBadRequest, err.Error())
	} else if errors.Is(err, entity.ErrNoPendingApproval) || errors.Is(err, entity.ErrWorkflowFinalized) {
		response.Error(w, http.StatusConflict, err.Error())
	} else {
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
