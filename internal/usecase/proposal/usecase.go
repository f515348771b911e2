package proposal

import (
	"context"
	"fmt"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/pkg/assembly"
	"github.com/yswa-var/rfp-bid/internal/pkg/validator"
)

const (
	StatusAwaitingApproval = "awaiting_approval"
	StatusCompleted        = "completed"
	StatusRejected         = "rejected"
	StatusInProgress       = "in_progress"
)

// ProposalUsecase drives the proposal lifecycle: start a workflow, park it on
// the human approval gate, resume it into a rendered artifact, and expose
// store administration.
type ProposalUsecase struct {
	workflow  Workflow
	sessions  SessionStore
	stores    StoreAdmin
	reindexer Reindexer
	notifier  Notifier
	assembler *assembly.Factory
	validator *validator.Validator
	logger    *zap.Logger

	mu        sync.Mutex
	runs      map[string]*entity.WorkflowState
	artifacts map[string]*entity.ProposalArtifact
}

func NewUsecase(
	workflow Workflow,
	sessions SessionStore,
	stores StoreAdmin,
	reindexer Reindexer,
	notifier Notifier,
	assembler *assembly.Factory,
	validator *validator.Validator,
	logger *zap.Logger,
) *ProposalUsecase {
	return &ProposalUsecase{
		workflow:  workflow,
		sessions:  sessions,
		stores:    stores,
		reindexer: reindexer,
		notifier:  notifier,
		assembler: assembler,
		validator: validator,
		logger:    logger,
		runs:      make(map[string]*entity.WorkflowState),
		artifacts: make(map[string]*entity.ProposalArtifact),
	}
}

// Generate runs the drafting workflow for a requirement and parks the result
// on the session's approval gate. The rendered artifact is only produced
// after Approve.
func (uc *ProposalUsecase) Generate(ctx context.Context, req *entity.GenerateProposalRequest) (*entity.GenerateProposalResult, error) {
	if err := uc.validator.ValidateGenerate(req.UserID, req.Platform, req.Requirement); err != nil {
		return nil, err
	}
	if req.Format == "" {
		req.Format = entity.FormatMarkdown
	}
	if err := req.Format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: format %q", entity.ErrInvalidParameter, req.Format)
	}

	sess, err := uc.sessions.GetOrCreate(req.UserID, req.Platform)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	ctxzap.Info(ctx, "proposal workflow started",
		zap.String("session_id", sess.ID),
		zap.Int("requirement_length", len(req.Requirement)))

	state, err := uc.workflow.Run(ctx, req.Requirement)
	if err != nil {
		uc.notifier.NotifyFailed(ctx, sess.ID, "proposal drafting failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("run workflow: %w", err)
	}

	fallbacks := 0
	for _, resp := range state.TeamResponses {
		if resp.Fallback {
			fallbacks++
		}
	}

	uc.mu.Lock()
	uc.runs[sess.ID] = state
	delete(uc.artifacts, sess.ID)
	uc.mu.Unlock()

	if err := uc.sessions.SetPendingApproval(sess.ID, map[string]any{
		"action": "approve_proposal",
		"format": string(req.Format),
	}); err != nil {
		return nil, fmt.Errorf("park approval: %w", err)
	}
	if err := uc.sessions.UpdateMetadata(sess.ID, map[string]any{
		"requirement": req.Requirement,
		"status":      StatusAwaitingApproval,
	}); err != nil {
		return nil, fmt.Errorf("record requirement: %w", err)
	}

	uc.notifier.NotifyAwaitingApproval(ctx, sess.ID, "proposal draft ready for review")

	ctxzap.Info(ctx, "proposal awaiting approval",
		zap.String("session_id", sess.ID),
		zap.Int("fallback_sections", fallbacks))

	return &entity.GenerateProposalResult{
		SessionID:       sess.ID,
		Status:          StatusAwaitingApproval,
		TeamSequence:    state.TeamSequence,
		FallbackCount:   fallbacks,
		PendingApproval: true,
	}, nil
}

// Approve resolves a session's approval gate. When approved, the workflow is
// finalized exactly once and the artifact rendered in the format chosen at
// generation time; the gate is consumed only once the artifact is in hand, so
// a failed compose or render leaves the session approvable again. When
// rejected, the parked run is discarded.
func (uc *ProposalUsecase) Approve(ctx context.Context, sessionID string, approved bool) (*entity.ProposalArtifact, error) {
	sess, err := uc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.HasPendingApproval() {
		return nil, fmt.Errorf("%w: session %s", entity.ErrNoPendingApproval, sessionID)
	}

	uc.mu.Lock()
	state, ok := uc.runs[sessionID]
	uc.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no parked workflow for session %s", entity.ErrSessionNotFound, sessionID)
	}

	if !approved {
		if _, err := uc.sessions.ClearPendingApproval(sessionID); err != nil {
			return nil, err
		}
		uc.mu.Lock()
		delete(uc.runs, sessionID)
		uc.mu.Unlock()

		if err := uc.sessions.UpdateMetadata(sessionID, map[string]any{"status": StatusRejected}); err != nil {
			return nil, fmt.Errorf("record rejection: %w", err)
		}
		uc.notifier.NotifyFailed(ctx, sessionID, "proposal rejected by reviewer", nil)
		ctxzap.Info(ctx, "proposal rejected", zap.String("session_id", sessionID))
		return nil, nil
	}

	format := entity.FormatMarkdown
	if raw, ok := sess.PendingApproval["format"].(string); ok && raw != "" {
		format = entity.ResultFormat(raw)
	}
	formatter, err := uc.assembler.Create(format)
	if err != nil {
		return nil, fmt.Errorf("create formatter: %w", err)
	}

	proposal, err := uc.workflow.ComposeFinal(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("compose proposal: %w", err)
	}
	data, err := formatter.Format(proposal)
	if err != nil {
		// Let a retry compose again instead of hitting the finalized gate.
		state.ProposalGenerated = false
		return nil, fmt.Errorf("render proposal: %w", err)
	}

	if _, err := uc.sessions.ClearPendingApproval(sessionID); err != nil {
		return nil, err
	}

	artifact := &entity.ProposalArtifact{
		SessionID:     sessionID,
		Data:          data,
		ContentType:   formatter.ContentType(),
		FileExtension: formatter.FileExtension(),
		GeneratedAt:   proposal.GeneratedAt,
	}

	uc.mu.Lock()
	uc.artifacts[sessionID] = artifact
	uc.mu.Unlock()

	if err := uc.sessions.UpdateMetadata(sessionID, map[string]any{"status": StatusCompleted}); err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}
	uc.notifier.NotifyCompleted(ctx, sessionID, "proposal generated", map[string]any{
		"format":   string(format),
		"sections": len(proposal.Sections),
	})

	ctxzap.Info(ctx, "proposal generated",
		zap.String("session_id", sessionID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)))
	return artifact, nil
}

// Status reports a session's workflow progress.
func (uc *ProposalUsecase) Status(ctx context.Context, sessionID string) (*entity.ProposalStatusResult, error) {
	sess, err := uc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	state := uc.runs[sessionID]
	_, hasArtifact := uc.artifacts[sessionID]
	uc.mu.Unlock()

	result := &entity.ProposalStatusResult{
		SessionID:       sess.ID,
		UserID:          sess.UserID,
		Platform:        sess.Platform,
		PendingApproval: sess.HasPendingApproval(),
		LastActivity:    sess.LastActivity,
	}

	switch {
	case hasArtifact:
		result.Status = StatusCompleted
		result.ProposalGenerated = true
	case sess.HasPendingApproval():
		result.Status = StatusAwaitingApproval
	default:
		if raw, ok := sess.Metadata["status"].(string); ok && raw != "" {
			result.Status = raw
		} else {
			result.Status = StatusInProgress
		}
	}

	if state != nil {
		result.TeamSequence = state.TeamSequence
		result.TeamsCompleted = len(state.TeamsCompleted)
		result.ProposalGenerated = state.ProposalGenerated
	}
	return result, nil
}

// Artifact returns the rendered proposal for a completed session.
func (uc *ProposalUsecase) Artifact(sessionID string) (*entity.ProposalArtifact, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	artifact, ok := uc.artifacts[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: no artifact for session %s", entity.ErrSessionNotFound, sessionID)
	}
	return artifact, nil
}

// Stores lists all named stores with their persisted state.
func (uc *ProposalUsecase) Stores(ctx context.Context) ([]entity.StoreInfo, error) {
	infos := make([]entity.StoreInfo, 0, len(entity.AllStores()))
	for _, store := range entity.AllStores() {
		info, err := uc.stores.Info(ctx, store)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Reindex destructively rebuilds one store from a document directory.
func (uc *ProposalUsecase) Reindex(ctx context.Context, store, dir string) error {
	if err := uc.validator.ValidateReindex(store, dir); err != nil {
		return err
	}
	return uc.reindexer.IndexDirectory(ctx, entity.StoreName(store), dir)
}
