package proposal

import (
	"context"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

// Workflow runs team orchestration and composes the final proposal.
// Satisfied by *orchestrator.Supervisor.
type Workflow interface {
	Run(ctx context.Context, requirement string) (*entity.WorkflowState, error)
	ComposeFinal(ctx context.Context, state *entity.WorkflowState) (*entity.Proposal, error)
}

// SessionStore is the session lifecycle surface the use case needs.
// Satisfied by *session.Store.
type SessionStore interface {
	GetOrCreate(userID, platform string) (*entity.Session, error)
	Get(sessionID string) (*entity.Session, error)
	SetPendingApproval(sessionID string, approval map[string]any) error
	ClearPendingApproval(sessionID string) (map[string]any, error)
	UpdateMetadata(sessionID string, metadata map[string]any) error
}

// StoreAdmin exposes vector store introspection and re-indexing.
// Satisfied by the vector store manager plus the corpus indexer.
type StoreAdmin interface {
	Info(ctx context.Context, store entity.StoreName) (entity.StoreInfo, error)
	Status() entity.StoreStatus
}

// Reindexer rebuilds one store from a document directory.
// Satisfied by *retrieval.CorpusIndexer.
type Reindexer interface {
	IndexDirectory(ctx context.Context, store entity.StoreName, dir string) error
}

// Notifier pushes workflow transitions to the approval front end.
// Satisfied by the callback connector.
type Notifier interface {
	NotifyAwaitingApproval(ctx context.Context, sessionID, message string)
	NotifyCompleted(ctx context.Context, sessionID, message string, details map[string]any)
	NotifyFailed(ctx context.Context, sessionID, message string, details map[string]any)
}
