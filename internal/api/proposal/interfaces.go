package proposal

import (
	"context"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

type ProposalUsecase interface {
	Generate(ctx context.Context, req *entity.GenerateProposalRequest) (*entity.GenerateProposalResult, error)
	Approve(ctx context.Context, sessionID string, approved bool) (*entity.ProposalArtifact, error)
	Status(ctx context.Context, sessionID string) (*entity.ProposalStatusResult, error)
	Artifact(sessionID string) (*entity.ProposalArtifact, error)
	Stores(ctx context.Context) ([]entity.StoreInfo, error)
	Reindex(ctx context.Context, store, dir string) error
}
