package proposal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
	"github.com/yswa-var/rfp-bid/internal/pkg/assembly"
	"github.com/yswa-var/rfp-bid/internal/pkg/validator"
	"github.com/yswa-var/rfp-bid/internal/session"
)

type stubWorkflow struct {
	runErr     error
	composeErr error
}

func (w *stubWorkflow) Run(_ context.Context, requirement string) (*entity.WorkflowState, error) {
	if w.runErr != nil {
		return nil, w.runErr
	}
	state := entity.NewWorkflowState(requirement)
	state.TeamSequence = entity.TeamPrecedence()
	for _, team := range state.TeamSequence {
		state.Collect(entity.TeamResponse{
			Team:      team,
			Content:   "section for " + string(team),
			Timestamp: time.Now().UTC(),
		})
	}
	return state, nil
}

func (w *stubWorkflow) ComposeFinal(_ context.Context, state *entity.WorkflowState) (*entity.Proposal, error) {
	if w.composeErr != nil {
		return nil, w.composeErr
	}
	if state.ProposalGenerated {
		return nil, entity.ErrWorkflowFinalized
	}
	state.ProposalGenerated = true

	proposal := &entity.Proposal{
		Title:       "RFP Response Proposal",
		GeneratedAt: time.Now().UTC(),
		Teams:       state.TeamSequence,
	}
	for _, team := range state.TeamSequence {
		proposal.Sections = append(proposal.Sections, entity.SectionContent{
			Title:    team.SectionTitle(),
			Body:     state.TeamResponses[team].Content,
			Fallback: state.TeamResponses[team].Fallback,
		})
	}
	return proposal, nil
}

type stubStoreAdmin struct{}

func (stubStoreAdmin) Info(_ context.Context, store entity.StoreName) (entity.StoreInfo, error) {
	return entity.StoreInfo{Name: store, ChunkCount: 10, Ready: true}, nil
}

func (stubStoreAdmin) Status() entity.StoreStatus {
	return entity.StoreStatus{TemplatesReady: true, ExamplesReady: true, SessionReady: true}
}

type stubReindexer struct {
	store entity.StoreName
	dir   string
}

func (r *stubReindexer) IndexDirectory(_ context.Context, store entity.StoreName, dir string) error {
	r.store = store
	r.dir = dir
	return nil
}

type stubNotifier struct {
	awaiting  []string
	completed []string
	failed    []string
}

func (n *stubNotifier) NotifyAwaitingApproval(_ context.Context, sessionID, _ string) {
	n.awaiting = append(n.awaiting, sessionID)
}

func (n *stubNotifier) NotifyCompleted(_ context.Context, sessionID, _ string, _ map[string]any) {
	n.completed = append(n.completed, sessionID)
}

func (n *stubNotifier) NotifyFailed(_ context.Context, sessionID, _ string, _ map[string]any) {
	n.failed = append(n.failed, sessionID)
}

func newTestUsecase(t *testing.T) (*ProposalUsecase, *stubNotifier, *stubReindexer) {
	t.Helper()
	return newTestUsecaseWith(t, &stubWorkflow{})
}

func newTestUsecaseWith(t *testing.T, workflow Workflow) (*ProposalUsecase, *stubNotifier, *stubReindexer) {
	t.Helper()

	sessions, err := session.NewStore(config.SessionConfig{
		CSVPath:       filepath.Join(t.TempDir(), "sessions.csv"),
		Timeout:       time.Hour,
		SweepInterval: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)

	notifier := &stubNotifier{}
	reindexer := &stubReindexer{}
	uc := NewUsecase(
		workflow,
		sessions,
		stubStoreAdmin{},
		reindexer,
		notifier,
		assembly.NewFactory(),
		validator.NewValidator(),
		zap.NewNop(),
	)
	return uc, notifier, reindexer
}

func generateRequest() *entity.GenerateProposalRequest {
	return &entity.GenerateProposalRequest{
		UserID:      "user-1",
		Platform:    "slack",
		Requirement: "Build a managed data platform for the agency.",
		Format:      entity.FormatMarkdown,
	}
}

func TestGenerateParksOnApprovalGate(t *testing.T) {
	uc, notifier, _ := newTestUsecase(t)

	result, err := uc.Generate(context.Background(), generateRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusAwaitingApproval, result.Status)
	assert.True(t, result.PendingApproval)
	assert.Equal(t, entity.TeamPrecedence(), result.TeamSequence)
	assert.Equal(t, []string{result.SessionID}, notifier.awaiting)

	status, err := uc.Status(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingApproval, status.Status)
	assert.Equal(t, 4, status.TeamsCompleted)
}

func TestGenerateValidatesInput(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	req := generateRequest()
	req.Requirement = "   "
	_, err := uc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrMissingField)

	req = generateRequest()
	req.Format = entity.ResultFormat("xlsx")
	_, err = uc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestApproveRendersArtifact(t *testing.T) {
	uc, notifier, _ := newTestUsecase(t)
	ctx := context.Background()

	result, err := uc.Generate(ctx, generateRequest())
	require.NoError(t, err)

	artifact, err := uc.Approve(ctx, result.SessionID, true)
	require.NoError(t, err)
	require.NotNil(t, artifact)

	assert.Equal(t, ".md", artifact.FileExtension)
	assert.Contains(t, string(artifact.Data), "section for technical")
	assert.Equal(t, []string{result.SessionID}, notifier.completed)

	status, err := uc.Status(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.True(t, status.ProposalGenerated)

	stored, err := uc.Artifact(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, artifact.Data, stored.Data)
}

func TestApproveTwiceFails(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	result, err := uc.Generate(ctx, generateRequest())
	require.NoError(t, err)

	_, err = uc.Approve(ctx, result.SessionID, true)
	require.NoError(t, err)

	// The approval gate was consumed by the first decision.
	_, err = uc.Approve(ctx, result.SessionID, true)
	assert.ErrorIs(t, err, entity.ErrNoPendingApproval)
}

func TestApproveComposeFailureKeepsGate(t *testing.T) {
	wf := &stubWorkflow{composeErr: errors.New("drafting context lost")}
	uc, _, _ := newTestUsecaseWith(t, wf)
	ctx := context.Background()

	result, err := uc.Generate(ctx, generateRequest())
	require.NoError(t, err)

	_, err = uc.Approve(ctx, result.SessionID, true)
	require.Error(t, err)

	status, err := uc.Status(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingApproval, status.Status)
	assert.True(t, status.PendingApproval, "a failed compose must not consume the approval gate")

	// Once composition recovers, the same decision goes through.
	wf.composeErr = nil
	artifact, err := uc.Approve(ctx, result.SessionID, true)
	require.NoError(t, err)
	require.NotNil(t, artifact)
}

func TestRejectDiscardsRun(t *testing.T) {
	uc, notifier, _ := newTestUsecase(t)
	ctx := context.Background()

	result, err := uc.Generate(ctx, generateRequest())
	require.NoError(t, err)

	artifact, err := uc.Approve(ctx, result.SessionID, false)
	require.NoError(t, err)
	assert.Nil(t, artifact)
	assert.Equal(t, []string{result.SessionID}, notifier.failed)

	status, err := uc.Status(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, status.Status)

	_, err = uc.Artifact(result.SessionID)
	assert.Error(t, err)
}

func TestApproveWithoutPendingGate(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	_, err := uc.Approve(context.Background(), "unknown-session", true)
	assert.Error(t, err)
}

func TestRegenerateAfterCompletionReusesSession(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	ctx := context.Background()

	first, err := uc.Generate(ctx, generateRequest())
	require.NoError(t, err)
	_, err = uc.Approve(ctx, first.SessionID, true)
	require.NoError(t, err)

	second, err := uc.Generate(ctx, generateRequest())
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID, "same (user, platform) keeps one session")
	assert.Equal(t, StatusAwaitingApproval, second.Status)

	// The stale artifact from the first run is gone until re-approval.
	_, err = uc.Artifact(second.SessionID)
	assert.Error(t, err)
}

func TestStores(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	infos, err := uc.Stores(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, entity.StoreTemplates, infos[0].Name)
}

func TestReindex(t *testing.T) {
	uc, _, reindexer := newTestUsecase(t)

	require.NoError(t, uc.Reindex(context.Background(), "templates", "/corpus/templates"))
	assert.Equal(t, entity.StoreTemplates, reindexer.store)
	assert.Equal(t, "/corpus/templates", reindexer.dir)

	err := uc.Reindex(context.Background(), "bogus", "/corpus/x")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
