package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

type stubUsecase struct {
	generateErr error
	approveErr  error
	artifactErr error
	statusErr   error
	reindexErr  error

	approved   *bool
	storeCalls int
}

func (s *stubUsecase) Generate(_ context.Context, req *entity.GenerateProposalRequest) (*entity.GenerateProposalResult, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &entity.GenerateProposalResult{
		SessionID:       "sess-1",
		Status:          "awaiting_approval",
		TeamSequence:    entity.TeamPrecedence(),
		PendingApproval: true,
	}, nil
}

func (s *stubUsecase) Approve(_ context.Context, sessionID string, approved bool) (*entity.ProposalArtifact, error) {
	if s.approveErr != nil {
		return nil, s.approveErr
	}
	s.approved = &approved
	if !approved {
		return nil, nil
	}
	return &entity.ProposalArtifact{
		SessionID:     sessionID,
		Data:          []byte("# Proposal"),
		ContentType:   "text/markdown; charset=utf-8",
		FileExtension: ".md",
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

func (s *stubUsecase) Status(_ context.Context, sessionID string) (*entity.ProposalStatusResult, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &entity.ProposalStatusResult{SessionID: sessionID, Status: "completed"}, nil
}

func (s *stubUsecase) Artifact(sessionID string) (*entity.ProposalArtifact, error) {
	if s.artifactErr != nil {
		return nil, s.artifactErr
	}
	return &entity.ProposalArtifact{
		SessionID:     sessionID,
		Data:          []byte("%PDF-stub"),
		ContentType:   "application/pdf",
		FileExtension: ".pdf",
	}, nil
}

func (s *stubUsecase) Stores(_ context.Context) ([]entity.StoreInfo, error) {
	s.storeCalls++
	return []entity.StoreInfo{{Name: entity.StoreTemplates, ChunkCount: 12, Ready: true}}, nil
}

func (s *stubUsecase) Reindex(_ context.Context, store, dir string) error {
	return s.reindexErr
}

func newTestRouter(uc ProposalUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc))
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateAccepted(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	rec := doJSON(t, router, http.MethodPost, "/proposals",
		`{"user_id":"u1","platform":"slack","requirement":"build a data platform"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var result entity.GenerateProposalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "sess-1", result.SessionID)
	assert.True(t, result.PendingApproval)
}

func TestGenerateBadJSON(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	rec := doJSON(t, router, http.MethodPost, "/proposals", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateValidationError(t *testing.T) {
	router := newTestRouter(&stubUsecase{
		generateErr: fmt.Errorf("%w: requirement", entity.ErrMissingField),
	})

	rec := doJSON(t, router, http.MethodPost, "/proposals",
		`{"user_id":"u1","platform":"slack"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideApproved(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	rec := doJSON(t, router, http.MethodPost, "/proposals/sess-1/approval", `{"approved":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.ApprovalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "/api/v1/proposals/sess-1/artifact", resp.ArtifactURL)
	require.NotNil(t, uc.approved)
	assert.True(t, *uc.approved)
}

func TestDecideRejected(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	rec := doJSON(t, router, http.MethodPost, "/proposals/sess-1/approval", `{"approved":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.ApprovalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rejected", resp.Status)
	assert.Empty(t, resp.ArtifactURL)
}

func TestDecideMissingField(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	rec := doJSON(t, router, http.MethodPost, "/proposals/sess-1/approval", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideNoPendingGate(t *testing.T) {
	router := newTestRouter(&stubUsecase{approveErr: entity.ErrNoPendingApproval})

	rec := doJSON(t, router, http.MethodPost, "/proposals/sess-1/approval", `{"approved":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStatusNotFound(t *testing.T) {
	router := newTestRouter(&stubUsecase{statusErr: entity.ErrSessionNotFound})

	rec := doJSON(t, router, http.MethodGet, "/proposals/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadHeaders(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	rec := doJSON(t, router, http.MethodGet, "/proposals/sess-1/artifact", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "proposal-sess-1.pdf")
	assert.Equal(t, "%PDF-stub", rec.Body.String())
}

func TestListStoresCached(t *testing.T) {
	uc := &stubUsecase{}
	router := newTestRouter(uc)

	for range 3 {
		rec := doJSON(t, router, http.MethodGet, "/stores", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, uc.storeCalls, "store listing is served from cache after the first call")
}

func TestReindexInvalidStore(t *testing.T) {
	router := newTestRouter(&stubUsecase{
		reindexErr: fmt.Errorf("%w: unknown store", entity.ErrInvalidParameter),
	})

	rec := doJSON(t, router, http.MethodPost, "/stores/reindex", `{"store":"bogus","directory":"/x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
