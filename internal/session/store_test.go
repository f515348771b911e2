package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return newTestStoreAt(t, filepath.Join(t.TempDir(), "sessions.csv"))
}

func newTestStoreAt(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(config.SessionConfig{
		CSVPath:       path,
		Timeout:       time.Hour,
		SweepInterval: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestGetOrCreateIdempotent(t *testing.T) {
	s := newTestStore(t)

	first, err := s.GetOrCreate("user-1", "slack")
	require.NoError(t, err)
	second, err := s.GetOrCreate("user-1", "slack")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "one session per (user, platform)")
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.False(t, second.LastActivity.Before(first.LastActivity))

	other, err := s.GetOrCreate("user-1", "web")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "platforms get separate sessions")
}

func TestGetUnknownSession(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestPendingApprovalLifecycle(t *testing.T) {
	s := newTestStore(t)

	sess, err := s.GetOrCreate("user-1", "slack")
	require.NoError(t, err)

	approval := map[string]any{"action": "generate_proposal", "format": "pdf"}
	require.NoError(t, s.SetPendingApproval(sess.ID, approval))

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPendingApproval())

	cleared, err := s.ClearPendingApproval(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "generate_proposal", cleared["action"])

	got, err = s.Get(sess.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPendingApproval())

	_, err = s.ClearPendingApproval(sess.ID)
	assert.ErrorIs(t, err, entity.ErrNoPendingApproval)
}

func TestUpdateMetadataMerges(t *testing.T) {
	s := newTestStore(t)

	sess, err := s.GetOrCreate("user-1", "slack")
	require.NoError(t, err)

	require.NoError(t, s.UpdateMetadata(sess.ID, map[string]any{"requirement": "migrate dc"}))
	require.NoError(t, s.UpdateMetadata(sess.ID, map[string]any{"format": "docx"}))

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "migrate dc", got.Metadata["requirement"])
	assert.Equal(t, "docx", got.Metadata["format"])
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)

	sess, err := s.GetOrCreate("user-1", "slack")
	require.NoError(t, err)

	require.NoError(t, s.Delete(sess.ID))
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	// The owner slot is free again.
	recreated, err := s.GetOrCreate("user-1", "slack")
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, recreated.ID)
}

func TestSweepExpired(t *testing.T) {
	s := newTestStore(t)

	stale, err := s.GetOrCreate("user-stale", "slack")
	require.NoError(t, err)
	fresh, err := s.GetOrCreate("user-fresh", "slack")
	require.NoError(t, err)

	// Force expiry on the first session.
	s.mu.Lock()
	s.sessions[stale.ID].LastActivity = time.Now().UTC().Add(-2 * time.Hour)
	s.mu.Unlock()

	removed, err := s.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Get(stale.ID)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSweepExpiredNothingToDo(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetOrCreate("user-1", "slack")
	require.NoError(t, err)

	removed, err := s.SweepExpired()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")

	s1 := newTestStoreAt(t, path)
	sess, err := s1.GetOrCreate("user-1", "slack")
	require.NoError(t, err)
	require.NoError(t, s1.SetPendingApproval(sess.ID, map[string]any{"action": "generate_proposal"}))
	require.NoError(t, s1.UpdateMetadata(sess.ID, map[string]any{"requirement": "erp rollout"}))

	s2 := newTestStoreAt(t, path)
	restored, err := s2.Get(sess.ID)
	require.NoError(t, err)

	assert.Equal(t, sess.UserID, restored.UserID)
	assert.Equal(t, sess.Platform, restored.Platform)
	assert.Equal(t, sess.ThreadID, restored.ThreadID)
	assert.True(t, restored.HasPendingApproval())
	assert.Equal(t, "erp rollout", restored.Metadata["requirement"])
	assert.True(t, restored.CreatedAt.Equal(sess.CreatedAt),
		"created_at must survive the round trip to the exact instant, wrote %v, reloaded %v",
		sess.CreatedAt, restored.CreatedAt)

	// The restored owner index must keep GetOrCreate idempotent.
	again, err := s2.GetOrCreate("user-1", "slack")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
}

func TestSnapshotSkipsCorruptRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	s1 := newTestStoreAt(t, path)
	good, err := s1.GetOrCreate("user-1", "slack")
	require.NoError(t, err)

	// Corrupt one row: bad timestamp, valid CSV shape.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("bad-id,user-2,slack,thread,not-a-time,not-a-time,,\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s2 := newTestStoreAt(t, path)
	sessions := s2.GetAllSessions()
	require.Len(t, sessions, 1, "corrupt rows are skipped, good rows survive")
	assert.Equal(t, good.ID, sessions[0].ID)
}

func TestMissingSnapshotStartsEmpty(t *testing.T) {
	s := newTestStoreAt(t, filepath.Join(t.TempDir(), "none.csv"))
	assert.Empty(t, s.GetAllSessions())
}
