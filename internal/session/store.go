package session

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
)

var csvHeader = []string{
	"session_id", "user_id", "platform", "thread_id",
	"created_at", "last_activity", "pending_approval", "metadata",
}

// Store keeps sessions in memory with write-through CSV persistence: every
// mutation rewrites the snapshot file, and a sweeper expires idle sessions.
// One session exists per (user, platform) pair.
type Store struct {
	cfg    config.SessionConfig
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entity.Session
	byOwner  map[string]string // (user,platform) key -> session ID
}

func NewStore(cfg config.SessionConfig, logger *zap.Logger) (*Store, error) {
	s := &Store{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*entity.Session),
		byOwner:  make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func ownerKey(userID, platform string) string {
	return userID + "\x00" + platform
}

// GetOrCreate returns the existing session for (userID, platform) or creates
// one. Either way the session's last activity is refreshed. Idempotent per
// owner pair.
func (s *Store) GetOrCreate(userID, platform string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if id, ok := s.byOwner[ownerKey(userID, platform)]; ok {
		sess := s.sessions[id]
		sess.LastActivity = now
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
		return sess.Clone(), nil
	}

	sess := &entity.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Platform:     platform,
		ThreadID:     uuid.NewString(),
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions[sess.ID] = sess
	s.byOwner[ownerKey(userID, platform)] = sess.ID

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// Get returns a session by ID.
func (s *Store) Get(sessionID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, sessionID)
	}
	return sess.Clone(), nil
}

// Touch refreshes a session's last activity.
func (s *Store) Touch(sessionID string) error {
	return s.update(sessionID, func(sess *entity.Session) error {
		return nil
	})
}

// SetPendingApproval marks a session as waiting on a human decision.
func (s *Store) SetPendingApproval(sessionID string, approval map[string]any) error {
	return s.update(sessionID, func(sess *entity.Session) error {
		sess.PendingApproval = approval
		return nil
	})
}

// ClearPendingApproval resolves a pending approval gate. Returns
// entity.ErrNoPendingApproval when nothing was pending.
func (s *Store) ClearPendingApproval(sessionID string) (map[string]any, error) {
	var cleared map[string]any
	err := s.update(sessionID, func(sess *entity.Session) error {
		if !sess.HasPendingApproval() {
			return fmt.Errorf("%w: session %s", entity.ErrNoPendingApproval, sessionID)
		}
		cleared = sess.PendingApproval
		sess.PendingApproval = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cleared, nil
}

// UpdateMetadata merges the given keys into the session's metadata.
func (s *Store) UpdateMetadata(sessionID string, metadata map[string]any) error {
	return s.update(sessionID, func(sess *entity.Session) error {
		if sess.Metadata == nil {
			sess.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			sess.Metadata[k] = v
		}
		return nil
	})
}

// Delete removes a session.
func (s *Store) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrSessionNotFound, sessionID)
	}
	delete(s.sessions, sessionID)
	delete(s.byOwner, ownerKey(sess.UserID, sess.Platform))
	return s.persistLocked()
}

// GetAllSessions returns a snapshot of every live session.
func (s *Store) GetAllSessions() []*entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	return out
}

// GetUserSessions returns snapshots of every live session owned by a user,
// across platforms.
func (s *Store) GetUserSessions(userID string) []*entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, sess.Clone())
		}
	}
	return out
}

// ActiveCount returns the number of live sessions.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SweepExpired removes sessions idle longer than the configured timeout and
// writes a single snapshot for the whole sweep. Returns the removed count.
func (s *Store) SweepExpired() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-s.cfg.Timeout)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.byOwner, ownerKey(sess.UserID, sess.Platform))
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked()
}

// RunSweeper expires idle sessions on the configured interval until the
// context is canceled. Meant to run in its own goroutine.
func (s *Store) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.SweepExpired()
			if err != nil {
				ctxzap.Error(ctx, "session sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				ctxzap.Info(ctx, "expired sessions swept",
					zap.Int("removed", removed),
					zap.Int("active", s.ActiveCount()))
			}
		}
	}
}

func (s *Store) update(sessionID string, fn func(*entity.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrSessionNotFound, sessionID)
	}
	if err := fn(sess); err != nil {
		return err
	}
	sess.LastActivity = time.Now().UTC()
	return s.persistLocked()
}

// persistLocked writes the full snapshot. Caller holds the mutex.
func (s *Store) persistLocked() error {
	if s.cfg.CSVPath == "" {
		return nil
	}

	tmp := s.cfg.CSVPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create session snapshot: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}

	for _, sess := range s.sessions {
		record, err := toRecord(sess)
		if err != nil {
			f.Close()
			return err
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write snapshot row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	return os.Rename(tmp, s.cfg.CSVPath)
}

func (s *Store) load() error {
	if s.cfg.CSVPath == "" {
		return nil
	}

	f, err := os.Open(s.cfg.CSVPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if dir := filepath.Dir(s.cfg.CSVPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create session dir: %w", err)
				}
			}
			return nil
		}
		return fmt.Errorf("open session snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read session snapshot: %w", err)
	}
	if len(records) <= 1 {
		return nil
	}

	for _, record := range records[1:] {
		sess, err := fromRecord(record)
		if err != nil {
			s.logger.Warn("skipping corrupt session row", zap.Error(err))
			continue
		}
		s.sessions[sess.ID] = sess
		s.byOwner[ownerKey(sess.UserID, sess.Platform)] = sess.ID
	}

	s.logger.Info("sessions restored from snapshot",
		zap.Int("count", len(s.sessions)),
		zap.String("path", s.cfg.CSVPath))
	return nil
}

func toRecord(sess *entity.Session) ([]string, error) {
	approval, err := marshalBlob(sess.PendingApproval)
	if err != nil {
		return nil, fmt.Errorf("marshal pending approval for %s: %w", sess.ID, err)
	}
	metadata, err := marshalBlob(sess.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata for %s: %w", sess.ID, err)
	}

	return []string{
		sess.ID,
		sess.UserID,
		sess.Platform,
		sess.ThreadID,
		sess.CreatedAt.Format(time.RFC3339Nano),
		sess.LastActivity.Format(time.RFC3339Nano),
		approval,
		metadata,
	}, nil
}

func fromRecord(record []string) (*entity.Session, error) {
	if len(record) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(record))
	}

	createdAt, err := time.Parse(time.RFC3339Nano, record[4])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	lastActivity, err := time.Parse(time.RFC3339Nano, record[5])
	if err != nil {
		return nil, fmt.Errorf("parse last_activity: %w", err)
	}

	approval, err := unmarshalBlob(record[6])
	if err != nil {
		return nil, fmt.Errorf("parse pending_approval: %w", err)
	}
	metadata, err := unmarshalBlob(record[7])
	if err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	return &entity.Session{
		ID:              record[0],
		UserID:          record[1],
		Platform:        record[2],
		ThreadID:        record[3],
		CreatedAt:       createdAt,
		LastActivity:    lastActivity,
		PendingApproval: approval,
		Metadata:        metadata,
	}, nil
}

func marshalBlob(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalBlob(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}
