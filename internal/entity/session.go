package entity

import "time"

// Session is the persisted identity and state for one ongoing user/platform
// conversation. It is created on first contact per (user, platform), mutated
// on every interaction and destroyed by the expiry sweep or explicit
// deletion.
type Session struct {
	ID              string         `json:"session_id"`
	UserID          string         `json:"user_id"`
	Platform        string         `json:"platform"`
	ThreadID        string         `json:"thread_id"`
	CreatedAt       time.Time      `json:"created_at"`
	LastActivity    time.Time      `json:"last_activity"`
	PendingApproval map[string]any `json:"pending_approval,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// HasPendingApproval reports whether an approval decision is parked on the
// session.
func (s *Session) HasPendingApproval() bool {
	return len(s.PendingApproval) > 0
}

// Clone returns a deep copy, so callers can hold a session snapshot without
// racing the store's mutations.
func (s *Session) Clone() *Session {
	out := *s
	if s.PendingApproval != nil {
		out.PendingApproval = make(map[string]any, len(s.PendingApproval))
		for k, v := range s.PendingApproval {
			out.PendingApproval[k] = v
		}
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
