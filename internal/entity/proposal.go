package entity

import "time"

// ResultFormat selects the output file format of the assembled proposal.
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (f ResultFormat) Validate() error {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return nil
	default:
		return ErrInvalidParameter
	}
}

// Proposal is the ordered list of drafted sections that the assembly
// collaborator consumes, plus minimal metadata.
type Proposal struct {
	Title       string           `json:"title"`
	GeneratedAt time.Time        `json:"generated_at"`
	Teams       []Team           `json:"teams"`
	Sections    []SectionContent `json:"sections"`
}

// GenerateProposalRequest starts a proposal workflow.
type GenerateProposalRequest struct {
	UserID      string       `json:"user_id"`
	Platform    string       `json:"platform"`
	Requirement string       `json:"requirement"`
	Format      ResultFormat `json:"format"`
}

// GenerateProposalResult reports a workflow parked on its approval gate.
type GenerateProposalResult struct {
	SessionID       string `json:"session_id"`
	Status          string `json:"status"`
	TeamSequence    []Team `json:"team_sequence"`
	FallbackCount   int    `json:"fallback_count"`
	PendingApproval bool   `json:"pending_approval"`
}

// ProposalArtifact is the rendered output of an approved workflow.
type ProposalArtifact struct {
	SessionID     string    `json:"session_id"`
	Data          []byte    `json:"-"`
	ContentType   string    `json:"content_type"`
	FileExtension string    `json:"file_extension"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ApprovalRequest resolves a pending approval gate. Approved is a pointer so
// a missing field can be told apart from an explicit rejection.
type ApprovalRequest struct {
	Approved *bool `json:"approved"`
}

// ApprovalResponse reports the outcome of an approval decision.
type ApprovalResponse struct {
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	ArtifactURL string `json:"artifact_url,omitempty"`
}

// ReindexRequest rebuilds one store from a document directory.
type ReindexRequest struct {
	Store     string `json:"store"`
	Directory string `json:"directory"`
}

// ProposalStatusResult is the queryable state of one session's workflow.
type ProposalStatusResult struct {
	SessionID         string    `json:"session_id"`
	UserID            string    `json:"user_id"`
	Platform          string    `json:"platform"`
	Status            string    `json:"status"`
	TeamSequence      []Team    `json:"team_sequence,omitempty"`
	TeamsCompleted    int       `json:"teams_completed"`
	PendingApproval   bool      `json:"pending_approval"`
	ProposalGenerated bool      `json:"proposal_generated"`
	LastActivity      time.Time `json:"last_activity"`
}
