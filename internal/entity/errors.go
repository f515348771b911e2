package entity

import "errors"

// Domain errors
var (
	// Ingestion errors
	ErrNoDocuments   = errors.New("no documents provided for chunking")
	ErrNoChunks      = errors.New("no meaningful chunks produced")
	ErrEmptyChunkSet = errors.New("no chunks provided for indexing")

	// Store errors
	ErrNoStoresReady = errors.New("no knowledge stores are available")

	// Workflow errors
	ErrUnknownTeam       = errors.New("unknown team")
	ErrWorkflowFinalized = errors.New("workflow already produced its final artifact")

	// Session errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoPendingApproval = errors.New("no pending operation for session")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
