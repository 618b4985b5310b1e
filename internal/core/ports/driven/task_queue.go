package driven

import (
	"context"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// TaskQueue is the enrichment work queue: a small state machine over
// pending/processing/completed/failed entries with bounded retries.
// The backing implementation must make Claim an atomic conditional
// transition so two concurrent claimers can never win the same entry.
type TaskQueue interface {
	// Enqueue arms an entry for the document. If no active entry exists
	// one is inserted pending with zero attempts; an existing entry that
	// is not processing is reset the same way; a processing entry is
	// left untouched.
	Enqueue(ctx context.Context, documentID string, priority int) error

	// Claim retrieves the next pending entry: highest priority first,
	// FIFO within a priority band. The transition to processing,
	// the attempt increment and the attempt timestamp are applied
	// atomically; exactly one concurrent caller can claim an entry.
	// Returns nil, nil when nothing is pending.
	Claim(ctx context.Context) (*domain.QueueEntry, error)

	// Resolve records the outcome of a claimed entry. Success completes
	// it; failure records the reason and either re-arms the entry or,
	// once attempts reach the bound, fails it terminally.
	Resolve(ctx context.Context, entryID string, success bool, reason string) error

	// Get retrieves an entry by ID
	Get(ctx context.Context, entryID string) (*domain.QueueEntry, error)

	// GetActiveByDocument retrieves the active entry for a document, if any
	GetActiveByDocument(ctx context.Context, documentID string) (*domain.QueueEntry, error)

	// Requeue manually re-arms a terminally failed entry
	Requeue(ctx context.Context, entryID string) error

	// Purge removes completed/failed entries older than the given age in
	// seconds, returning how many were removed
	Purge(ctx context.Context, olderThanSeconds int) (int, error)

	// Stats returns queue statistics
	Stats(ctx context.Context) (*QueueStats, error)

	// Ping checks if the queue backend is healthy
	Ping(ctx context.Context) error
}

// QueueStats contains queue statistics
type QueueStats struct {
	// PendingCount is the number of entries waiting to be claimed
	PendingCount int64 `json:"pending_count"`

	// ProcessingCount is the number of entries currently claimed
	ProcessingCount int64 `json:"processing_count"`

	// CompletedCount is the number of successfully completed entries
	CompletedCount int64 `json:"completed_count"`

	// FailedCount is the number of entries that exhausted their retries
	FailedCount int64 `json:"failed_count"`

	// OldestPendingAge is the age of the oldest pending entry in seconds
	OldestPendingAge int64 `json:"oldest_pending_age"`
}
