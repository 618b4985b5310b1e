package domain

import "time"

// QueueStatus represents the current state of a queue entry
type QueueStatus string

const (
	QueueStatusPending    QueueStatus = "pending"
	QueueStatusProcessing QueueStatus = "processing"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusFailed     QueueStatus = "failed"
)

// DefaultMaxAttempts bounds retries before an entry fails terminally.
const DefaultMaxAttempts = 3

// QueueEntry represents one unit of deferred enrichment work tied to a
// single document. At most one active (pending or processing) entry
// exists per document at any time.
type QueueEntry struct {
	// ID is the unique identifier for this entry
	ID string `json:"id"`

	// DocumentID is the document this entry enriches
	DocumentID string `json:"document_id"`

	// Status is the current state of the entry
	Status QueueStatus `json:"status"`

	// Priority determines processing order (higher = more urgent)
	Priority int `json:"priority"`

	// Attempts is how many times this entry has been claimed
	Attempts int `json:"attempts"`

	// MaxAttempts is the retry bound before the entry fails terminally
	MaxAttempts int `json:"max_attempts"`

	// ErrorMessage contains the last failure reason, if any
	ErrorMessage string `json:"error_message,omitempty"`

	// LastAttemptAt is when the entry was last claimed (nil if never)
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`

	// CreatedAt is when the entry was enqueued
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the entry was last modified
	UpdatedAt time.Time `json:"updated_at"`
}

// NewQueueEntry creates a pending entry for a document with default values
func NewQueueEntry(documentID string) *QueueEntry {
	now := time.Now()
	return &QueueEntry{
		ID:          GenerateID(),
		DocumentID:  documentID,
		Status:      QueueStatusPending,
		Priority:    0,
		Attempts:    0,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsActive returns true while the entry still occupies the per-document
// active slot (pending or processing)
func (e *QueueEntry) IsActive() bool {
	return e.Status == QueueStatusPending || e.Status == QueueStatusProcessing
}

// CanRetry returns true if a failure should re-arm the entry rather than
// fail it terminally
func (e *QueueEntry) CanRetry() bool {
	return e.Attempts < e.MaxAttempts
}

// MarkProcessing transitions the entry to processing. Every claim
// increments attempts and stamps the attempt time.
func (e *QueueEntry) MarkProcessing() {
	now := time.Now()
	e.Status = QueueStatusProcessing
	e.Attempts++
	e.LastAttemptAt = &now
	e.UpdatedAt = now
}

// MarkCompleted transitions the entry to its terminal success state
func (e *QueueEntry) MarkCompleted() {
	e.Status = QueueStatusCompleted
	e.ErrorMessage = ""
	e.UpdatedAt = time.Now()
}

/// MarkFailed records the failure outcome: back to pending while the
// attempt bound allows, terminal failed once it is reached. The error
// message is recorded either way.
func (e *QueueEntry) MarkFailed(reason string) {
	e.ErrorMessage = reason
	e.UpdatedAt = time.Now()
	if e.CanRetry() {
		e.Status = QueueStatusPending
	} else {
		e.Status = QueueStatusFailed
	}
}

// Rearm resets the entry to a fresh pending state, used when a document
// is reindexed while a non-processing entry already exists
func (e *QueueEntry) Rearm() {
	e.Status = QueueStatusPending
	e.Attempts = 0
	e.ErrorMessage = ""
	e.LastAttemptAt = nil
	e.UpdatedAt = time.Now()
}
