package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Ensure Queue implements TaskQueue
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using PostgreSQL with SKIP LOCKED so multiple
// workers can claim entries without coordination.
type Queue struct {
	db *sql.DB
}

// NewQueue creates a new PostgreSQL-backed task queue.
// Assumes the queue_entries table has been created via InitSchema.
func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

const entryColumns = `id, document_id, status, priority, attempts, max_attempts,
	error_message, last_attempt_at, created_at, updated_at`

// Enqueue arms an entry for a document. A fresh pending entry is inserted
// when no active one exists; a pending entry is reset in place; a
// processing entry is left untouched so an in-flight worker keeps its claim.
func (q *Queue) Enqueue(ctx context.Context, documentID string, priority int) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery := `
		SELECT ` + entryColumns + `
		FROM queue_entries
		WHERE document_id = $1 AND status IN ($2, $3)
		FOR UPDATE
	`

	existing, err := scanEntry(tx.QueryRowContext(ctx, selectQuery,
		documentID, domain.QueueStatusPending, domain.QueueStatusProcessing))

	switch {
	case err == sql.ErrNoRows:
		entry := domain.NewQueueEntry(documentID)
		entry.Priority = priority

		insertQuery := `
			INSERT INTO queue_entries (` + entryColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err = tx.ExecContext(ctx, insertQuery,
			entry.ID,
			entry.DocumentID,
			entry.Status,
			entry.Priority,
			entry.Attempts,
			entry.MaxAttempts,
			entry.ErrorMessage,
			nullTime(entry.LastAttemptAt),
			entry.CreatedAt,
			entry.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

	case err != nil:
		return fmt.Errorf("select active entry: %w", err)

	case existing.Status == domain.QueueStatusProcessing:
		// In-flight claim stands.

	default:
		rearmQuery := `
			UPDATE queue_entries
			SET status = $1, priority = $2, attempts = 0, error_message = '',
			    last_attempt_at = NULL, updated_at = $3
			WHERE id = $4
		`
		_, err = tx.ExecContext(ctx, rearmQuery,
			domain.QueueStatusPending, priority, time.Now(), existing.ID)
		if err != nil {
			return fmt.Errorf("rearm entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Claim retrieves the next pending entry using SELECT FOR UPDATE SKIP LOCKED.
// The transition to processing and the attempt increment commit atomically,
// so only one worker wins each entry.
func (q *Queue) Claim(ctx context.Context) (*domain.QueueEntry, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery := `
		SELECT ` + entryColumns + `
		FROM queue_entries
		WHERE status = $1
		ORDER BY priority DESC, created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	entry, err := scanEntry(tx.QueryRowContext(ctx, selectQuery, domain.QueueStatusPending))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select entry: %w", err)
	}

	now := time.Now()
	updateQuery := `
		UPDATE queue_entries
		SET status = $1, attempts = attempts + 1, last_attempt_at = $2, updated_at = $2
		WHERE id = $3
	`
	_, err = tx.ExecContext(ctx, updateQuery, domain.QueueStatusProcessing, now, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("update entry status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	entry.Status = domain.QueueStatusProcessing
	entry.Attempts++
	entry.LastAttemptAt = &now
	entry.UpdatedAt = now

	return entry, nil
}

// Resolve records the outcome of a claimed entry
func (q *Queue) Resolve(ctx context.Context, entryID string, success bool, reason string) error {
	if success {
		query := `
			UPDATE queue_entries
			SET status = $1, error_message = '', updated_at = $2
			WHERE id = $3
		`
		result, err := q.db.ExecContext(ctx, query, domain.QueueStatusCompleted, time.Now(), entryID)
		if err != nil {
			return fmt.Errorf("complete entry: %w", err)
		}
		return requireRow(result)
	}

	// Failure re-arms until attempts reach the bound, then fails terminally.
	query := `
		UPDATE queue_entries
		SET status = CASE WHEN attempts < max_attempts THEN $1 ELSE $2 END,
		    error_message = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := q.db.ExecContext(ctx, query,
		domain.QueueStatusPending, domain.QueueStatusFailed, reason, time.Now(), entryID)
	if err != nil {
		return fmt.Errorf("fail entry: %w", err)
	}
	return requireRow(result)
}

// Get retrieves an entry by ID
func (q *Queue) Get(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM queue_entries WHERE id = $1`

	entry, err := scanEntry(q.db.QueryRowContext(ctx, query, entryID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query entry: %w", err)
	}
	return entry, nil
}

// GetActiveByDocument retrieves the active entry for a document, if any
func (q *Queue) GetActiveByDocument(ctx context.Context, documentID string) (*domain.QueueEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM queue_entries
		WHERE document_id = $1 AND status IN ($2, $3)
	`

	entry, err := scanEntry(q.db.QueryRowContext(ctx, query,
		documentID, domain.QueueStatusPending, domain.QueueStatusProcessing))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query active entry: %w", err)
	}
	return entry, nil
}

// Requeue manually re-arms a terminally failed entry
func (q *Queue) Requeue(ctx context.Context, entryID string) error {
	query := `
		UPDATE queue_entries
		SET status = $1, attempts = 0, error_message = '', last_attempt_at = NULL, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := q.db.ExecContext(ctx, query,
		domain.QueueStatusPending, time.Now(), entryID, domain.QueueStatusFailed)
	if err != nil {
		return fmt.Errorf("requeue entry: %w", err)
	}
	return requireRow(result)
}

// Purge removes old completed/failed entries
func (q *Queue) Purge(ctx context.Context, olderThanSeconds int) (int, error) {
	cutoff := time.Now().Add(-time.Duration(olderThanSeconds) * time.Second)

	query := `
		DELETE FROM queue_entries
		WHERE status IN ($1, $2)
		  AND updated_at < $3
	`

	result, err := q.db.ExecContext(ctx, query,
		domain.QueueStatusCompleted, domain.QueueStatusFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return int(rows), nil
}

// Stats returns queue statistics
func (q *Queue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	stats := &driven.QueueStats{}

	query := `SELECT status, COUNT(*) FROM queue_entries GROUP BY status`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}

		switch domain.QueueStatus(status) {
		case domain.QueueStatusPending:
			stats.PendingCount = count
		case domain.QueueStatusProcessing:
			stats.ProcessingCount = count
		case domain.QueueStatusCompleted:
			stats.CompletedCount = count
		case domain.QueueStatusFailed:
			stats.FailedCount = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	ageQuery := `
		SELECT EXTRACT(EPOCH FROM (NOW() - MIN(created_at)))::bigint
		FROM queue_entries
		WHERE status = $1
	`
	var age sql.NullInt64
	err = q.db.QueryRowContext(ctx, ageQuery, domain.QueueStatusPending).Scan(&age)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("query oldest age: %w", err)
	}
	if age.Valid {
		stats.OldestPendingAge = age.Int64
	}

	return stats, nil
}

// Ping checks database connectivity
func (q *Queue) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}

func scanEntry(row *sql.Row) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	var lastAttemptAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.DocumentID,
		&entry.Status,
		&entry.Priority,
		&entry.Attempts,
		&entry.MaxAttempts,
		&entry.ErrorMessage,
		&lastAttemptAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastAttemptAt.Valid {
		entry.LastAttemptAt = &lastAttemptAt.Time
	}

	return &entry, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
