package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, path, title, summary, content_hash, last_modified_at, last_indexed_at,
	ai_tags, manual_tags, metadata, missing, missing_since, created_at, updated_at`

// Save creates or updates a document, keyed by path. The stored id
// survives updates so relations and sections stay attached across
// reindex cycles.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return err
	}
	if doc.Metadata == nil {
		metadataJSON = []byte("{}")
	}

	// nil slices would encode as SQL NULL; the tag columns are NOT NULL
	aiTags := doc.AITags
	if aiTags == nil {
		aiTags = []string{}
	}
	manualTags := doc.ManualTags
	if manualTags == nil {
		manualTags = []string{}
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (path) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			content_hash = EXCLUDED.content_hash,
			last_modified_at = EXCLUDED.last_modified_at,
			last_indexed_at = EXCLUDED.last_indexed_at,
			ai_tags = EXCLUDED.ai_tags,
			manual_tags = EXCLUDED.manual_tags,
			metadata = EXCLUDED.metadata,
			missing = EXCLUDED.missing,
			missing_since = EXCLUDED.missing_since,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Path,
		doc.Title,
		doc.Summary,
		doc.ContentHash,
		doc.LastModifiedAt,
		doc.LastIndexedAt,
		pq.Array(aiTags),
		pq.Array(manualTags),
		metadataJSON,
		doc.Missing,
		NullTime(doc.MissingSince),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return s.scanDocument(s.db.QueryRowContext(ctx, query, id))
}

// GetByPath retrieves a document by its unique path
func (s *DocumentStore) GetByPath(ctx context.Context, path string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE path = $1`
	return s.scanDocument(s.db.QueryRowContext(ctx, query, path))
}

// List retrieves all documents ordered by path
func (s *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY path ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// SetEnrichment stores the generated summary and tags for a document
func (s *DocumentStore) SetEnrichment(ctx context.Context, id string, summary string, aiTags []string) error {
	if aiTags == nil {
		aiTags = []string{}
	}

	query := `
		UPDATE documents
		SET summary = $1, ai_tags = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, summary, pq.Array(aiTags), time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// MarkMissing flags documents whose paths vanished from the crawled tree
// and unflags rediscovered ones. Returns the number of newly flagged rows.
func (s *DocumentStore) MarkMissing(ctx context.Context, presentPaths []string) (int, error) {
	if presentPaths == nil {
		presentPaths = []string{}
	}

	var flagged int

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		now := time.Now()

		flagQuery := `
			UPDATE documents
			SET missing = TRUE, missing_since = $1, updated_at = $1
			WHERE NOT missing AND path <> ALL($2)
		`
		result, err := tx.ExecContext(ctx, flagQuery, now, pq.Array(presentPaths))
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		flagged = int(rows)

		unflagQuery := `
			UPDATE documents
			SET missing = FALSE, missing_since = NULL, updated_at = $1
			WHERE missing AND path = ANY($2)
		`
		_, err = tx.ExecContext(ctx, unflagQuery, now, pq.Array(presentPaths))
		return err
	})
	if err != nil {
		return 0, err
	}

	return flagged, nil
}

// Count returns total document count
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM documents`
	var count int
	err := s.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

func (s *DocumentStore) scanDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanDocumentRow(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentRow(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var metadataJSON []byte
	var aiTags, manualTags pq.StringArray
	var missingSince sql.NullTime

	err := row.Scan(
		&doc.ID,
		&doc.Path,
		&doc.Title,
		&doc.Summary,
		&doc.ContentHash,
		&doc.LastModifiedAt,
		&doc.LastIndexedAt,
		&aiTags,
		&manualTags,
		&metadataJSON,
		&doc.Missing,
		&missingSince,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.AITags = aiTags
	doc.ManualTags = manualTags
	doc.MissingSince = TimePtr(missingSince)

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, err
		}
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]string)
	}

	return &doc, nil
}
