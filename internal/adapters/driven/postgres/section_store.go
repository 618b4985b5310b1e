package postgres

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SectionStore = (*SectionStore)(nil)

// SectionStore implements driven.SectionStore using PostgreSQL
type SectionStore struct {
	db *DB
}

// NewSectionStore creates a new SectionStore
func NewSectionStore(db *DB) *SectionStore {
	return &SectionStore{db: db}
}

// ReplaceForDocument swaps the full section set of a document in one
// transaction so readers never observe a partial set.
func (s *SectionStore) ReplaceForDocument(ctx context.Context, documentID string, sections []*domain.Section) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE document_id = $1`, documentID); err != nil {
			return err
		}

		if len(sections) == 0 {
			return nil
		}

		query := `
			INSERT INTO sections (id, document_id, heading, level, position, anchor_slug, summary)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, sec := range sections {
			_, err = stmt.ExecContext(ctx,
				sec.ID,
				documentID,
				sec.Heading,
				sec.Level,
				sec.Position,
				sec.AnchorSlug,
				NullString(sec.Summary),
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByDocument retrieves a document's sections ordered by position
func (s *SectionStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Section, error) {
	query := `
		SELECT id, document_id, heading, level, position, anchor_slug, summary
		FROM sections
		WHERE document_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*domain.Section
	for rows.Next() {
		var sec domain.Section
		var summary sql.NullString

		err := rows.Scan(
			&sec.ID,
			&sec.DocumentID,
			&sec.Heading,
			&sec.Level,
			&sec.Position,
			&sec.AnchorSlug,
			&summary,
		)
		if err != nil {
			return nil, err
		}

		sec.Summary = StringPtr(summary)
		sections = append(sections, &sec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}
