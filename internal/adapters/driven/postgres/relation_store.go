package postgres

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RelationStore = (*RelationStore)(nil)

// RelationStore implements driven.RelationStore using PostgreSQL
type RelationStore struct {
	db *DB
}

// NewRelationStore creates a new RelationStore
func NewRelationStore(db *DB) *RelationStore {
	return &RelationStore{db: db}
}

// ReplaceForSource swaps the full relation set of one kind for a source
// document. Other kinds from the same source are untouched.
func (s *RelationStore) ReplaceForSource(ctx context.Context, sourceDocumentID string, kind domain.RelationKind, relations []*domain.Relation) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		deleteQuery := `DELETE FROM relations WHERE source_document_id = $1 AND kind = $2`
		if _, err := tx.ExecContext(ctx, deleteQuery, sourceDocumentID, kind); err != nil {
			return err
		}

		if len(relations) == 0 {
			return nil
		}

		query := `
			INSERT INTO relations (id, source_document_id, target_document_id, kind, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (source_document_id, target_document_id, kind) DO NOTHING
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rel := range relations {
			_, err = stmt.ExecContext(ctx,
				rel.ID,
				sourceDocumentID,
				rel.TargetDocumentID,
				kind,
				rel.CreatedAt,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// GetBySource retrieves all relations originating from a document
func (s *RelationStore) GetBySource(ctx context.Context, sourceDocumentID string) ([]*domain.Relation, error) {
	query := `
		SELECT id, source_document_id, target_document_id, kind, created_at
		FROM relations
		WHERE source_document_id = $1
		ORDER BY created_at ASC
	`
	return s.queryRelations(ctx, query, sourceDocumentID)
}

// GetByTarget retrieves all relations pointing at a document
func (s *RelationStore) GetByTarget(ctx context.Context, targetDocumentID string) ([]*domain.Relation, error) {
	query := `
		SELECT id, source_document_id, target_document_id, kind, created_at
		FROM relations
		WHERE target_document_id = $1
		ORDER BY created_at ASC
	`
	return s.queryRelations(ctx, query, targetDocumentID)
}

func (s *RelationStore) queryRelations(ctx context.Context, query string, arg any) ([]*domain.Relation, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []*domain.Relation
	for rows.Next() {
		var rel domain.Relation
		err := rows.Scan(
			&rel.ID,
			&rel.SourceDocumentID,
			&rel.TargetDocumentID,
			&rel.Kind,
			&rel.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		relations = append(relations, &rel)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return relations, nil
}
