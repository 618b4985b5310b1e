package driven

import (
	"context"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// DocumentStore handles document persistence (PostgreSQL).
// Path is the unique key: Save upserts by path.
type DocumentStore interface {
	// Save creates or updates a document, keyed by path
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetByPath retrieves a document by its unique path
	GetByPath(ctx context.Context, path string) (*domain.Document, error)

	// List retrieves all documents ordered by path
	List(ctx context.Context) ([]*domain.Document, error)

	// SetEnrichment stores the generated summary and tags for a document
	SetEnrichment(ctx context.Context, id string, summary string, aiTags []string) error

	// MarkMissing flags documents whose paths vanished from the crawled
	// tree. presentPaths is the full discovered set; every stored path
	// not in it gets the missing flag, every rediscovered path loses it.
	// Returns the number of newly flagged documents.
	MarkMissing(ctx context.Context, presentPaths []string) (int, error)

	// Count returns total document count
	Count(ctx context.Context) (int, error)
}

// SectionStore handles section persistence. Sections are owned by their
// document's reindex cycle: always replaced wholesale, never patched.
type SectionStore interface {
	// ReplaceForDocument atomically deletes all sections of a document
	// and inserts the fresh set. Readers never observe a partial set.
	ReplaceForDocument(ctx context.Context, documentID string, sections []*domain.Section) error

	// GetByDocument retrieves a document's sections ordered by position
	GetByDocument(ctx context.Context, documentID string) ([]*domain.Section, error)
}

// RelationStore handles relation persistence. Each kind is independently
// replaced as a complete set when its source document is reindexed.
type RelationStore interface {
	// ReplaceForSource atomically deletes all relations of one kind
	// originating from a document and inserts the fresh set
	ReplaceForSource(ctx context.Context, sourceDocumentID string, kind domain.RelationKind, relations []*domain.Relation) error

	// GetBySource retrieves all relations originating from a document
	GetBySource(ctx context.Context, sourceDocumentID string) ([]*domain.Relation, error)

	// GetByTarget retrieves all relations pointing at a document
	GetByTarget(ctx context.Context, targetDocumentID string) ([]*domain.Relation, error)
}
