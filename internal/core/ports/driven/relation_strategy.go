package driven

import (
	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// RelationStrategy proposes conceptual relations for a document against
// the rest of the corpus. The default implementation is a keyword
// heuristic; a genuine similarity-based matcher can replace it without
// touching the pipeline.
type RelationStrategy interface {
	// ProposeRelations returns target document IDs conceptually related
	// to the source. Candidates beyond the configured cap are dropped in
	// corpus order; the source itself is never proposed.
	ProposeRelations(source *domain.Document, content string, corpus []*domain.Document) []string
}
