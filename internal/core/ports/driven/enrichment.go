package driven

import "context"

// Enrichment is the result of one enrichment call.
type Enrichment struct {
	// Summary is a short generated summary of the document
	Summary string `json:"summary"`

	// Tags is a small generated tag list
	Tags []string `json:"tags"`
}

// EnrichmentService is the external text-generation collaborator:
// given document content, return a short summary and a small tag list.
// It is invoked only by the worker loop draining the queue, never by
// the sync pipeline directly; its failures surface as queue resolutions.
type EnrichmentService interface {
	// Enrich generates a summary and tags for the given content
	Enrich(ctx context.Context, title, content string) (*Enrichment, error)

	// HealthCheck verifies the service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the service
	Close() error
}
