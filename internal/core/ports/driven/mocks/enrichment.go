package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// MockEnrichmentService is a scripted EnrichmentService for testing
type MockEnrichmentService struct {
	mu sync.Mutex

	// Result returned on success
	Result *driven.Enrichment

	// Err makes Enrich fail; FailCount limits how many calls fail
	// (0 with Err set = always fail)
	Err       error
	FailCount int

	// Calls counts Enrich invocations
	Calls int
}

// NewMockEnrichmentService creates a new MockEnrichmentService
func NewMockEnrichmentService() *MockEnrichmentService {
	return &MockEnrichmentService{
		Result: &driven.Enrichment{
			Summary: "generated summary",
			Tags:    []string{"tag-a", "tag-b"},
		},
	}
}

func (m *MockEnrichmentService) Enrich(ctx context.Context, title, content string) (*driven.Enrichment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.Err != nil {
		if m.FailCount == 0 || m.Calls <= m.FailCount {
			return nil, m.Err
		}
	}
	cp := *m.Result
	return &cp, nil
}

func (m *MockEnrichmentService) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil && m.FailCount == 0 {
		return m.Err
	}
	return nil
}

func (m *MockEnrichmentService) Close() error {
	return nil
}
