package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// MockSectionStore is a mock implementation of SectionStore for testing
type MockSectionStore struct {
	mu         sync.RWMutex
	byDocument map[string][]*domain.Section

	// ReplaceErr makes ReplaceForDocument fail
	ReplaceErr error

	// ReplaceCalls counts ReplaceForDocument invocations
	ReplaceCalls int
}

// NewMockSectionStore creates a new MockSectionStore
func NewMockSectionStore() *MockSectionStore {
	return &MockSectionStore{
		byDocument: make(map[string][]*domain.Section),
	}
}

func (m *MockSectionStore) ReplaceForDocument(ctx context.Context, documentID string, sections []*domain.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReplaceCalls++
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}

	fresh := make([]*domain.Section, len(sections))
	for i, s := range sections {
		cp := *s
		fresh[i] = &cp
	}
	m.byDocument[documentID] = fresh
	return nil
}

func (m *MockSectionStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sections := m.byDocument[documentID]
	out := make([]*domain.Section, len(sections))
	for i, s := range sections {
		cp := *s
		out[i] = &cp
	}
	return out, nil
}
