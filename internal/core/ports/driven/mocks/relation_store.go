package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// MockRelationStore is a mock implementation of RelationStore for testing
type MockRelationStore struct {
	mu sync.RWMutex
	// bySource[sourceID][kind] holds the current complete set per kind
	bySource map[string]map[domain.RelationKind][]*domain.Relation
}

// NewMockRelationStore creates a new MockRelationStore
func NewMockRelationStore() *MockRelationStore {
	return &MockRelationStore{
		bySource: make(map[string]map[domain.RelationKind][]*domain.Relation),
	}
}

func (m *MockRelationStore) ReplaceForSource(ctx context.Context, sourceDocumentID string, kind domain.RelationKind, relations []*domain.Relation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kinds, ok := m.bySource[sourceDocumentID]
	if !ok {
		kinds = make(map[domain.RelationKind][]*domain.Relation)
		m.bySource[sourceDocumentID] = kinds
	}

	fresh := make([]*domain.Relation, len(relations))
	for i, r := range relations {
		cp := *r
		fresh[i] = &cp
	}
	kinds[kind] = fresh
	return nil
}

func (m *MockRelationStore) GetBySource(ctx context.Context, sourceDocumentID string) ([]*domain.Relation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Relation
	for _, kind := range []domain.RelationKind{domain.RelationKindLink, domain.RelationKindConceptual} {
		for _, r := range m.bySource[sourceDocumentID][kind] {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockRelationStore) GetByTarget(ctx context.Context, targetDocumentID string) ([]*domain.Relation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Relation
	for _, kinds := range m.bySource {
		for _, relations := range kinds {
			for _, r := range relations {
				if r.TargetDocumentID == targetDocumentID {
					cp := *r
					out = append(out, &cp)
				}
			}
		}
	}
	return out, nil
}
