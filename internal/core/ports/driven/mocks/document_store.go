package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Document
	byPath map[string]*domain.Document

	// SaveErr makes Save fail, for storage-error isolation tests
	SaveErr error

	// SaveCalls counts Save invocations
	SaveCalls int
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		byID:   make(map[string]*domain.Document),
		byPath: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}

	cp := *doc
	if existing, ok := m.byPath[doc.Path]; ok {
		cp.ID = existing.ID
	}
	m.byID[cp.ID] = &cp
	m.byPath[cp.Path] = &cp
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MockDocumentStore) GetByPath(ctx context.Context, path string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.byPath[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MockDocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.byPath))
	for p := range m.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	docs := make([]*domain.Document, 0, len(paths))
	for _, p := range paths {
		cp := *m.byPath[p]
		docs = append(docs, &cp)
	}
	return docs, nil
}

func (m *MockDocumentStore) SetEnrichment(ctx context.Context, id string, summary string, aiTags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Summary = summary
	doc.AITags = aiTags
	doc.UpdatedAt = time.Now()
	return nil
}

func (m *MockDocumentStore) MarkMissing(ctx context.Context, presentPaths []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	present := make(map[string]struct{}, len(presentPaths))
	for _, p := range presentPaths {
		present[p] = struct{}{}
	}

	flagged := 0
	now := time.Now()
	for path, doc := range m.byPath {
		if _, ok := present[path]; ok {
			doc.Missing = false
			doc.MissingSince = nil
			continue
		}
		if !doc.Missing {
			doc.Missing = true
			doc.MissingSince = &now
			flagged++
		}
	}
	return flagged, nil
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}
