package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// MockCrawler is a scripted Crawler for testing
type MockCrawler struct {
	mu sync.RWMutex

	// Descriptors returned by Discover
	Descriptors []domain.FileDescriptor

	// Contents maps path to file content for Read
	Contents map[string][]byte

	// DiscoverErr makes Discover fail
	DiscoverErr error

	// ReadErrs makes Read fail for specific paths
	ReadErrs map[string]error
}

// NewMockCrawler creates a new MockCrawler
func NewMockCrawler() *MockCrawler {
	return &MockCrawler{
		Contents: make(map[string][]byte),
		ReadErrs: make(map[string]error),
	}
}

// AddFile registers a descriptor and its content in one call
func (m *MockCrawler) AddFile(desc domain.FileDescriptor, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Descriptors = append(m.Descriptors, desc)
	m.Contents[desc.Path] = []byte(content)
}

func (m *MockCrawler) Mode() driven.CrawlerMode {
	return driven.CrawlerModeFS
}

func (m *MockCrawler) Discover(ctx context.Context) ([]domain.FileDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.DiscoverErr != nil {
		return nil, m.DiscoverErr
	}
	out := make([]domain.FileDescriptor, len(m.Descriptors))
	copy(out, m.Descriptors)
	return out, nil
}

func (m *MockCrawler) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.ReadErrs[path]; ok {
		return nil, err
	}
	content, ok := m.Contents[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}
