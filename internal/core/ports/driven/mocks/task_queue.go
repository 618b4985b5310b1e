package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// MockTaskQueue is an in-memory TaskQueue for testing. Claim is guarded
// by the mutex, so the exactly-one-claimer guarantee holds here too.
type MockTaskQueue struct {
	mu      sync.Mutex
	entries map[string]*domain.QueueEntry

	// EnqueueErr makes Enqueue fail
	EnqueueErr error

	// EnqueueCalls counts Enqueue invocations
	EnqueueCalls int

	// MaxAttempts overrides the retry bound for new entries (0 = default)
	MaxAttempts int
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{
		entries: make(map[string]*domain.QueueEntry),
	}
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, documentID string, priority int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EnqueueCalls++
	if m.EnqueueErr != nil {
		return m.EnqueueErr
	}

	for _, e := range m.entries {
		if e.DocumentID != documentID || !e.IsActive() {
			continue
		}
		if e.Status == domain.QueueStatusProcessing {
			return nil
		}
		e.Rearm()
		e.Priority = priority
		return nil
	}

	entry := domain.NewQueueEntry(documentID)
	entry.Priority = priority
	if m.MaxAttempts > 0 {
		entry.MaxAttempts = m.MaxAttempts
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockTaskQueue) Claim(ctx context.Context) (*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []*domain.QueueEntry
	for _, e := range m.entries {
		if e.Status == domain.QueueStatusPending {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})

	entry := pending[0]
	entry.MarkProcessing()
	cp := *entry
	return &cp, nil
}

func (m *MockTaskQueue) Resolve(ctx context.Context, entryID string, success bool, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[entryID]
	if !ok {
		return domain.ErrNotFound
	}
	if success {
		entry.MarkCompleted()
	} else {
		entry.MarkFailed(reason)
	}
	return nil
}

func (m *MockTaskQueue) Get(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[entryID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (m *MockTaskQueue) GetActiveByDocument(ctx context.Context, documentID string) (*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.DocumentID == documentID && e.IsActive() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTaskQueue) Requeue(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[entryID]
	if !ok {
		return domain.ErrNotFound
	}
	if entry.Status != domain.QueueStatusFailed {
		return domain.ErrInvalidInput
	}
	entry.Rearm()
	return nil
}

func (m *MockTaskQueue) Purge(ctx context.Context, olderThanSeconds int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-time.Duration(olderThanSeconds) * time.Second)
	removed := 0
	for id, e := range m.entries {
		if !e.IsActive() && e.UpdatedAt.Before(cutoff) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MockTaskQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &driven.QueueStats{}
	for _, e := range m.entries {
		switch e.Status {
		case domain.QueueStatusPending:
			stats.PendingCount++
		case domain.QueueStatusProcessing:
			stats.ProcessingCount++
		case domain.QueueStatusCompleted:
			stats.CompletedCount++
		case domain.QueueStatusFailed:
			stats.FailedCount++
		}
	}
	return stats, nil
}

func (m *MockTaskQueue) Ping(ctx context.Context) error {
	return nil
}
