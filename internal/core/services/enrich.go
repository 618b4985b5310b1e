package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Enricher performs one unit of deferred enrichment work: claim the
// next queue entry, run the external text-generation call and resolve
// the outcome. It is driven by the worker loop, never by sync.
type Enricher struct {
	taskQueue     driven.TaskQueue
	documentStore driven.DocumentStore
	crawler       driven.Crawler
	enrichment    driven.EnrichmentService
	logger        *slog.Logger
}

// EnricherConfig holds dependencies for Enricher.
type EnricherConfig struct {
	TaskQueue     driven.TaskQueue
	DocumentStore driven.DocumentStore
	Crawler       driven.Crawler
	Enrichment    driven.EnrichmentService
	Logger        *slog.Logger
}

// NewEnricher creates a new enrichment step service.
func NewEnricher(cfg EnricherConfig) *Enricher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Enricher{
		taskQueue:     cfg.TaskQueue,
		documentStore: cfg.DocumentStore,
		crawler:       cfg.Crawler,
		enrichment:    cfg.Enrichment,
		logger:        logger,
	}
}

// ProcessNext claims and processes one queue entry. Returns false when
// nothing was pending. Errors from the enrichment collaborator are not
// returned; they surface as failure resolutions on the entry.
func (e *Enricher) ProcessNext(ctx context.Context) (bool, error) {
	entry, err := e.taskQueue.Claim(ctx)
	if err != nil {
		return false, fmt.Errorf("claim entry: %w", err)
	}
	if entry == nil {
		return false, nil
	}

	logger := e.logger.With("entry_id", entry.ID, "document_id", entry.DocumentID, "attempt", entry.Attempts)

	if err := e.process(ctx, entry); err != nil {
		logger.Warn("enrichment failed", "error", err)
		if resolveErr := e.taskQueue.Resolve(ctx, entry.ID, false, err.Error()); resolveErr != nil {
			return true, fmt.Errorf("resolve failure: %w", resolveErr)
		}
		if !entry.CanRetry() {
			logger.Error("entry retired after exhausting retries", "error", domain.ErrQueueExhausted)
		}
		return true, nil
	}

	if err := e.taskQueue.Resolve(ctx, entry.ID, true, ""); err != nil {
		return true, fmt.Errorf("resolve success: %w", err)
	}
	logger.Info("enrichment completed")
	return true, nil
}

func (e *Enricher) process(ctx context.Context, entry *domain.QueueEntry) error {
	doc, err := e.documentStore.Get(ctx, entry.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	content, err := e.crawler.Read(ctx, doc.Path)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}

	result, err := e.enrichment.Enrich(ctx, doc.Title, string(content))
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	if err := e.documentStore.SetEnrichment(ctx, doc.ID, result.Summary, result.Tags); err != nil {
		return fmt.Errorf("store enrichment: %w", err)
	}
	return nil
}
