package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
	"github.com/custodia-labs/docdex-core/internal/markdown"
)

// readFailurePlaceholder stands in for content that vanished or became
// unreadable between discovery and read. The file counts as failed but
// its record still exists, so the path stays known to the corpus.
const readFailurePlaceholder = "[content unavailable]"

// syncLockTTL bounds how long a crashed run can block the next one.
const syncLockTTL = 30 * time.Minute

// SyncOrchestrator coordinates one index run end to end:
//  1. Discover the corpus (filesystem walk or report fallback)
//  2. Per file: read, fingerprint, classify added/updated/unchanged
//  3. On change: upsert the record, regenerate sections, enqueue enrichment
//  4. Flag records whose paths vanished
//  5. Rebuild relations for every touched document against the
//     now-complete path index
//
// Phases 2-3 run with bounded parallelism; phase 5 starts only after
// every file is classified and upserted, so link resolution never
// depends on processing order within the batch.
type SyncOrchestrator struct {
	crawler       driven.Crawler
	documentStore driven.DocumentStore
	sectionStore  driven.SectionStore
	taskQueue     driven.TaskQueue
	detector      *RelationDetector
	lock          driven.DistributedLock
	parser        *markdown.Parser
	config        domain.Config
	logger        *slog.Logger
}

// SyncOrchestratorConfig holds dependencies for SyncOrchestrator.
type SyncOrchestratorConfig struct {
	Crawler       driven.Crawler
	DocumentStore driven.DocumentStore
	SectionStore  driven.SectionStore
	TaskQueue     driven.TaskQueue
	Detector      *RelationDetector
	Lock          driven.DistributedLock // optional; nil means single-instance mode
	Parser        *markdown.Parser
	Config        domain.Config
	Logger        *slog.Logger
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(cfg SyncOrchestratorConfig) *SyncOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parser := cfg.Parser
	if parser == nil {
		parser = markdown.NewParser()
	}
	config := cfg.Config
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	return &SyncOrchestrator{
		crawler:       cfg.Crawler,
		documentStore: cfg.DocumentStore,
		sectionStore:  cfg.SectionStore,
		taskQueue:     cfg.TaskQueue,
		detector:      cfg.Detector,
		lock:          cfg.Lock,
		parser:        parser,
		config:        config,
		logger:        logger,
	}
}

// fileOutcome is the per-file result of the ingest phase.
type fileOutcome struct {
	path    string
	kind    domain.ChangeKind
	failed  bool
	content string // retained for touched files, used by relation pass
}

// Run executes one full sync over the configured root.
// Only a failed discovery walk aborts the run; every per-file error is
// isolated to that file's outcome counter.
func (o *SyncOrchestrator) Run(ctx context.Context) (*domain.SyncReport, error) {
	startTime := time.Now()

	if o.lock != nil {
		lockName := "sync:" + o.config.RootPath
		acquired, err := o.lock.Acquire(ctx, lockName, syncLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire sync lock: %w", err)
		}
		if !acquired {
			return nil, domain.ErrSyncInProgress
		}
		defer func() {
			if err := o.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
				o.logger.Warn("failed to release sync lock", "error", err)
			}
		}()
	}

	o.logger.Info("starting sync", "root", o.config.RootPath, "mode", o.crawler.Mode())

	descriptors, err := o.crawler.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	outcomes := o.ingest(ctx, descriptors)

	report := &domain.SyncReport{}
	presentPaths := make([]string, 0, len(descriptors))
	touched := make(map[string]string, len(outcomes))

	for _, out := range outcomes {
		presentPaths = append(presentPaths, out.path)
		switch {
		case out.failed:
			report.Failed++
		case out.kind == domain.ChangeAdded:
			report.Added++
			touched[out.path] = out.content
		case out.kind == domain.ChangeUpdated:
			report.Updated++
			touched[out.path] = out.content
		default:
			report.Unchanged++
		}
	}

	flagged, err := o.documentStore.MarkMissing(ctx, presentPaths)
	if err != nil {
		o.logger.Warn("failed to flag missing documents", "error", err)
	}
	report.Missing = flagged

	report.TouchedPaths = make([]string, 0, len(touched))
	for path := range touched {
		report.TouchedPaths = append(report.TouchedPaths, path)
	}
	sort.Strings(report.TouchedPaths)

	// Relation pass: runs strictly after every file is upserted so the
	// path index is complete for the whole batch.
	if failures := o.relate(ctx, report.TouchedPaths, touched); failures > 0 {
		report.Failed += failures
	}

	report.Duration = time.Since(startTime)

	o.logger.Info("sync completed",
		"root", o.config.RootPath,
		"added", report.Added,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
		"missing", report.Missing,
		"duration", report.Duration,
	)

	return report, nil
}

// Tree discovers the corpus and builds the display forest without
// touching any store.
func (o *SyncOrchestrator) Tree(ctx context.Context) ([]*domain.TreeNode, error) {
	descriptors, err := o.crawler.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	return domain.BuildTree(descriptors), nil
}

// ingest runs the per-file read/classify/upsert phase over a bounded
// worker pool. No cross-file ordering is required here.
func (o *SyncOrchestrator) ingest(ctx context.Context, descriptors []domain.FileDescriptor) []fileOutcome {
	jobs := make(chan domain.FileDescriptor)
	results := make(chan fileOutcome, len(descriptors))

	var wg sync.WaitGroup
	for i := 0; i < o.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for desc := range jobs {
				results <- o.processFile(ctx, desc)
			}
		}()
	}

	for _, desc := range descriptors {
		jobs <- desc
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcomes := make([]fileOutcome, 0, len(descriptors))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// processFile classifies one file and applies its writes.
func (o *SyncOrchestrator) processFile(ctx context.Context, desc domain.FileDescriptor) fileOutcome {
	out := fileOutcome{path: desc.Path}

	content, err := o.crawler.Read(ctx, desc.Path)
	readFailed := err != nil
	if readFailed {
		o.logger.Warn("failed to read file", "path", desc.Path, "error", err)
		content = []byte(readFailurePlaceholder)
		out.failed = true
	}

	hash := domain.Fingerprint(content)

	existing, err := o.documentStore.GetByPath(ctx, desc.Path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		o.logger.Warn("failed to load document", "path", desc.Path, "error", err)
		out.failed = true
		return out
	}

	out.kind = domain.ClassifyChange(existing, hash, desc.ModifiedAt)
	if out.kind == domain.ChangeUnchanged {
		// No writes on unchanged: rerunning sync on an untouched tree is
		// read-only apart from the missing-flag pass.
		return out
	}

	now := time.Now()
	doc := &domain.Document{
		ID:             domain.GenerateID(),
		Path:           desc.Path,
		Title:          o.parser.ExtractTitle(content, desc.Name),
		ContentHash:    hash,
		LastModifiedAt: desc.ModifiedAt,
		LastIndexedAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.Summary = existing.Summary
		doc.AITags = existing.AITags
		doc.ManualTags = existing.ManualTags
		doc.Metadata = existing.Metadata
		doc.CreatedAt = existing.CreatedAt
	}

	if err := o.documentStore.Save(ctx, doc); err != nil {
		o.logger.Warn("failed to save document", "path", desc.Path, "error", err)
		out.failed = true
		return out
	}

	if readFailed {
		// The record exists with placeholder content, but nothing
		// downstream should run on it this cycle.
		return out
	}

	sections := o.parser.ExtractSections(content)
	for _, s := range sections {
		s.ID = domain.GenerateID()
		s.DocumentID = doc.ID
	}
	if err := o.sectionStore.ReplaceForDocument(ctx, doc.ID, sections); err != nil {
		o.logger.Warn("failed to replace sections", "path", desc.Path, "error", err)
		out.failed = true
		return out
	}

	if err := o.taskQueue.Enqueue(ctx, doc.ID, 0); err != nil {
		o.logger.Warn("failed to enqueue enrichment", "path", desc.Path, "error", err)
		out.failed = true
		return out
	}

	out.content = string(content)
	return out
}

// relate rebuilds relations for every touched document against the full
// current corpus. Returns the number of documents whose relation writes
// failed.
func (o *SyncOrchestrator) relate(ctx context.Context, touchedPaths []string, contents map[string]string) int {
	if o.detector == nil || len(touchedPaths) == 0 {
		return 0
	}

	corpus, err := o.documentStore.List(ctx)
	if err != nil {
		o.logger.Warn("failed to list corpus for relation pass", "error", err)
		return len(touchedPaths)
	}

	byPath := make(map[string]*domain.Document, len(corpus))
	for _, doc := range corpus {
		byPath[doc.Path] = doc
	}
	index := domain.NewPathIndex(corpus)

	failures := 0
	for _, path := range touchedPaths {
		doc, ok := byPath[path]
		if !ok {
			continue
		}
		if err := o.detector.Rebuild(ctx, doc, contents[path], index, corpus); err != nil {
			o.logger.Warn("failed to rebuild relations", "path", path, "error", err)
			failures++
		}
	}
	return failures
}
