package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven/mocks"
)

type syncFixture struct {
	orchestrator  *SyncOrchestrator
	crawler       *mocks.MockCrawler
	documentStore *mocks.MockDocumentStore
	sectionStore  *mocks.MockSectionStore
	relationStore *mocks.MockRelationStore
	taskQueue     *mocks.MockTaskQueue
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	crawler := mocks.NewMockCrawler()
	documentStore := mocks.NewMockDocumentStore()
	sectionStore := mocks.NewMockSectionStore()
	relationStore := mocks.NewMockRelationStore()
	taskQueue := mocks.NewMockTaskQueue()

	detector := NewRelationDetector(RelationDetectorConfig{
		RelationStore: relationStore,
		Strategy:      NewKeywordStrategy(nil, 5),
	})

	orchestrator := NewSyncOrchestrator(SyncOrchestratorConfig{
		Crawler:       crawler,
		DocumentStore: documentStore,
		SectionStore:  sectionStore,
		TaskQueue:     taskQueue,
		Detector:      detector,
		Config:        domain.DefaultConfig("/corpus"),
	})

	return &syncFixture{
		orchestrator:  orchestrator,
		crawler:       crawler,
		documentStore: documentStore,
		sectionStore:  sectionStore,
		relationStore: relationStore,
		taskQueue:     taskQueue,
	}
}

func modTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func addFile(f *syncFixture, path, content string, mod time.Time) {
	name := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			name = path[i+1:]
			break
		}
	}
	f.crawler.AddFile(domain.FileDescriptor{
		Path:       path,
		Name:       name,
		Size:       int64(len(content)),
		ModifiedAt: mod,
	}, content)
}

func TestRun_InitialSyncAddsEverything(t *testing.T) {
	f := newSyncFixture(t)
	addFile(f, "README.md", "# Readme\n\nSee [guide](docs/a.md).\n", modTime())
	addFile(f, "docs/a.md", "# Guide\n\n## Usage\n\nText.\n", modTime())
	addFile(f, "docs/sub/b.md", "# Other\n\nText.\n", modTime())

	report, err := f.orchestrator.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Added != 3 || report.Updated != 0 || report.Unchanged != 0 || report.Failed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.TouchedPaths) != 3 {
		t.Errorf("expected 3 touched paths, got %v", report.TouchedPaths)
	}

	doc, err := f.documentStore.GetByPath(context.Background(), "docs/a.md")
	if err != nil {
		t.Fatalf("expected docs/a.md stored: %v", err)
	}
	if doc.Title != "Guide" {
		t.Errorf("expected title Guide, got %q", doc.Title)
	}
	if doc.ContentHash == "" {
		t.Error("expected content hash stored")
	}

	sections, _ := f.sectionStore.GetByDocument(context.Background(), doc.ID)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections for docs/a.md, got %d", len(sections))
	}
	if sections[1].AnchorSlug != "usage" || sections[1].Position != 1 {
		t.Errorf("unexpected second section: %+v", sections[1])
	}

	// Each added document has a pending enrichment entry.
	entry, err := f.taskQueue.GetActiveByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("expected active queue entry: %v", err)
	}
	if entry.Status != domain.QueueStatusPending || entry.Attempts != 0 {
		t.Errorf("unexpected entry state: %+v", entry)
	}
}

func TestRun_LinkRelationResolved(t *testing.T) {
	f := newSyncFixture(t)
	addFile(f, "README.md", "See [guide](other.md) and [ext](https://example.com).\n", modTime())
	addFile(f, "docs/other.md", "# Other\n", modTime())

	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	source, _ := f.documentStore.GetByPath(context.Background(), "README.md")
	target, _ := f.documentStore.GetByPath(context.Background(), "docs/other.md")

	relations, _ := f.relationStore.GetBySource(context.Background(), source.ID)
	var links []*domain.Relation
	for _, r := range relations {
		if r.Kind == domain.RelationKindLink {
			links = append(links, r)
		}
	}
	if len(links) != 1 {
		t.Fatalf("expected exactly 1 link relation, got %d", len(links))
	}
	if links[0].TargetDocumentID != target.ID {
		t.Errorf("expected link to %s, got %s", target.ID, links[0].TargetDocumentID)
	}
}

func TestRun_SecondRunAllUnchanged(t *testing.T) {
	f := newSyncFixture(t)
	for i := 0; i < 20; i++ {
		addFile(f, fmt.Sprintf("docs/file-%02d.md", i), fmt.Sprintf("# File %02d\n\nBody %d.\n", i, i), modTime())
	}

	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	savesAfterFirst := f.documentStore.SaveCalls

	report, err := f.orchestrator.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if report.Added != 0 || report.Updated != 0 || report.Unchanged != 20 || report.Failed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if f.documentStore.SaveCalls != savesAfterFirst {
		t.Errorf("expected no document writes on unchanged run, got %d extra",
			f.documentStore.SaveCalls-savesAfterFirst)
	}
}

func TestRun_MixedChanges(t *testing.T) {
	f := newSyncFixture(t)
	for i := 0; i < 101; i++ {
		addFile(f, fmt.Sprintf("docs/file-%03d.md", i), fmt.Sprintf("# File %03d\n", i), modTime())
	}
	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// One brand new file, one modified file.
	addFile(f, "docs/new.md", "# New\n", modTime().Add(time.Hour))
	f.crawler.Contents["docs/file-007.md"] = []byte("# File 007\n\nEdited.\n")
	for i := range f.crawler.Descriptors {
		if f.crawler.Descriptors[i].Path == "docs/file-007.md" {
			f.crawler.Descriptors[i].ModifiedAt = modTime().Add(time.Hour)
		}
	}

	report, err := f.orchestrator.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if report.Added != 1 || report.Updated != 1 || report.Unchanged != 100 || report.Failed != 0 {
		t.Errorf("expected {added:1 updated:1 unchanged:100 failed:0}, got %+v", report)
	}
}

func TestRun_ReadFailureIsolated(t *testing.T) {
	f := newSyncFixture(t)
	addFile(f, "good.md", "# Good\n", modTime())
	addFile(f, "bad.md", "# Bad\n", modTime())
	f.crawler.ReadErrs["bad.md"] = errors.New("permission denied")

	report, err := f.orchestrator.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Added != 1 || report.Failed != 1 {
		t.Errorf("expected added:1 failed:1, got %+v", report)
	}

	// The failed file still has a record, with placeholder identity.
	doc, err := f.documentStore.GetByPath(context.Background(), "bad.md")
	if err != nil {
		t.Fatalf("expected record for unreadable file: %v", err)
	}
	// But no enrichment entry was armed for it.
	if _, err := f.taskQueue.GetActiveByDocument(context.Background(), doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected no active entry for failed file, got err=%v", err)
	}
}

func TestRun_DiscoveryFailureAborts(t *testing.T) {
	f := newSyncFixture(t)
	f.crawler.DiscoverErr = fmt.Errorf("%w: /corpus", domain.ErrRootUnreadable)

	_, err := f.orchestrator.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when discovery fails")
	}
	if !errors.Is(err, domain.ErrRootUnreadable) {
		t.Errorf("expected ErrRootUnreadable, got %v", err)
	}
}

func TestRun_StorageFailureIsolated(t *testing.T) {
	f := newSyncFixture(t)
	addFile(f, "a.md", "# A\n", modTime())
	addFile(f, "b.md", "# B\n", modTime())
	f.documentStore.SaveErr = errors.New("write rejected")

	report, err := f.orchestrator.Run(context.Background())
	if err != nil {
		t.Fatalf("storage errors must not abort the run: %v", err)
	}
	if report.Failed != 2 || report.Added != 0 {
		t.Errorf("expected failed:2, got %+v", report)
	}
}

func TestRun_RelationReplacement(t *testing.T) {
	f := newSyncFixture(t)
	addFile(f, "src.md", "[a](a.md) [b](b.md)\n", modTime())
	addFile(f, "a.md", "# A\n", modTime())
	addFile(f, "b.md", "# B\n", modTime())
	addFile(f, "c.md", "# C\n", modTime())

	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	src, _ := f.documentStore.GetByPath(context.Background(), "src.md")
	docA, _ := f.documentStore.GetByPath(context.Background(), "a.md")
	docC, _ := f.documentStore.GetByPath(context.Background(), "c.md")

	// Links change from {a, b} to {a, c}.
	f.crawler.Contents["src.md"] = []byte("[a](a.md) [c](c.md)\n")
	for i := range f.crawler.Descriptors {
		if f.crawler.Descriptors[i].Path == "src.md" {
			f.crawler.Descriptors[i].ModifiedAt = modTime().Add(time.Hour)
		}
	}
	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	relations, _ := f.relationStore.GetBySource(context.Background(), src.ID)
	targets := make(map[string]bool)
	for _, r := range relations {
		if r.Kind == domain.RelationKindLink {
			targets[r.TargetDocumentID] = true
		}
	}
	if len(targets) != 2 || !targets[docA.ID] || !targets[docC.ID] {
		t.Errorf("expected link targets exactly {a, c}, got %v", targets)
	}
}

func TestRun_ReindexYieldsIdenticalSections(t *testing.T) {
	f := newSyncFixture(t)
	content := "# Title\n\n## Section A\n\n## Section B\n"
	addFile(f, "doc.md", content, modTime())

	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	doc, _ := f.documentStore.GetByPath(context.Background(), "doc.md")
	first, _ := f.sectionStore.GetByDocument(context.Background(), doc.ID)

	// Touch the timestamp without changing content: forces a reindex.
	for i := range f.crawler.Descriptors {
		f.crawler.Descriptors[i].ModifiedAt = modTime().Add(time.Hour)
	}
	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := f.sectionStore.GetByDocument(context.Background(), doc.ID)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 sections both times, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Heading != second[i].Heading ||
			first[i].Level != second[i].Level ||
			first[i].Position != second[i].Position ||
			first[i].AnchorSlug != second[i].AnchorSlug {
			t.Errorf("section %d differs across reindex: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRun_VanishedPathsFlaggedNotDeleted(t *testing.T) {
	f := newSyncFixture(t)
	addFile(f, "keep.md", "# Keep\n", modTime())
	addFile(f, "gone.md", "# Gone\n", modTime())

	if _, err := f.orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// gone.md disappears from the tree.
	f.crawler.Descriptors = f.crawler.Descriptors[:1]

	report, err := f.orchestrator.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Missing != 1 {
		t.Errorf("expected 1 missing, got %d", report.Missing)
	}

	gone, err := f.documentStore.GetByPath(context.Background(), "gone.md")
	if err != nil {
		t.Fatalf("vanished record must not be deleted: %v", err)
	}
	if !gone.Missing || gone.MissingSince == nil {
		t.Errorf("expected missing flag set, got %+v", gone)
	}

	keep, _ := f.documentStore.GetByPath(context.Background(), "keep.md")
	if keep.Missing {
		t.Error("present file must not be flagged missing")
	}
}

func TestRun_LockHeldElsewhere(t *testing.T) {
	f := newSyncFixture(t)
	lock := mocks.NewMockDistributedLock()
	lock.Denied = true

	orchestrator := NewSyncOrchestrator(SyncOrchestratorConfig{
		Crawler:       f.crawler,
		DocumentStore: f.documentStore,
		SectionStore:  f.sectionStore,
		TaskQueue:     f.taskQueue,
		Lock:          lock,
		Config:        domain.DefaultConfig("/corpus"),
	})

	_, err := orchestrator.Run(context.Background())
	if !errors.Is(err, domain.ErrSyncInProgress) {
		t.Errorf("expected ErrSyncInProgress, got %v", err)
	}
}

func TestRun_LockReleasedAfterRun(t *testing.T) {
	f := newSyncFixture(t)
	addFile(f, "a.md", "# A\n", modTime())
	lock := mocks.NewMockDistributedLock()

	orchestrator := NewSyncOrchestrator(SyncOrchestratorConfig{
		Crawler:       f.crawler,
		DocumentStore: f.documentStore,
		SectionStore:  f.sectionStore,
		TaskQueue:     f.taskQueue,
		Lock:          lock,
		Config:        domain.DefaultConfig("/corpus"),
	})

	if _, err := orchestrator.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lock.Releases != 1 {
		t.Errorf("expected lock released once, got %d", lock.Releases)
	}
}
