package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

func TestCrawler_DiscoverAppliesFilters(t *testing.T) {
	report := `README | README.md | 2024-05-01 | 120
docs/
  A | a.md | 2024-05-02 | 10
  Logo | logo.png | 2024-05-02 | 900
node_modules/
  Dep | readme.md | 2024-05-02 | 30
`
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "tree.txt")
	if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}

	crawler := New(reportPath, domain.DefaultConfig(dir), nil)
	if crawler.Mode() != driven.CrawlerModeReport {
		t.Fatalf("expected report mode, got %s", crawler.Mode())
	}

	descriptors, err := crawler.Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"README.md", "docs/a.md"}
	if got := parsedPaths(descriptors); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCrawler_MissingReportFails(t *testing.T) {
	dir := t.TempDir()
	crawler := New(filepath.Join(dir, "absent.txt"), domain.DefaultConfig(dir), nil)

	_, err := crawler.Discover(context.Background())
	if !errors.Is(err, domain.ErrRootUnreadable) {
		t.Errorf("expected ErrRootUnreadable, got %v", err)
	}
}

func TestCrawler_ReadResolvesAgainstRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "docs", "a.md"), []byte("# A\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	crawler := New(filepath.Join(dir, "tree.txt"), domain.DefaultConfig(dir), nil)

	content, err := crawler.Read(context.Background(), "docs/a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(content) != "# A\n" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestBuilder_RequiresReportPath(t *testing.T) {
	build := Builder("", nil)
	if _, err := build(domain.DefaultConfig(t.TempDir())); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
