package fs

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

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func discoveredPaths(descriptors []domain.FileDescriptor) []string {
	paths := make([]string, len(descriptors))
	for i, d := range descriptors {
		paths[i] = d.Path
	}
	return paths
}

func TestDiscover_FiltersAndRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Readme\n")
	writeFile(t, root, "docs/a.md", "# A\n")
	writeFile(t, root, "docs/sub/b.md", "# B\n")
	writeFile(t, root, "docs/image.png", "binary")
	writeFile(t, root, "node_modules/pkg/readme.md", "# Dep\n")
	writeFile(t, root, ".git/config.md", "# Not docs\n")

	crawler := New(domain.DefaultConfig(root), nil)

	descriptors, err := crawler.Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"README.md", "docs/a.md", "docs/sub/b.md"}
	if got := discoveredPaths(descriptors); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	for _, d := range descriptors {
		if d.Size == 0 {
			t.Errorf("expected non-zero size for %s", d.Path)
		}
		if d.ModifiedAt.IsZero() {
			t.Errorf("expected modified time for %s", d.Path)
		}
	}
}

func TestDiscover_EmptyIncludeAdmitsEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "notes.rst", "notes")
	writeFile(t, root, "a.md", "# A\n")

	cfg := domain.DefaultConfig(root)
	cfg.IncludeExtensions = nil
	crawler := New(cfg, nil)

	descriptors, err := crawler.Discover(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) != 2 {
		t.Errorf("expected 2 files, got %v", discoveredPaths(descriptors))
	}
}

func TestDiscover_MissingRootFails(t *testing.T) {
	crawler := New(domain.DefaultConfig(filepath.Join(t.TempDir(), "absent")), nil)

	_, err := crawler.Discover(context.Background())
	if !errors.Is(err, domain.ErrRootUnreadable) {
		t.Errorf("expected ErrRootUnreadable, got %v", err)
	}
}

func TestRead_RoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md", "# A\n\nBody.\n")

	crawler := New(domain.DefaultConfig(root), nil)

	content, err := crawler.Read(context.Background(), "docs/a.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(content) != "# A\n\nBody.\n" {
		t.Errorf("unexpected content: %q", content)
	}

	if _, err := crawler.Read(context.Background(), "docs/vanished.md"); err == nil {
		t.Error("expected error reading a vanished file")
	}
}

func TestBuilder_RequiresRoot(t *testing.T) {
	build := Builder(nil)

	if _, err := build(domain.Config{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	crawler, err := build(domain.DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crawler.Mode() != driven.CrawlerModeFS {
		t.Errorf("expected fs mode, got %s", crawler.Mode())
	}
}
