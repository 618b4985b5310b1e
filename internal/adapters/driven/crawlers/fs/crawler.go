// Package fs implements the filesystem crawler: recursive discovery under
// a root directory with include/exclude filtering.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/docdex-core/internal/adapters/driven/crawlers"
	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Crawler = (*Crawler)(nil)

// Crawler walks the filesystem under a root directory. Discovered paths
// are slash-separated and relative to the root.
type Crawler struct {
	root   string
	filter *crawlers.Filter
	logger *slog.Logger
}

// New creates a filesystem crawler for the configured root.
func New(cfg domain.Config, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		root:   cfg.RootPath,
		filter: crawlers.NewFilter(cfg),
		logger: logger,
	}
}

// Builder adapts New to the factory's builder signature.
func Builder(logger *slog.Logger) driven.CrawlerBuilder {
	return func(cfg domain.Config) (driven.Crawler, error) {
		if cfg.RootPath == "" {
			return nil, fmt.Errorf("%w: root path is required", domain.ErrInvalidInput)
		}
		return New(cfg, logger), nil
	}
}

// Mode returns the crawler mode.
func (c *Crawler) Mode() driven.CrawlerMode {
	return driven.CrawlerModeFS
}

// Discover walks the root recursively. Excluded directories are pruned,
// unreadable subpaths are skipped with a logged cause; only an unreadable
// root fails the walk.
func (c *Crawler) Discover(ctx context.Context) ([]domain.FileDescriptor, error) {
	var descriptors []domain.FileDescriptor

	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if path == c.root {
				return fmt.Errorf("%w: %s: %v", domain.ErrRootUnreadable, c.root, walkErr)
			}
			c.logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			return nil
		}

		if d.IsDir() {
			if path != c.root && c.filter.ExcludesDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !c.filter.AdmitsFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			c.logger.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			c.logger.Warn("skipping file outside root", "path", path, "error", err)
			return nil
		}

		descriptors = append(descriptors, domain.FileDescriptor{
			Path:       filepath.ToSlash(rel),
			Name:       d.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Path < descriptors[j].Path
	})

	return descriptors, nil
}

// Read returns the content of a discovered file by its relative path.
func (c *Crawler) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}
