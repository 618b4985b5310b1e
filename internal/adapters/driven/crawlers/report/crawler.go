package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docdex-core/internal/adapters/driven/crawlers"
	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Crawler = (*Crawler)(nil)

// Crawler discovers the corpus from a report file instead of walking the
// tree. Content reads still resolve against the configured root, so a
// readable root with an up-to-date report behaves exactly like fs mode.
type Crawler struct {
	reportPath string
	root       string
	parser     *Parser
	filter     *crawlers.Filter
}

// New creates a report crawler reading the given report file.
func New(reportPath string, cfg domain.Config, logger *slog.Logger) *Crawler {
	return &Crawler{
		reportPath: reportPath,
		root:       cfg.RootPath,
		parser:     NewParser(logger),
		filter:     crawlers.NewFilter(cfg),
	}
}

// Builder adapts New to the factory's builder signature.
func Builder(reportPath string, logger *slog.Logger) driven.CrawlerBuilder {
	return func(cfg domain.Config) (driven.Crawler, error) {
		if reportPath == "" {
			return nil, fmt.Errorf("%w: report path is required", domain.ErrInvalidInput)
		}
		return New(reportPath, cfg, logger), nil
	}
}

// Mode returns the crawler mode.
func (c *Crawler) Mode() driven.CrawlerMode {
	return driven.CrawlerModeReport
}

// Discover parses the report and applies the same include/exclude filters
// as the filesystem walk. An unreadable report is the root failure of
// this mode.
func (c *Crawler) Discover(ctx context.Context) ([]domain.FileDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.reportPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRootUnreadable, c.reportPath, err)
	}

	parsed, err := c.parser.Parse(data)
	if err != nil {
		return nil, err
	}

	descriptors := make([]domain.FileDescriptor, 0, len(parsed))
	for _, desc := range parsed {
		if c.filter.AdmitsPath(desc.Path) {
			descriptors = append(descriptors, desc)
		}
	}
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
