package driven

import (
	"context"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// CrawlerMode selects how the corpus is discovered.
type CrawlerMode string

const (
	// CrawlerModeFS walks the filesystem recursively
	CrawlerModeFS CrawlerMode = "fs"

	// CrawlerModeReport parses a previously generated flat text report,
	// used when direct traversal access is unavailable
	CrawlerModeReport CrawlerMode = "report"
)

// Crawler discovers the document corpus and reads file contents.
// Both crawler modes yield the same descriptor set for the same tree.
type Crawler interface {
	// Mode returns the crawler mode.
	Mode() CrawlerMode

	// Discover enumerates files under the configured root, applying the
	// include-extension and exclude-directory filters. Unreadable
	// subpaths are skipped with a logged cause; only an unreadable root
	// fails the call (wrapping domain.ErrRootUnreadable).
	Discover(ctx context.Context) ([]domain.FileDescriptor, error)

	// Read returns the content of a discovered file. A failure here is
	// isolated to the one file by the orchestrator, never fatal.
	Read(ctx context.Context, path string) ([]byte, error)
}

// CrawlerFactory creates crawlers by mode.
type CrawlerFactory interface {
	// Register registers a crawler builder for a mode
	Register(mode CrawlerMode, build CrawlerBuilder)

	// Create creates a crawler for the given mode and pipeline config
	Create(mode CrawlerMode, cfg domain.Config) (Crawler, error)

	// SupportedModes returns all registered modes
	SupportedModes() []CrawlerMode
}

// CrawlerBuilder constructs a crawler from pipeline configuration.
type CrawlerBuilder func(cfg domain.Config) (Crawler, error)
