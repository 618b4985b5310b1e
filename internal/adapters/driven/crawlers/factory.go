package crawlers

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.CrawlerFactory = (*Factory)(nil)

// Factory creates crawlers by mode from a registry of builders.
type Factory struct {
	mu       sync.RWMutex
	builders map[driven.CrawlerMode]driven.CrawlerBuilder
}

// NewFactory creates an empty crawler factory.
func NewFactory() *Factory {
	return &Factory{
		builders: make(map[driven.CrawlerMode]driven.CrawlerBuilder),
	}
}

// Register registers a crawler builder for a mode.
func (f *Factory) Register(mode driven.CrawlerMode, build driven.CrawlerBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[mode] = build
}

// Create creates a crawler for the given mode and pipeline config.
func (f *Factory) Create(mode driven.CrawlerMode, cfg domain.Config) (driven.Crawler, error) {
	f.mu.RLock()
	build, ok := f.builders[mode]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCrawlerNotFound, mode)
	}

	crawler, err := build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s crawler: %w", mode, err)
	}
	return crawler, nil
}

// SupportedModes returns all registered modes.
func (f *Factory) SupportedModes() []driven.CrawlerMode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	modes := make([]driven.CrawlerMode, 0, len(f.builders))
	for mode := range f.builders {
		modes = append(modes, mode)
	}
	return modes
}
