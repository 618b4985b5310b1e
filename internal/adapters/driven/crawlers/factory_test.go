package crawlers

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
)

type stubCrawler struct {
	mode driven.CrawlerMode
}

func (s *stubCrawler) Mode() driven.CrawlerMode { return s.mode }
func (s *stubCrawler) Discover(ctx context.Context) ([]domain.FileDescriptor, error) {
	return nil, nil
}
func (s *stubCrawler) Read(ctx context.Context, path string) ([]byte, error) {
	return nil, domain.ErrNotFound
}

func TestFactory_CreateRegisteredMode(t *testing.T) {
	factory := NewFactory()
	factory.Register(driven.CrawlerModeFS, func(cfg domain.Config) (driven.Crawler, error) {
		return &stubCrawler{mode: driven.CrawlerModeFS}, nil
	})

	crawler, err := factory.Create(driven.CrawlerModeFS, domain.DefaultConfig("/corpus"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if crawler.Mode() != driven.CrawlerModeFS {
		t.Errorf("expected fs mode, got %s", crawler.Mode())
	}
}

func TestFactory_CreateUnknownMode(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create(driven.CrawlerModeReport, domain.DefaultConfig("/corpus"))
	if !errors.Is(err, domain.ErrCrawlerNotFound) {
		t.Errorf("expected ErrCrawlerNotFound, got %v", err)
	}
}

func TestFactory_SupportedModes(t *testing.T) {
	factory := NewFactory()
	factory.Register(driven.CrawlerModeFS, func(cfg domain.Config) (driven.Crawler, error) {
		return &stubCrawler{mode: driven.CrawlerModeFS}, nil
	})
	factory.Register(driven.CrawlerModeReport, func(cfg domain.Config) (driven.Crawler, error) {
		return &stubCrawler{mode: driven.CrawlerModeReport}, nil
	})

	modes := factory.SupportedModes()
	if len(modes) != 2 {
		t.Errorf("expected 2 modes, got %v", modes)
	}
}

func TestFilter_AdmitsPath(t *testing.T) {
	filter := NewFilter(domain.DefaultConfig("/corpus"))

	cases := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"docs/a.mdx", true},
		{"docs/notes.txt", true},
		{"docs/logo.png", false},
		{"node_modules/pkg/readme.md", false},
		{"docs/node_modules/readme.md", false},
		{"nested/.git/config.md", false},
	}
	for _, tc := range cases {
		if got := filter.AdmitsPath(tc.path); got != tc.want {
			t.Errorf("AdmitsPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
