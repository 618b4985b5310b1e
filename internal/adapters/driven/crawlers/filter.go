package crawlers

import (
	"path"
	"strings"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// Filter applies the include-extension and exclude-directory rules shared
// by every crawler mode, so both modes admit the same descriptor set for
// the same tree.
type Filter struct {
	includeExts map[string]struct{}
	excludeDirs map[string]struct{}
}

// NewFilter builds a filter from pipeline config.
func NewFilter(cfg domain.Config) *Filter {
	f := &Filter{
		includeExts: make(map[string]struct{}, len(cfg.IncludeExtensions)),
		excludeDirs: make(map[string]struct{}, len(cfg.ExcludeDirNames)),
	}
	for _, ext := range cfg.IncludeExtensions {
		f.includeExts[strings.ToLower(ext)] = struct{}{}
	}
	for _, name := range cfg.ExcludeDirNames {
		f.excludeDirs[name] = struct{}{}
	}
	return f
}

// AdmitsFile reports whether a file name passes the extension filter.
// An empty include set admits everything.
func (f *Filter) AdmitsFile(name string) bool {
	if len(f.includeExts) == 0 {
		return true
	}
	_, ok := f.includeExts[strings.ToLower(path.Ext(name))]
	return ok
}

// ExcludesDir reports whether a directory name matches an exclusion exactly.
func (f *Filter) ExcludesDir(name string) bool {
	_, ok := f.excludeDirs[name]
	return ok
}

// AdmitsPath applies both rules to a slash-separated relative path: every
// intermediate segment is checked as a directory name, the last as a file.
func (f *Filter) AdmitsPath(relPath string) bool {
	segments := strings.Split(relPath, "/")
	for _, dir := range segments[:len(segments)-1] {
		if f.ExcludesDir(dir) {
			return false
		}
	}
	return f.AdmitsFile(segments[len(segments)-1])
}
