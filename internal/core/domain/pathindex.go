package domain

import (
	"sort"
	"strings"
)

// PathIndex maps known document paths to document IDs for link
// resolution. Paths are kept sorted so fallback matching by trailing
// filename is deterministic: the first match in path order wins,
// regardless of how many candidates share the filename.
type PathIndex struct {
	paths []string
	ids   map[string]string
}

// NewPathIndex builds an index over the given documents.
func NewPathIndex(docs []*Document) *PathIndex {
	idx := &PathIndex{
		paths: make([]string, 0, len(docs)),
		ids:   make(map[string]string, len(docs)),
	}
	for _, d := range docs {
		if _, ok := idx.ids[d.Path]; ok {
			continue
		}
		idx.ids[d.Path] = d.ID
		idx.paths = append(idx.paths, d.Path)
	}
	sort.Strings(idx.paths)
	return idx
}

// Resolve maps a normalized link target to a document ID. Exact path
// match first; failing that, the first known path whose trailing
// filename equals the target's filename. Returns false for targets that
// match nothing - unresolvable links are dropped, not errors.
func (idx *PathIndex) Resolve(target string) (string, bool) {
	if id, ok := idx.ids[target]; ok {
		return id, true
	}

	name := target
	if i := strings.LastIndex(target, "/"); i >= 0 {
		name = target[i+1:]
	}
	if name == "" {
		return "", false
	}
	for _, p := range idx.paths {
		if p == name || strings.HasSuffix(p, "/"+name) {
			return idx.ids[p], true
		}
	}
	return "", false
}

// Len returns the number of indexed paths.
func (idx *PathIndex) Len() int {
	return len(idx.paths)
}
