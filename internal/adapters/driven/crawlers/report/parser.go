// Package report implements the fallback crawler: it reconstructs the
// descriptor set from a previously generated flat text report instead of
// walking the tree directly. Used when traversal access is unavailable.
package report

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// The report line grammar has two productions:
//
//	docs/
//	  Getting Started | getting-started.md | 2024-05-01T10:00:00Z | 1204
//
// A folder marker is a name with a trailing path separator. A file marker
// carries the display name, the link target (the file's name on disk),
// the modified date and the size, pipe-separated. Indentation is a fixed
// unit per nesting level, detected from the first indented line.

const fieldSeparator = "|"

// Parser reconstructs FileDescriptors from report text in a single
// forward pass, resolving each line's parent through a per-level
// current-folder map.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a report parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reads the whole report. Malformed or orphaned lines are skipped
// with a logged cause; they never abort the parse.
func (p *Parser) Parse(data []byte) ([]domain.FileDescriptor, error) {
	var descriptors []domain.FileDescriptor

	// current folder path per depth, updated line by line
	folders := make(map[int]string)
	indentUnit := 0

	for lineNo, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}

		indent := indentWidth(line)
		if indentUnit == 0 && indent > 0 {
			indentUnit = indent
		}

		depth := 0
		if indentUnit > 0 {
			depth = indent / indentUnit
		}

		parent, ok := folders[depth-1]
		if depth > 0 && !ok {
			p.logger.Warn("skipping orphaned report line", "line", lineNo+1)
			continue
		}

		if name, isFolder := strings.CutSuffix(trimmed, "/"); isFolder {
			folders[depth] = joinPath(parent, name)
			// deeper stale entries are unreachable from here on
			for d := depth + 1; ; d++ {
				if _, stale := folders[d]; !stale {
					break
				}
				delete(folders, d)
			}
			continue
		}

		desc, err := parseFileLine(trimmed, parent)
		if err != nil {
			p.logger.Warn("skipping malformed report line", "line", lineNo+1, "error", err)
			continue
		}
		descriptors = append(descriptors, desc)
	}

	return descriptors, nil
}

func parseFileLine(line, parent string) (domain.FileDescriptor, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != 4 {
		return domain.FileDescriptor{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	name := fields[1]
	if name == "" {
		return domain.FileDescriptor{}, fmt.Errorf("empty link target")
	}

	modifiedAt, err := parseDate(fields[2])
	if err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("modified date %q: %w", fields[2], err)
	}

	size, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("size %q: %w", fields[3], err)
	}

	return domain.FileDescriptor{
		Path:       joinPath(parent, name),
		Name:       name,
		Size:       size,
		ModifiedAt: modifiedAt,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// indentWidth counts leading indent characters. A report uses one
// consistent unit throughout, N spaces or a single tab per level.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		width++
	}
	return width
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
