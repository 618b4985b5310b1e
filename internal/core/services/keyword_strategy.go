package services

import (
	"strings"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
	"github.com/custodia-labs/docdex-core/internal/markdown"
)

// Verify interface compliance
var _ driven.RelationStrategy = (*KeywordStrategy)(nil)

// minKeywordLen filters filler words from the first sentence.
const minKeywordLen = 5

// KeywordStrategy proposes conceptual relations by keyword-substring
// matching: it is a cheap stand-in for semantic similarity, kept behind
// the RelationStrategy port so a real matcher can replace it.
type KeywordStrategy struct {
	parser *markdown.Parser
	cap    int
}

// NewKeywordStrategy creates the default conceptual relation strategy.
// cap bounds proposals per document; zero or negative falls back to 5.
func NewKeywordStrategy(parser *markdown.Parser, cap int) *KeywordStrategy {
	if parser == nil {
		parser = markdown.NewParser()
	}
	if cap <= 0 {
		cap = 5
	}
	return &KeywordStrategy{parser: parser, cap: cap}
}

// ProposeRelations matches headings of levels 1-3 plus content-bearing
// words of the first sentence against every other document's title and
// path, case-insensitively. Output is capped in corpus iteration order;
// no ranking is attempted.
func (s *KeywordStrategy) ProposeRelations(source *domain.Document, content string, corpus []*domain.Document) []string {
	keywords := s.keywords(content)
	if len(keywords) == 0 {
		return nil
	}

	var targets []string
	for _, other := range corpus {
		if other.ID == source.ID {
			continue
		}
		if matchesAny(other, keywords) {
			targets = append(targets, other.ID)
			if len(targets) >= s.cap {
				break
			}
		}
	}
	return targets
}

func (s *KeywordStrategy) keywords(content string) []string {
	seen := make(map[string]struct{})
	var keywords []string

	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, section := range s.parser.ExtractSections([]byte(content)) {
		if section.Level <= 3 {
			add(section.Heading)
		}
	}

	for _, word := range strings.Fields(markdown.FirstSentence(content)) {
		word = strings.Trim(word, ".,;:!?()[]\"'`")
		if len(word) >= minKeywordLen {
			add(word)
		}
	}

	return keywords
}

func matchesAny(doc *domain.Document, keywords []string) bool {
	title := strings.ToLower(doc.Title)
	path := strings.ToLower(doc.Path)
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(path, kw) {
			return true
		}
	}
	return false
}
