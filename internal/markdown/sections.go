// Package markdown extracts document structure from markdown content
// using goldmark AST parsing: section outlines, inline link targets and
// display titles.
package markdown

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
)

// Parser wraps a configured goldmark instance. Safe for concurrent use;
// goldmark parsers are stateless across Parse calls.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a markdown parser with table support.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// ExtractSections segments content by headings. Each heading of level
// 1-6 yields one section with a 0-based position in document order and
// an anchor slug derived from the heading text. ID and DocumentID are
// left for the caller to fill.
func (p *Parser) ExtractSections(content []byte) []*domain.Section {
	doc := p.md.Parser().Parse(text.NewReader(content))

	var sections []*domain.Section
	position := 0

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := nodeText(heading, content)
		sections = append(sections, &domain.Section{
			Heading:    headingText,
			Level:      heading.Level,
			Position:   position,
			AnchorSlug: domain.AnchorSlug(headingText),
		})
		position++
		return ast.WalkSkipChildren, nil
	})

	return sections
}

// ExtractLinkTargets returns the raw destinations of all inline links in
// document order. Images and autolinks are not links between documents
// and are skipped.
func (p *Parser) ExtractLinkTargets(content []byte) []string {
	doc := p.md.Parser().Parse(text.NewReader(content))

	var targets []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			targets = append(targets, string(link.Destination))
		}
		return ast.WalkContinue, nil
	})

	return targets
}

// ExtractTitle derives a display title: first level-1 heading, else the
// first level-2 heading, else the filename without extension with each
// word capitalized.
func (p *Parser) ExtractTitle(content []byte, filename string) string {
	doc := p.md.Parser().Parse(text.NewReader(content))

	var firstH1, firstH2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := nodeText(heading, content)
		if heading.Level == 1 && firstH1 == "" {
			firstH1 = headingText
			return ast.WalkStop, nil
		}
		if heading.Level == 2 && firstH2 == "" {
			firstH2 = headingText
		}
		return ast.WalkSkipChildren, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(filename)
}

// titleFromFilename strips the extension and capitalizes each word.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// nodeText collects the plain text of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// FirstSentence returns the first sentence of the content with markdown
// heading lines skipped, used by the conceptual relation heuristic.
func FirstSentence(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, stop := range []string{". ", "! ", "? "} {
			if idx := strings.Index(line, stop); idx >= 0 {
				return line[:idx+1]
			}
		}
		return line
	}
	return ""
}
