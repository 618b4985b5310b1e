package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/docdex-core/internal/core/domain"
	"github.com/custodia-labs/docdex-core/internal/core/ports/driven"
	"github.com/custodia-labs/docdex-core/internal/markdown"
)

// schemePrefixes mark targets that leave the corpus and never resolve
// to a document.
var schemePrefixes = []string{"http://", "https://", "ftp://", "mailto:"}

// RelationDetector rebuilds the relation sets of a document: explicit
// inline links resolved against the corpus path index, and heuristic
// conceptual relations proposed by the pluggable strategy. Both kinds
// are replaced wholesale per source document.
type RelationDetector struct {
	relationStore driven.RelationStore
	strategy      driven.RelationStrategy
	parser        *markdown.Parser
	logger        *slog.Logger
}

// RelationDetectorConfig holds dependencies for RelationDetector.
type RelationDetectorConfig struct {
	RelationStore driven.RelationStore
	Strategy      driven.RelationStrategy
	Parser        *markdown.Parser
	Logger        *slog.Logger
}

// NewRelationDetector creates a new relation detector.
func NewRelationDetector(cfg RelationDetectorConfig) *RelationDetector {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parser := cfg.Parser
	if parser == nil {
		parser = markdown.NewParser()
	}

	return &RelationDetector{
		relationStore: cfg.RelationStore,
		strategy:      cfg.Strategy,
		parser:        parser,
		logger:        logger,
	}
}

// Rebuild replaces both relation sets for one source document.
func (d *RelationDetector) Rebuild(
	ctx context.Context,
	source *domain.Document,
	content string,
	index *domain.PathIndex,
	corpus []*domain.Document,
) error {
	linkTargets := d.DetectLinkRelations(content, source, index)
	links := makeRelations(source.ID, linkTargets, domain.RelationKindLink)
	if err := d.relationStore.ReplaceForSource(ctx, source.ID, domain.RelationKindLink, links); err != nil {
		return fmt.Errorf("replace link relations: %w", err)
	}

	var conceptual []*domain.Relation
	if d.strategy != nil {
		targets := d.strategy.ProposeRelations(source, content, corpus)
		conceptual = makeRelations(source.ID, targets, domain.RelationKindConceptual)
	}
	if err := d.relationStore.ReplaceForSource(ctx, source.ID, domain.RelationKindConceptual, conceptual); err != nil {
		return fmt.Errorf("replace conceptual relations: %w", err)
	}

	return nil
}

// DetectLinkRelations parses inline [label](target) references and
// resolves them to document IDs. External schemes and fragment-only
// targets are skipped; trailing fragments are stripped; targets
// deduplicate after normalization; unresolvable targets drop silently.
func (d *RelationDetector) DetectLinkRelations(
	content string,
	source *domain.Document,
	index *domain.PathIndex,
) []string {
	raw := d.parser.ExtractLinkTargets([]byte(content))

	var ids []string
	seenTargets := make(map[string]struct{})
	seenIDs := make(map[string]struct{})

	for _, target := range raw {
		normalized, ok := normalizeLinkTarget(target)
		if !ok {
			continue
		}
		if _, dup := seenTargets[normalized]; dup {
			continue
		}
		seenTargets[normalized] = struct{}{}

		id, resolved := index.Resolve(normalized)
		if !resolved {
			// Not an error: links may point outside the indexed corpus.
			continue
		}
		if id == source.ID {
			continue
		}
		if _, dup := seenIDs[id]; dup {
			continue
		}
		seenIDs[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}

// normalizeLinkTarget filters and canonicalizes one raw destination.
// Returns false for targets that can never name a corpus document.
func normalizeLinkTarget(target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}

	lowered := strings.ToLower(target)
	for _, prefix := range schemePrefixes {
		if strings.HasPrefix(lowered, prefix) {
			return "", false
		}
	}

	// Fragment-only targets point within the same document.
	if strings.HasPrefix(target, "#") {
		return "", false
	}
	if idx := strings.Index(target, "#"); idx >= 0 {
		target = target[:idx]
	}

	target = strings.TrimPrefix(target, "/")
	if target == "" {
		return "", false
	}
	return target, true
}

func makeRelations(sourceID string, targetIDs []string, kind domain.RelationKind) []*domain.Relation {
	now := time.Now()
	relations := make([]*domain.Relation, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		relations = append(relations, &domain.Relation{
			ID:               domain.GenerateID(),
			SourceDocumentID: sourceID,
			TargetDocumentID: targetID,
			Kind:             kind,
			CreatedAt:        now,
		})
	}
	return relations
}
