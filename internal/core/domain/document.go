package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Document represents an indexed text file tracked by the pipeline.
// Path is the global identity: at most one document per path.
type Document struct {
	ID             string            `json:"id"`
	Path           string            `json:"path"`
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	ContentHash    string            `json:"content_hash"`
	LastModifiedAt time.Time         `json:"last_modified_at"`
	LastIndexedAt  time.Time         `json:"last_indexed_at"`
	AITags         []string          `json:"ai_tags,omitempty"`
	ManualTags     []string          `json:"manual_tags,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`

	// Missing marks a record whose backing file has vanished from the
	// crawled tree. Records are never deleted for vanished paths, only
	// flagged, so history stays queryable.
	Missing      bool       `json:"missing"`
	MissingSince *time.Time `json:"missing_since,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section is a heading-delimited subdivision of a document.
// (DocumentID, Position) is unique; sections are regenerated wholesale on
// every reindex, never patched in place.
type Section struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Heading    string  `json:"heading"`
	Level      int     `json:"level"` // 1-6
	Position   int     `json:"position"`
	AnchorSlug string  `json:"anchor_slug"`
	Summary    *string `json:"summary,omitempty"`
}

// RelationKind distinguishes explicit links from heuristic associations.
type RelationKind string

const (
	RelationKindLink       RelationKind = "link"
	RelationKindConceptual RelationKind = "conceptual"
)

// Relation is a directed edge between two documents. Cycles are valid;
// A→B and B→A coexist as independent edges.
type Relation struct {
	ID               string       `json:"id"`
	SourceDocumentID string       `json:"source_document_id"`
	TargetDocumentID string       `json:"target_document_id"`
	Kind             RelationKind `json:"kind"`
	CreatedAt        time.Time    `json:"created_at"`
}

// FileDescriptor describes one discovered file, whichever crawler found it.
type FileDescriptor struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ChangeKind classifies a discovered file against its stored record.
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeUpdated   ChangeKind = "updated"
	ChangeUnchanged ChangeKind = "unchanged"
)

// Fingerprint computes the content hash used for change detection.
// xxhash is deterministic and collision-resistant enough for a corpus of
// thousands of documents; cryptographic strength is not a goal here.
func Fingerprint(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// ClassifyChange compares a stored record against a freshly computed hash
// and modification time. Ties resolve to unchanged so rerunning sync on an
// untouched tree never produces redundant writes.
func ClassifyChange(existing *Document, newHash string, newModifiedAt time.Time) ChangeKind {
	if existing == nil {
		return ChangeAdded
	}
	if existing.ContentHash != newHash {
		return ChangeUpdated
	}
	if existing.LastModifiedAt.Before(newModifiedAt) {
		return ChangeUpdated
	}
	return ChangeUnchanged
}
