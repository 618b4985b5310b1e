package domain

import (
	"testing"
	"time"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if id1 == "" || id2 == "" {
		t.Error("expected non-empty IDs")
	}
	if id1 == id2 {
		t.Error("expected unique IDs")
	}
	// Base64 URL encoding of 16 bytes = 22 chars
	if len(id1) != 22 {
		t.Errorf("expected ID length 22, got %d", len(id1))
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	content := []byte("# Title\n\nSome body text.\n")

	h1 := Fingerprint(content)
	h2 := Fingerprint(content)

	if h1 != h2 {
		t.Errorf("expected identical fingerprints, got %s and %s", h1, h2)
	}
	if len(h1) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(h1))
	}
}

func TestFingerprint_DistinctInputs(t *testing.T) {
	inputs := []string{
		"",
		"a",
		"b",
		"# Title",
		"# Title\n",
		"# title",
		"completely different document body",
	}

	seen := make(map[string]string)
	for _, in := range inputs {
		h := Fingerprint([]byte(in))
		if prev, ok := seen[h]; ok {
			t.Errorf("fingerprint collision between %q and %q", prev, in)
		}
		seen[h] = in
	}
}

func TestClassifyChange_Added(t *testing.T) {
	kind := ClassifyChange(nil, "abc", time.Now())
	if kind != ChangeAdded {
		t.Errorf("expected %s, got %s", ChangeAdded, kind)
	}
}

func TestClassifyChange_UpdatedByHash(t *testing.T) {
	now := time.Now()
	existing := &Document{ContentHash: "old", LastModifiedAt: now}

	kind := ClassifyChange(existing, "new", now)
	if kind != ChangeUpdated {
		t.Errorf("expected %s, got %s", ChangeUpdated, kind)
	}
}

func TestClassifyChange_UpdatedByTimestamp(t *testing.T) {
	base := time.Now()
	existing := &Document{ContentHash: "same", LastModifiedAt: base}

	kind := ClassifyChange(existing, "same", base.Add(time.Minute))
	if kind != ChangeUpdated {
		t.Errorf("expected %s, got %s", ChangeUpdated, kind)
	}
}

func TestClassifyChange_Unchanged(t *testing.T) {
	base := time.Now()
	existing := &Document{ContentHash: "same", LastModifiedAt: base}

	// Same hash, same timestamp: ties resolve to unchanged.
	if kind := ClassifyChange(existing, "same", base); kind != ChangeUnchanged {
		t.Errorf("expected %s, got %s", ChangeUnchanged, kind)
	}

	// Same hash, older timestamp: still unchanged.
	if kind := ClassifyChange(existing, "same", base.Add(-time.Hour)); kind != ChangeUnchanged {
		t.Errorf("expected %s, got %s", ChangeUnchanged, kind)
	}
}

func TestAnchorSlug(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"Title", "title"},
		{"Section A", "section-a"},
		{"Section B", "section-b"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple   spaces", "multiple-spaces"},
		{"Already-hyphenated name", "already-hyphenated-name"},
		{"Dots. And? Punctuation!", "dots-and-punctuation"},
		{"Числа and 123", "and-123"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := AnchorSlug(tt.heading); got != tt.want {
			t.Errorf("AnchorSlug(%q) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}
