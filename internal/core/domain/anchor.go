package domain

import "strings"

// AnchorSlug derives the URL anchor for a heading: lowercase, keep only
// [a-z0-9], whitespace and hyphens, then collapse whitespace runs into
// single hyphens.
func AnchorSlug(heading string) string {
	lowered := strings.ToLower(heading)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "-")
}
