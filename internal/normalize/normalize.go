// Package normalize canonicalizes user-supplied identifiers and text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Username trims surrounding whitespace and applies NFKC so visually
// identical names compare equal. Case is preserved for display; uniqueness
// is enforced case-insensitively by the store.
func Username(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// Email trims, applies NFKC and case-folds the address.
func Email(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

// Text trims surrounding whitespace, collapses internal runs of whitespace
// and composes the result to NFC. Used for titles, names and descriptions.
func Text(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Key returns a case-folded comparison key for s.
func Key(s string) string {
	return cases.Fold().String(Text(s))
}

// TextPtr applies Text to a non-nil pointer in place.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Text(*s)
	return &v
}
