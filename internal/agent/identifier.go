package agent

import (
	"strings"
	"unicode"
)

// CanonicalIdentifier returns the form of an object name the agent service
// expects in its REST path. Unquoted names are stored upper-cased, so an
// all-lower-case name is upper-cased. Names containing a double quote or any
// upper-case letter are returned unchanged.
func CanonicalIdentifier(ident string) string {
	if strings.Contains(ident, `"`) {
		return ident
	}
	if isLower(ident) {
		return strings.ToUpper(ident)
	}
	return ident
}

// isLower reports whether s has at least one cased letter and no upper- or
// title-case letters.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r), unicode.IsTitle(r):
			return false
		case unicode.IsLower(r):
			cased = true
		}
	}
	return cased
}
