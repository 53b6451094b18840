package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength bounds a node name, including line breaks.
const MaxNameLength = 1024

// ValidateNodeName checks a node label read from an external document.
//
// Rules:
//   - not empty after trimming whitespace
//   - at most MaxNameLength bytes
//   - no control characters other than '\n' (label line separator)
func ValidateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidTree, "node name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidTree, "node name too long (max %d characters)", MaxNameLength)
	}
	for _, r := range name {
		if r != '\n' && unicode.IsControl(r) {
			return New(ErrCodeInvalidTree, "node name %q contains control characters", firstLine(name))
		}
	}
	return nil
}

// ValidateQuery checks a search query. Blank queries are valid (they match
// nothing); only control characters are rejected.
func ValidateQuery(q string) error {
	for _, r := range q {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search query contains control characters")
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
