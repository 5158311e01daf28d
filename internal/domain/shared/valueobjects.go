package shared

import (
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Name Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// NormalizeName returns the lookup key for a student name:
// surrounding whitespace removed and lower-cased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ═══════════════════════════════════════════════════════════════════════════
// Subject Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Subject is the name of an academic category a student can be graded in.
type Subject string

// String returns the string representation.
func (s Subject) String() string {
	return string(s)
}

// NewSubject creates a Subject from raw input. Blank input is rejected.
func NewSubject(raw string) (Subject, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", WrapError("gradebook", "NewSubject", ErrEmptyValue, "subject cannot be empty", ErrInvalidSubject)
	}
	return Subject(trimmed), nil
}
