// Package normalize provides canonical forms for values that are compared
// or stored with uniqueness constraints. Normalization happens once, at the
// service boundary, so stores and indexes only ever see canonical values.
package normalize

import "strings"

// Email returns the canonical form of an email address: trimmed and
// lowercased. Invitation uniqueness and accept-time identity matching both
// compare canonical emails.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case; display names and
// group names are shown as typed.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Code returns the canonical form of a join code: trimmed and uppercased,
// matching how codes are generated and stored.
func Code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
