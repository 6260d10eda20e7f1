// Package normalize maps raw category and description text to the
// canonical forms stored on expense records.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	fallbackCategory  = "Other"
	maxDescriptionLen = 255
)

// synonyms maps lowercased category variants to canonical names.
// Process-wide constant; never mutated after init.
var synonyms = map[string]string{
	"food":      "Food",
	"dining":    "Food",
	"restaurant": "Food",
	"groceries": "Food",

	"transport":      "Transportation",
	"transportation": "Transportation",
	"gas":            "Transportation",
	"fuel":           "Transportation",
	"uber":           "Transportation",
	"taxi":           "Transportation",

	"fun":           "Entertainment",
	"entertainment": "Entertainment",
	"movies":        "Entertainment",
	"games":         "Entertainment",

	"clothes":  "Shopping",
	"shopping": "Shopping",
	"retail":   "Shopping",

	"medical":  "Healthcare",
	"health":   "Healthcare",
	"doctor":   "Healthcare",
	"pharmacy": "Healthcare",
}

// Category returns the canonical category for raw input. Empty input maps
// to "Other"; known synonyms map to their canonical name regardless of
// case; anything else passes through title-cased.
func Category(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallbackCategory
	}
	titled := titleCase(trimmed)
	if canonical, ok := synonyms[strings.ToLower(titled)]; ok {
		return canonical
	}
	return titled
}

// titleCase uppercases the first rune and lowercases everything after it.
// Multi-word input keeps a single capital: "home improvement" becomes
// "Home improvement". Synonym matching compares lowercased strings, so
// the casing is cosmetic only.
func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Description trims raw input, collapses whitespace runs to single spaces
// and truncates to at most 255 characters.
//
// The truncation bound is measured on the pre-collapse trimmed string, not
// the collapsed one, so input with long whitespace runs is bounded by its
// uncollapsed length. Kept for compatibility with the existing data;
// flagged for product-owner review.
func Description(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	collapsed := strings.Join(strings.Fields(trimmed), " ")

	limit := utf8.RuneCountInString(trimmed)
	if limit > maxDescriptionLen {
		limit = maxDescriptionLen
	}
	runes := []rune(collapsed)
	if limit > len(runes) {
		limit = len(runes)
	}
	return string(runes[:limit])
}
