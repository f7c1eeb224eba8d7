// Package sanitize cleans generated text before it is displayed or persisted.
package sanitize

import "regexp"

var (
	// Quote and backtick characters are removed outright so replies can be
	// embedded in structured contexts without escaping.
	quotes = regexp.MustCompile("[\"'`]")

	// A run of a repeated symbol collapses to a single occurrence. Each
	// symbol class collapses independently; runs are never merged across
	// unrelated characters.
	repeats = regexp.MustCompile(`\*+|-+|/+|\++`)
)

// Clean strips quote characters and collapses repeated symbol runs.
// It is pure and idempotent.
func Clean(text string) string {
	text = quotes.ReplaceAllString(text, "")
	return repeats.ReplaceAllStringFunc(text, func(run string) string {
		return run[:1]
	})
}
