// Package reconcile infers which invited guests have answered by matching
// guest-list names against free-text RSVP names. Guests and RSVPs share no
// identifier, so the matching is a deterministic name heuristic.
package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks is the Combining Diacritical Marks block (U+0300..U+036F).
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// isSpace covers Unicode white space, including NBSP and the
// zero-width no-break space that pasted names often carry.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func isWord(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// keepWordOrSpace drops every rune that is neither an ASCII word character
// nor white space.
func keepWordOrSpace(r rune) rune {
	if isWord(r) || isSpace(r) {
		return r
	}
	return -1
}

// words splits a normalized name on any white space
func words(s string) []string {
	return strings.FieldsFunc(s, isSpace)
}

// NormalizeName maps a name to its comparison key: lowercased, accents
// stripped, punctuation removed and trimmed. "José Pérez" becomes
// "jose perez".
func NormalizeName(raw string) string {
	s := strings.ToLower(raw)

	// Transformers keep state, so the chain is built per call.
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}

	s = strings.Map(keepWordOrSpace, s)
	return strings.TrimFunc(s, isSpace)
}
