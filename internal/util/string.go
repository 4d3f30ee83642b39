// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentReplacements maps the characters StripAccents rewrites.
//
// '¥' and '¤' are what 'Ñ' and 'ñ' turn into when CP850 text is read as
// Windows-1252, so they are mapped back rather than stripped.
var accentReplacements = map[rune]rune{
	'á': 'a', 'é': 'e', 'í': 'i', 'ó': 'o', 'ú': 'u',
	'Á': 'A', 'É': 'E', 'Í': 'I', 'Ó': 'O', 'Ú': 'U',
	'¥': 'Ñ', '¤': 'ñ',
	'´': '\'',
}

// StripAccents replaces accented vowels and a few odd symbols with their
// plain counterparts. Characters outside the table pass through unchanged,
// so the rune count of the result always equals the rune count of s.
func StripAccents(s string) string {
	return strings.Map(func(r rune) rune {
		if repl, ok := accentReplacements[r]; ok {
			return repl
		}
		return r
	}, s)
}

// AccentReplacement reports the replacement StripAccents uses for r.
func AccentReplacement(r rune) (rune, bool) {
	repl, ok := accentReplacements[r]
	return repl, ok
}

// FoldDiacritics removes every combining mark from s after canonical
// decomposition ("Ñandú" -> "Nandu"). Unlike StripAccents it is not limited
// to a fixed table and does not preserve 'ñ'.
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// SplitPair splits s at the first occurrence of sep into an attribute and a
// value, trimming surrounding whitespace from both.
//
// When sep does not occur in s both results are empty, not s itself.
// Callers rely on that to detect lines that carry no attribute.
func SplitPair(s string, sep rune) (attribute, value string) {
	before, after, found := strings.Cut(s, string(sep))
	if !found {
		return "", ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
