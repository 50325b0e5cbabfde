// Package identity maps free-text person names to portrait buckets.
// Attendance sheets, portrait folders and evidence filenames spell the same
// person inconsistently (diacritics, case, spacing), so all comparisons go
// through a canonical lowercase ASCII key.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFolder substitutes letters that carry no combining mark and therefore
// survive NFD decomposition (Vietnamese đ most prominently).
var asciiFolder = strings.NewReplacer(
	"đ", "d", "Đ", "d",
	"ł", "l", "Ł", "l",
	"ø", "o", "Ø", "o",
)

// removeDiacritics removes combining marks from a string (e.g. "Tòng" -> "Tong").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Normalize maps a human name to its canonical comparison key: diacritics
// folded to base Latin letters, lowercased, everything outside [a-z0-9]
// stripped. Pure and total; an empty input yields an empty key.
//
//	Normalize("Lê Văn Tòng") == Normalize("le van tong") == "levantong"
func Normalize(name string) string {
	name = removeDiacritics(name)
	name = asciiFolder.Replace(name)
	name = strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity scores how alike two names are on their normalized forms,
// in [0, 1]. Identical forms score 1.0; substring containment scores
// shorter/longer; otherwise the common prefix length over the longer length.
// This is a deliberately cheap metric, not an edit distance: it favors
// recall on noisy hand-entered names over strict precision.
func Similarity(name1, name2 string) float64 {
	n1 := Normalize(name1)
	n2 := Normalize(name2)

	if n1 == "" || n2 == "" {
		return 0
	}
	if n1 == n2 {
		return 1.0
	}

	shorter, longer := len(n1), len(n2)
	if shorter > longer {
		shorter, longer = longer, shorter
	}

	if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
		return float64(shorter) / float64(longer)
	}

	commonPrefix := 0
	for i := 0; i < shorter; i++ {
		if n1[i] != n2[i] {
			break
		}
		commonPrefix++
	}
	return float64(commonPrefix) / float64(longer)
}
