// Package normalize canonicalizes free text into the matching-safe form used by
// every component that compares catalog text: the ingestion path derives stored
// normalized columns through it and the query path canonicalizes incoming queries
// through it. No other package may re-derive this logic.
package normalize

import "strings"

// translit maps Latin-extended letters to the ASCII digraphs used across the
// catalog. The digraph choices are product-specific (Nordic catalogs write
// "ø" as "oe"), so a generic Unicode folder would produce different bytes
// than the stored columns.
var translit = strings.NewReplacer(
	"æ", "ae",
	"ø", "oe",
	"å", "aa",
	"ä", "ae",
	"ö", "oe",
)

// Normalize converts text to its canonical matching form. It is pure, never
// fails, and is idempotent: Normalize(Normalize(x)) == Normalize(x).
//
// Steps, in order: lowercase, transliterate Nordic letters to ASCII digraphs,
// glue separator-split model codes ("g-3", "g.3", "g 3" all become "g3"),
// collapse whitespace runs and trim. The code-gluing step must run after
// transliteration so that a transliterated letter can participate in a code.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = translit.Replace(s)
	s = glueModelCodes(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// ContainsToken reports whether needle occurs in haystack on whole-token
// boundaries: "g3" matches inside "the g3 unit" but not inside "g34". Both
// arguments must already be normalized.
func ContainsToken(haystack, needle string) bool {
	if needle == "" || len(needle) > len(haystack) {
		return false
	}
	for start := 0; ; {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		leftOK := i == 0 || haystack[i-1] == ' '
		rightOK := end == len(haystack) || haystack[end] == ' '
		if leftOK && rightOK {
			return true
		}
		start = i + 1
	}
}

// glueModelCodes removes a single hyphen, period, or whitespace run between a
// letter and a digit, pulling the digit adjacent to the letter.
func glueModelCodes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if isASCIILetter(r) {
			// Look past a separator run for a digit.
			j := i + 1
			for j < len(runes) && isCodeSeparator(runes[j]) {
				j++
			}
			if j > i+1 && j < len(runes) && isDigit(runes[j]) {
				b.WriteRune(r)
				i = j - 1 // skip the separators, keep the digit for the next pass
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isCodeSeparator(r rune) bool {
	return r == '-' || r == '.' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
