package judge

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var articles = map[string]struct{}{"the": {}, "a": {}, "an": {}}

// suffixes dropped from person names before comparison.
var suffixes = map[string]struct{}{"jr": {}, "sr": {}, "ii": {}, "iii": {}}

// fold strips accents: "René" -> "Rene".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// words lowercases, folds accents, spells out '&', and splits on anything
// that is not a letter or digit. Apostrophes are dropped so "Don't" == "Dont".
func words(s string) []string {
	s = strings.ToLower(fold(s))
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.NewReplacer("'", "", "’", "").Replace(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// canonical is the comparison form of a title or name: leading article and
// trailing name suffixes removed, words joined by single spaces.
func canonical(s string) string {
	w := words(s)
	if len(w) > 1 {
		if _, ok := articles[w[0]]; ok {
			w = w[1:]
		}
	}
	for len(w) > 1 {
		if _, ok := suffixes[w[len(w)-1]]; !ok {
			break
		}
		w = w[:len(w)-1]
	}
	return strings.Join(w, " ")
}

// digits keeps only ASCII digits.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// distance is the Levenshtein edit distance between a and b.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
