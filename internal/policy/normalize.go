package policy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips diacritics and collapses every run of
// non-alphanumeric characters to a single space, so "Pokémon_Fan-Art.JPG"
// becomes "pokemon fan art jpg".
func Normalize(s string) string {
	// Transformers carry state; build a fresh chain per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Fold().String(folded)

	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// text is one candidate's metadata prepared for matching.
type text struct {
	raw   []string // lowercased filename, URL, title
	norm  string   // normalized, space-joined
	words []string // tokens of norm
}

func newText(fields ...string) text {
	var t text
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		t.raw = append(t.raw, strings.ToLower(f))
		if n := Normalize(f); n != "" {
			parts = append(parts, n)
		}
	}
	t.norm = strings.Join(parts, " ")
	t.words = strings.Fields(t.norm)
	return t
}

// containsAny reports whether any normalized keyword is a substring of the
// normalized text.
func (t text) containsAny(keywords []string) (string, bool) {
	for _, kw := range keywords {
		n := Normalize(kw)
		if n != "" && strings.Contains(t.norm, n) {
			return kw, true
		}
	}
	return "", false
}

// rawContainsAny matches keywords against the lowercased raw fields.
func (t text) rawContainsAny(patterns []string) (string, bool) {
	for _, p := range patterns {
		p = strings.ToLower(p)
		for _, r := range t.raw {
			if strings.Contains(r, p) {
				return p, true
			}
		}
	}
	return "", false
}

// hasPhrase reports whether the words of phrase appear consecutively in t.
func (t text) hasPhrase(phrase string) bool {
	want := strings.Fields(Normalize(phrase))
	if len(want) == 0 || len(want) > len(t.words) {
		return false
	}
	for i := 0; i+len(want) <= len(t.words); i++ {
		match := true
		for j, w := range want {
			if t.words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// hasAllWords reports whether every token of name is present somewhere.
func (t text) hasAllWords(name string) bool {
	want := strings.Fields(Normalize(name))
	if len(want) == 0 {
		return false
	}
	for _, w := range want {
		found := false
		for _, have := range t.words {
			if have == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
