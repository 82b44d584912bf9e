package ambiguity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// fold case-folds s for comparison. A Caser is stateful, so each call
// creates its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// containsTerm reports whether term occurs in text as a whole word or phrase.
// Both arguments must already be folded.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)
		if isBoundary(text, start, true) && isBoundary(text, end, false) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isBoundary(text string, pos int, before bool) bool {
	var r rune
	if before {
		if pos == 0 {
			return true
		}
		r, _ = utf8.DecodeLastRuneInString(text[:pos])
	} else {
		if pos >= len(text) {
			return true
		}
		r, _ = utf8.DecodeRuneInString(text[pos:])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
}

// matchTerms returns the terms found in text, in dictionary order.
func matchTerms(text string, terms []string) []string {
	folded := fold(text)
	var out []string
	for _, term := range terms {
		if containsTerm(folded, fold(term)) {
			out = append(out, term)
		}
	}
	return out
}

// dropSubsumed removes every term that occurs as a word inside a longer
// term of the same list, so "a few" does not also report "few".
func dropSubsumed(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		ft := fold(t)
		subsumed := false
		for _, u := range terms {
			fu := fold(u)
			if len(fu) > len(ft) && containsTerm(fu, ft) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, t)
		}
	}
	return out
}

func hasAny(text string, terms []string) bool {
	return len(matchTerms(text, terms)) > 0
}

// slug turns a term or label into an id fragment.
func slug(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range fold(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// qualify builds a layer-qualified item id.
func qualify(layer string, parts ...string) string {
	return layer + ":" + strings.Join(parts, ":")
}
