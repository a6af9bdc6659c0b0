package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// analyze lowercases text, splits it into word tokens and expands them into
// n-grams in document order.
func analyze(text string, p Params) []string {
	tokens := tokenize(text, p.MinTokenRunes)
	if len(tokens) == 0 {
		return nil
	}

	out := make([]string, 0, len(tokens)*(p.NgramMax-p.NgramMin+1))
	for n := p.NgramMin; n <= p.NgramMax; n++ {
		if n == 1 {
			out = append(out, tokens...)
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// tokenize returns maximal runs of word runes (letters, numbers, marks, underscore)
// that are at least minRunes long.
func tokenize(text string, minRunes int) []string {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	out := make([]string, 0, 32)
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		token := lowered[start:end]
		if utf8.RuneCountInString(token) >= minRunes {
			out = append(out, token)
		}
		start = -1
	}
	for i, r := range lowered {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(lowered))
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
