package enval

import (
	"reflect"
	"strings"
	"unicode"
)

// Candidate is normalized text handed to each detector: Text is the trimmed,
// unquoted input in its original case and Lower is its lowercase copy for
// keyword matching.
type Candidate struct {
	Text  string
	Lower string
}

// textOf reports whether raw is textual and returns its string content.
// Named string types count as text.
func textOf(raw any) (string, bool) {
	if s, ok := raw.(string); ok {
		return s, true
	}
	if raw == nil {
		return "", false
	}
	if _, ok := raw.(Value); ok {
		return "", false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// trim removes leading and trailing white space, including the byte order mark.
func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// unquote strips one outer pair of matching single or double quotes.
// Mismatched or missing quotes leave the text as it is.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first != last || (first != '"' && first != '\'') {
		return s
	}
	return s[1 : len(s)-1]
}

// newCandidate normalizes text for the detector chain. It reports false when
// the text is empty after trimming, in which case no detector should run.
func newCandidate(s string) (Candidate, bool) {
	text := trim(s)
	if text == "" {
		return Candidate{}, false
	}
	text = unquote(text)
	return Candidate{Text: text, Lower: strings.ToLower(text)}, true
}
