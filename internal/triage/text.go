package triage

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	wordPattern       = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// Preprocess lowercases text, replaces punctuation with spaces and collapses whitespace.
func Preprocess(text string) string {
	text = strings.ToLower(text)
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Words returns every lowercased word of text.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// fillerWords carry no symptom information.
var fillerWords = map[string]struct{}{
	"have": {}, "experiencing": {}, "feeling": {}, "suffering": {}, "from": {},
	"since": {}, "yesterday": {}, "last": {}, "week": {}, "days": {},
	"recently": {}, "past": {}, "got": {},
}

// ContentWords returns the distinct words of at least three characters that are not
// filler words, in order of first appearance.
func ContentWords(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range Words(text) {
		if utf8.RuneCountInString(w) < 3 {
			continue
		}
		if _, filler := fillerWords[w]; filler {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// KeywordVocabulary collects the sorted distinct words of texts.
func KeywordVocabulary(texts []string) []string {
	seen := make(map[string]struct{})
	for _, t := range texts {
		for _, w := range Words(t) {
			seen[w] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
