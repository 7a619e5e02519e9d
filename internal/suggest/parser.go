package suggest

import (
	"regexp"
	"strings"
	"unicode"
)

// listMarker matches numbered ("1.", "2)", "3:", "(4)") and bulleted ("-", "*", "•") prefixes.
var listMarker = regexp.MustCompile(`^(?:\(?\d{1,3}\s*[.):\-]|[-*•+])\s*`)

// wordTrim is stripped from both ends of a candidate word. Apostrophes inside words survive.
const wordTrim = "\"'`*_.,;:!?()[]{}<>“”‘’"

// phraseTrim is stripped from both ends of a phrase.
const phraseTrim = "\"'`*_“”‘’ \t"

// PhraseMap maps a candidate word, compared case-insensitively, to its phrase.
type PhraseMap map[string]string

// Lookup returns the phrase for word, or "" when the model gave none.
func (p PhraseMap) Lookup(word string) string {
	return p[normalizeKey(word)]
}

// ParseWords extracts candidate words from the model's reply, one per line.
// Blank lines and multi-word lines are dropped. When any line carries a list
// marker, unmarked lines such as a "Sure!" preamble are dropped too. Words that
// repeat an earlier word case-insensitively are dropped, so a list of n lines
// can yield fewer than n words. Order is kept and at most MaxCandidates words
// are returned. It never fails.
func ParseWords(raw string) []string {
	words := make([]string, 0, MaxCandidates)
	seen := make(map[string]struct{})

	lines := strings.Split(raw, "\n")
	markedOnly := false
	for _, line := range lines {
		if listMarker.MatchString(strings.TrimSpace(line)) {
			markedOnly = true
			break
		}
	}

	for _, line := range lines {
		if len(words) >= MaxCandidates {
			break
		}

		trimmed := strings.TrimSpace(line)
		if markedOnly && !listMarker.MatchString(trimmed) {
			continue
		}

		word := cleanWord(stripListMarker(trimmed))
		if word == "" || strings.IndexFunc(word, unicode.IsSpace) >= 0 {
			continue
		}

		key := normalizeKey(word)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, word)
	}

	return words
}

// ParsePhrases extracts "word | phrase" lines from the model's reply.
// Lines without the delimiter, or with an empty word or phrase, are dropped.
// The first phrase for a word wins.
func ParsePhrases(raw string) PhraseMap {
	phrases := make(PhraseMap)

	for _, line := range strings.Split(raw, "\n") {
		body := stripListMarker(line)
		left, right, found := strings.Cut(body, PhraseDelimiter)
		if !found {
			continue
		}

		word := cleanWord(left)
		if word == "" {
			continue
		}

		phrase := cleanPhrase(right, word)
		if phrase == "" {
			continue
		}

		key := normalizeKey(word)
		if _, exists := phrases[key]; exists {
			continue
		}
		phrases[key] = phrase
	}

	return phrases
}

func stripListMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	return strings.TrimSpace(listMarker.ReplaceAllString(trimmed, ""))
}

func cleanWord(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), wordTrim))
}

// cleanPhrase drops a leading repeat of word and a trailing full stop.
func cleanPhrase(raw, word string) string {
	phrase := strings.Trim(strings.TrimSpace(raw), phraseTrim)

	if n := len(word); len(phrase) > n && phrase[n] == ' ' && strings.EqualFold(phrase[:n], word) {
		phrase = phrase[n:]
	}

	phrase = strings.TrimSpace(phrase)
	phrase = strings.TrimRight(phrase, ".")
	return strings.TrimSpace(strings.Trim(phrase, phraseTrim))
}

func normalizeKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
