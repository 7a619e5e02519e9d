package suggest

import (
	"fmt"
	"strings"
)

// PhraseDelimiter separates a word from its phrase in the phrase response.
const PhraseDelimiter = "|"

const wordsPromptTemplate = `Predict the most likely next word for the following phrase: "%s"

Generate exactly %d predictions.
1. Provide only a numbered list of %d single words, one per line.
2. Do not include punctuation unless it's part of the word (e.g., "don't").
3. Do not add any explanation or preamble.
`

const phrasesPromptTemplate = `You will be given a text phrase and a numbered list of words.
Your task is to continue the phrase starting with each word in the list.

Text Phrase: "%s"
Word List:
%s

Reply with exactly one line per word, in the same order, using the format:
<number>. <word> %s <completion>
The completion is 3-7 words that follow the word. Do not repeat the text phrase. Do not provide any explanation or preamble.

Example:
Text Phrase: "The quick brown fox"
Word List:
1. jumps
2. is
3. could

Response:
1. jumps %s over the lazy dog
2. is %s hungry again tonight
3. could %s have been a wolf
`

// WordsPrompt asks the model for MaxCandidates single-word continuations of text.
func WordsPrompt(text string) string {
	return fmt.Sprintf(wordsPromptTemplate, text, MaxCandidates, MaxCandidates)
}

// PhrasesPrompt asks the model to continue text once per candidate word.
func PhrasesPrompt(text string, words []string) string {
	return fmt.Sprintf(
		phrasesPromptTemplate,
		text,
		numberedList(words),
		PhraseDelimiter,
		PhraseDelimiter, PhraseDelimiter, PhraseDelimiter,
	)
}

func numberedList(words []string) string {
	lines := make([]string, 0, len(words))
	for i, word := range words {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, word))
	}
	return strings.Join(lines, "\n")
}
