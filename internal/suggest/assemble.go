package suggest

// Assemble zips words with their phrases, keeping the model's word order.
// A word without a phrase is kept and paired with an empty phrase.
func Assemble(words []string, phrases PhraseMap) []Suggestion {
	limit := min(len(words), MaxCandidates)
	suggestions := make([]Suggestion, 0, limit)

	for _, word := range words[:limit] {
		suggestions = append(suggestions, Suggestion{
			Word:   word,
			Phrase: phrases.Lookup(word),
		})
	}

	return suggestions
}
