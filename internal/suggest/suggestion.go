package suggest

// MaxCandidates is the number of next words requested from the model and the cap on returned suggestions.
const MaxCandidates = 10

// Request carries the user's current text. TypedText may be empty.
type Request struct {
	TypedText string `json:"typedText"`
}

// Suggestion pairs a predicted next word with the phrase that follows it.
type Suggestion struct {
	Word   string `json:"word" doc:"Predicted next word"`
	Phrase string `json:"phrase" doc:"Completion following the word, empty when the model gave none"`
}
