package suggest

import (
	"strings"
	"testing"
)

func TestWordsPromptIsDeterministic(t *testing.T) {
	t.Parallel()

	first := WordsPrompt("The quick brown fox")
	second := WordsPrompt("The quick brown fox")
	if first != second {
		t.Fatalf("expected identical prompts for identical input")
	}

	if !strings.Contains(first, `"The quick brown fox"`) {
		t.Fatalf("expected prompt to quote the typed text, got %q", first)
	}

	if !strings.Contains(first, "exactly 10") {
		t.Fatalf("expected prompt to request exactly 10 predictions, got %q", first)
	}
}

func TestPhrasesPromptListsWordsInOrder(t *testing.T) {
	t.Parallel()

	prompt := PhrasesPrompt("The quick brown fox", []string{"jumps", "is"})

	if !strings.Contains(prompt, "Word List:\n1. jumps\n2. is\n") {
		t.Fatalf("expected numbered word list, got %q", prompt)
	}

	if !strings.Contains(prompt, "<number>. <word> "+PhraseDelimiter+" <completion>") {
		t.Fatalf("expected delimiter format instructions, got %q", prompt)
	}

	if prompt != PhrasesPrompt("The quick brown fox", []string{"jumps", "is"}) {
		t.Fatalf("expected deterministic phrases prompt")
	}
}

func TestPromptExampleRoundTripsThroughParser(t *testing.T) {
	t.Parallel()

	prompt := PhrasesPrompt("x", []string{"y"})
	_, example, found := strings.Cut(prompt, "Response:\n")
	if !found {
		t.Fatalf("expected example response in prompt")
	}

	phrases := ParsePhrases(example)
	if phrases.Lookup("jumps") != "over the lazy dog" {
		t.Fatalf("expected example to parse, got %v", phrases)
	}
}
