package suggest

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"

	"nextword/app/internal/llm"
	applog "nextword/app/internal/log"
)

type stubCompleter struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	idx := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	if idx < len(s.replies) {
		return s.replies[idx], nil
	}
	return "", nil
}

var _ llm.Completer = (*stubCompleter)(nil)

func newTestService(t *testing.T, model llm.Completer) Service {
	t.Helper()

	svc, err := NewService(model, applog.Discard())
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestNewServiceRequiresModel(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, applog.Discard()); err == nil {
		t.Fatalf("expected error when model client is missing")
	}
}

func TestSuggestRunsBothStages(t *testing.T) {
	t.Parallel()

	model := &stubCompleter{replies: []string{
		"1. jumps\n2. is",
		"1. jumps | over the lazy dog\n2. is | hungry",
	}}
	svc := newTestService(t, model)

	got, err := svc.Suggest(context.Background(), "The quick brown fox")
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}

	want := []Suggestion{{Word: "jumps", Phrase: "over the lazy dog"}, {Word: "is", Phrase: "hungry"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d suggestions, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v at %d, got %v", want[i], i, got[i])
		}
	}

	if len(model.prompts) != 2 {
		t.Fatalf("expected two model calls, got %d", len(model.prompts))
	}
	if model.prompts[0] != WordsPrompt("The quick brown fox") {
		t.Fatalf("expected words prompt first, got %q", model.prompts[0])
	}
	if model.prompts[1] != PhrasesPrompt("The quick brown fox", []string{"jumps", "is"}) {
		t.Fatalf("expected phrases prompt second, got %q", model.prompts[1])
	}
}

func TestSuggestReturnsEmptyWhenNoWords(t *testing.T) {
	t.Parallel()

	model := &stubCompleter{replies: []string{"I'm not sure what comes next."}}
	svc := newTestService(t, model)

	got, err := svc.Suggest(context.Background(), "")
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}

	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil suggestions, got %#v", got)
	}

	if len(model.prompts) != 1 {
		t.Fatalf("expected phrase stage to be skipped, got %d calls", len(model.prompts))
	}
}

func TestSuggestKeepsWordsWhenPhrasesUnparseable(t *testing.T) {
	t.Parallel()

	model := &stubCompleter{replies: []string{"1. jumps\n2. is", "no delimiters anywhere"}}
	svc := newTestService(t, model)

	got, err := svc.Suggest(context.Background(), "fox")
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}

	if len(got) != 2 || got[0].Phrase != "" || got[1].Phrase != "" {
		t.Fatalf("expected words with empty phrases, got %v", got)
	}
}

func TestSuggestPropagatesModelErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		errs []error
		kind error
	}{
		"words unavailable": {errs: []error{eris.Wrap(llm.ErrModelUnavailable, "boom")}, kind: llm.ErrModelUnavailable},
		"phrases timeout":   {errs: []error{nil, eris.Wrap(llm.ErrModelTimeout, "slow")}, kind: llm.ErrModelTimeout},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			model := &stubCompleter{replies: []string{"1. jumps", ""}, errs: tc.errs}
			svc := newTestService(t, model)

			_, err := svc.Suggest(context.Background(), "fox")
			if !eris.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if !strings.Contains(err.Error(), "fetching next") {
				t.Fatalf("expected stage context in error, got %v", err)
			}
		})
	}
}
