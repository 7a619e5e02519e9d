package suggest

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"nextword/app/internal/llm"
)

// Service turns typed text into next-word suggestions.
type Service interface {
	Suggest(ctx context.Context, typedText string) ([]Suggestion, error)
}

type service struct {
	model  llm.Completer
	logger *logrus.Logger
}

var _ Service = (*service)(nil)

// NewService wires the suggestion pipeline with its model client.
func NewService(model llm.Completer, logger *logrus.Logger) (Service, error) {
	if model == nil {
		return nil, eris.New("model client is required")
	}

	return &service{model: model, logger: logger}, nil
}

// Suggest asks the model for next words, then for a phrase per word, and zips the two.
// An empty result with a nil error means the model gave nothing usable.
// Model failures wrap llm.ErrModelUnavailable or llm.ErrModelTimeout.
func (s *service) Suggest(ctx context.Context, typedText string) ([]Suggestion, error) {
	fields := logrus.Fields{"typedText": typedText}
	s.log(fields).Info("get_suggestions request received")

	wordsRaw, err := s.model.Complete(ctx, WordsPrompt(typedText))
	if err != nil {
		s.recordError(fields, err, "fetching next words")
		return nil, eris.Wrap(err, "fetching next words")
	}

	words := ParseWords(wordsRaw)
	if len(words) == 0 {
		s.log(fields).WithField("raw", wordsRaw).Warn("No next words found")
		return []Suggestion{}, nil
	}

	fields["next_words"] = words

	phrasesRaw, err := s.model.Complete(ctx, PhrasesPrompt(typedText, words))
	if err != nil {
		s.recordError(fields, err, "fetching next phrases")
		return nil, eris.Wrap(err, "fetching next phrases")
	}

	phrases := ParsePhrases(phrasesRaw)
	if len(phrases) == 0 {
		s.log(fields).WithField("raw", phrasesRaw).Warn("No phrases parsed")
	}

	suggestions := Assemble(words, phrases)
	s.log(fields).WithField("suggestions", suggestions).Info("get_suggestions request successful")

	return suggestions, nil
}

func (s *service) log(fields logrus.Fields) *logrus.Entry {
	logger := s.logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithFields(fields)
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if s.logger == nil || err == nil {
		return
	}

	s.logger.WithFields(fields).WithField("error", err.Error()).Error(message)
}
