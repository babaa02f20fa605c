package usecase

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
)

// QAService answers ad-hoc questions over a document text: once against
// the whole context and once per sentence, so a user probing for a new
// entity can see where the answer sits before saving the question.
type QAService struct {
	qa       ports.AnswerExtractor
	splitter ports.SentenceSplitter

	// minSentenceScore filters out per-sentence answers the model is not
	// confident about.
	minSentenceScore float64
}

func NewQAService(qa ports.AnswerExtractor, splitter ports.SentenceSplitter, minSentenceScore float64) *QAService {
	return &QAService{
		qa:               qa,
		splitter:         splitter,
		minSentenceScore: minSentenceScore,
	}
}

func (s *QAService) Ask(ctx context.Context, question, model, contextText string) (*domain.QAResult, error) {
	if question == "" || model == "" || contextText == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "qa",
			errors.New("question, model and context are all required"))
	}

	whole, err := s.qa.ExtractAnswer(ctx, question, model, contextText)
	if err != nil {
		return nil, fmt.Errorf("answer over context: %w", err)
	}

	result := &domain.QAResult{
		Answer:      whole.Text,
		Score:       whole.Score,
		Start:       whole.Start,
		End:         whole.End,
		Highlighted: HighlightSpan(contextText, whole.Start, whole.End),
	}

	for _, sentence := range s.splitter.Split(contextText) {
		answer, err := s.qa.ExtractAnswer(ctx, question, model, sentence)
		if err != nil {
			return nil, fmt.Errorf("answer over sentence: %w", err)
		}
		if answer.Text == "" || answer.Score < s.minSentenceScore {
			continue
		}
		result.Sentences = append(result.Sentences, domain.SentenceAnswer{
			Sentence:    sentence,
			Answer:      answer.Text,
			Score:       answer.Score,
			Highlighted: HighlightSpan(sentence, answer.Start, answer.End),
		})
	}
	return result, nil
}

// HighlightSpan wraps the [start,end) byte span in the markup the UI
// renders answers with. Out-of-range spans return the text unchanged;
// offsets landing inside a multi-byte rune widen to its boundaries so the
// span never contains invalid UTF-8.
func HighlightSpan(text string, start, end int) string {
	if start < 0 || end <= start || end > len(text) {
		return text
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return text[:start] + "<span style='background-color: red;'>" + text[start:end] + "</span>" + text[end:]
}
