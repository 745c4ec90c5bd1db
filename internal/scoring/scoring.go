// Package scoring evaluates a single answer against its question definition.
// Evaluation is pure; persisting the resulting score is the caller's job.
package scoring

import "github.com/noah-isme/evalia-go-api/internal/models"

// Evaluate scores an answer against its question. For MCQ questions the
// returned score is the full question score on an exact index match and zero
// otherwise; a question without a correct option always scores zero. Essay
// and coding answers are not automatically scorable, reported by scored ==
// false, and must be graded manually.
func Evaluate(question models.Question, answer models.Answer) (score float64, scored bool) {
	if question.Type != models.QuestionTypeMCQ {
		return 0, false
	}

	if question.CorrectOptionIndex == nil || answer.SelectedOptionIndex == nil {
		return 0, true
	}

	if *question.CorrectOptionIndex == *answer.SelectedOptionIndex {
		return question.Score, true
	}

	return 0, true
}
