package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/evalia-go-api/internal/models"
)

func ptrInt(v int) *int {
	return &v
}

func TestEvaluateMCQCorrectIndex(t *testing.T) {
	question := models.Question{Type: models.QuestionTypeMCQ, Score: 5, CorrectOptionIndex: ptrInt(1)}
	answer := models.Answer{SelectedOptionIndex: ptrInt(1)}

	score, scored := Evaluate(question, answer)
	require.True(t, scored)
	require.Equal(t, 5.0, score)
}

func TestEvaluateMCQWrongIndex(t *testing.T) {
	question := models.Question{Type: models.QuestionTypeMCQ, Score: 10, CorrectOptionIndex: ptrInt(0)}
	answer := models.Answer{SelectedOptionIndex: ptrInt(2)}

	score, scored := Evaluate(question, answer)
	require.True(t, scored)
	require.Equal(t, 0.0, score)
}

func TestEvaluateMCQNilIndexes(t *testing.T) {
	question := models.Question{Type: models.QuestionTypeMCQ, Score: 10, CorrectOptionIndex: ptrInt(0)}

	score, scored := Evaluate(question, models.Answer{})
	require.True(t, scored)
	require.Equal(t, 0.0, score)

	noKey := models.Question{Type: models.QuestionTypeMCQ, Score: 10}
	score, scored = Evaluate(noKey, models.Answer{SelectedOptionIndex: ptrInt(0)})
	require.True(t, scored, "a question without a correct option still scores zero")
	require.Equal(t, 0.0, score)
}

func TestEvaluateManuallyGradedTypes(t *testing.T) {
	for _, questionType := range []string{models.QuestionTypeEssay, models.QuestionTypeCoding} {
		question := models.Question{Type: questionType, Score: 20}
		answer := models.Answer{Content: "a long response"}

		score, scored := Evaluate(question, answer)
		require.False(t, scored, "type %s requires manual grading", questionType)
		require.Equal(t, 0.0, score)
	}
}
