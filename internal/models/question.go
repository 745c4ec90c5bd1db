package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question is a single gradable item within an assessment. MCQ questions
// carry an option list and the index of the correct option; essay questions
// carry a length limit and rubric; coding questions are graded manually and
// have no engine-evaluated fields.
type Question struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	AssessmentID       uint                        `gorm:"not null;index" json:"assessment_id"`
	Text               string                      `gorm:"type:text;not null" json:"text"`
	Type               string                      `gorm:"size:32;not null" json:"type"`
	Score              float64                     `gorm:"not null" json:"score"`
	Options            datatypes.JSONSlice[string] `json:"options"`
	CorrectOptionIndex *int                        `json:"correct_option_index"`
	MaxAnswerLength    *int                        `json:"max_answer_length"`
	Rubric             string                      `gorm:"type:text" json:"rubric"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

const (
	// QuestionTypeMCQ marks a multiple-choice question, auto-scored by index match.
	QuestionTypeMCQ = "mcq"
	// QuestionTypeEssay marks a free-text question graded against a rubric.
	QuestionTypeEssay = "essay"
	// QuestionTypeCoding marks a programming question graded manually.
	QuestionTypeCoding = "coding"
)

// HasValidCorrectOption reports whether the correct option index, when set,
// points inside the option list.
func (q Question) HasValidCorrectOption() bool {
	if q.CorrectOptionIndex == nil {
		return true
	}
	return *q.CorrectOptionIndex >= 0 && *q.CorrectOptionIndex < len(q.Options)
}
