package dto

import (
	"time"

	"github.com/noah-isme/evalia-go-api/internal/models"
)

// GradeSubmissionRequest captures the payload for grading a submission.
type GradeSubmissionRequest struct {
	GradedBy string `json:"graded_by" validate:"required,min=1,max=255"`
	Feedback string `json:"feedback" validate:"omitempty,max=10000"`
}

// GradeAnswerRequest captures a manual score override for a single answer.
type GradeAnswerRequest struct {
	Score *float64 `json:"score" validate:"required,gte=0"`
}

// GradeResponse serializes a grade record. Percentage and letter grade are
// derived on read and never stored.
type GradeResponse struct {
	ID           uint      `json:"id"`
	SubmissionID uint      `json:"submission_id"`
	TotalScore   float64   `json:"total_score"`
	MaxScore     float64   `json:"max_score"`
	Percentage   float64   `json:"percentage"`
	LetterGrade  string    `json:"letter_grade"`
	GradedBy     string    `json:"graded_by"`
	Feedback     string    `json:"feedback"`
	GradedAt     time.Time `json:"graded_at"`
}

// GradeAnswerResponse wraps a manually graded answer. GradeStale reports
// that a grade record already exists for the owning submission and no longer
// reflects this answer's score until grading is re-run.
type GradeAnswerResponse struct {
	Answer     AnswerResponse `json:"answer"`
	GradeStale bool           `json:"grade_stale"`
}

// NewGradeResponse converts a Grade model into a DTO.
func NewGradeResponse(model models.Grade) GradeResponse {
	return GradeResponse{
		ID:           model.ID,
		SubmissionID: model.SubmissionID,
		TotalScore:   model.TotalScore,
		MaxScore:     model.MaxScore,
		Percentage:   model.Percentage(),
		LetterGrade:  model.LetterGrade(),
		GradedBy:     model.GradedBy,
		Feedback:     model.Feedback,
		GradedAt:     model.GradedAt,
	}
}
