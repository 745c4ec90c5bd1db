package dto

import (
	"time"

	"github.com/noah-isme/evalia-go-api/internal/models"
)

// AssessmentCreateRequest captures the payload for creating an assessment.
type AssessmentCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=255"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Type        string  `json:"type" validate:"required,oneof=quiz exam project"`
	CourseID    uint    `json:"course_id" validate:"required,gt=0"`
	DueDate     *string `json:"due_date" validate:"omitempty"`
}

// AssessmentUpdateRequest captures partial update payloads for assessments.
// Questions are never mutated through this request; they have their own
// operations so the total score invariant is maintained.
type AssessmentUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Type        *string `json:"type" validate:"omitempty,oneof=quiz exam project"`
	CourseID    *uint   `json:"course_id" validate:"omitempty,gt=0"`
	DueDate     *string `json:"due_date" validate:"omitempty"`
}

// AssessmentResponse is returned to API clients when viewing assessments.
type AssessmentResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        string             `json:"type"`
	CourseID    uint               `json:"course_id"`
	TotalScore  float64            `json:"total_score"`
	DueDate     *time.Time         `json:"due_date"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Questions   []QuestionResponse `json:"questions"`
}

// NewAssessmentResponse converts an Assessment model into a DTO.
func NewAssessmentResponse(model models.Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Type:        model.Type,
		CourseID:    model.CourseID,
		TotalScore:  model.TotalScore,
		DueDate:     model.DueDate,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		Questions:   NewQuestionResponseSlice(model.Questions),
	}
}

// NewAssessmentResponseSlice converts assessment models into DTOs.
func NewAssessmentResponseSlice(models []models.Assessment) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(models))
	for _, assessment := range models {
		responses = append(responses, NewAssessmentResponse(assessment))
	}

	return responses
}
