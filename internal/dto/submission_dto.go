package dto

import (
	"time"

	"github.com/noah-isme/evalia-go-api/internal/models"
)

// AnswerPayload is one student response inside a submission payload.
type AnswerPayload struct {
	QuestionID          uint   `json:"question_id" validate:"required,gt=0"`
	Content             string `json:"content" validate:"omitempty"`
	SelectedOptionIndex *int   `json:"selected_option_index" validate:"omitempty,gte=0"`
}

// SubmitAssessmentRequest captures a student's completed attempt.
type SubmitAssessmentRequest struct {
	AssessmentID uint            `json:"assessment_id" validate:"required,gt=0"`
	StudentID    uint            `json:"student_id" validate:"required,gt=0"`
	Answers      []AnswerPayload `json:"answers" validate:"required,min=1,dive"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssessmentID *uint   `query:"assessment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=draft submitted graded"`
}

// AnswerResponse serializes a single answer.
type AnswerResponse struct {
	ID                  uint     `json:"id"`
	QuestionID          uint     `json:"question_id"`
	Content             string   `json:"content"`
	SelectedOptionIndex *int     `json:"selected_option_index"`
	Score               *float64 `json:"score"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint             `json:"id"`
	AssessmentID uint             `json:"assessment_id"`
	StudentID    uint             `json:"student_id"`
	Status       string           `json:"status"`
	SubmittedAt  *time.Time       `json:"submitted_at"`
	TotalScore   float64          `json:"total_score"`
	Answers      []AnswerResponse `json:"answers"`
	Grade        *GradeResponse   `json:"grade"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewAnswerResponse converts an Answer model into a DTO.
func NewAnswerResponse(model models.Answer) AnswerResponse {
	return AnswerResponse{
		ID:                  model.ID,
		QuestionID:          model.QuestionID,
		Content:             model.Content,
		SelectedOptionIndex: model.SelectedOptionIndex,
		Score:               model.Score,
	}
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	answers := make([]AnswerResponse, 0, len(model.Answers))
	for _, answer := range model.Answers {
		answers = append(answers, NewAnswerResponse(answer))
	}

	response := SubmissionResponse{
		ID:           model.ID,
		AssessmentID: model.AssessmentID,
		StudentID:    model.StudentID,
		Status:       model.Status,
		SubmittedAt:  model.SubmittedAt,
		TotalScore:   model.CalculateTotalScore(),
		Answers:      answers,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Grade != nil {
		grade := NewGradeResponse(*model.Grade)
		response.Grade = &grade
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
