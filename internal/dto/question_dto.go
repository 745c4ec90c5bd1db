package dto

import (
	"time"

	"github.com/noah-isme/evalia-go-api/internal/models"
)

// QuestionRequest captures the payload for adding or replacing a question.
// Updates are full replacements, so the same shape serves both operations.
type QuestionRequest struct {
	Text               string   `json:"text" validate:"required,min=1"`
	Type               string   `json:"type" validate:"required,oneof=mcq essay coding"`
	Score              float64  `json:"score" validate:"required,gt=0"`
	Options            []string `json:"options" validate:"omitempty,dive,min=1"`
	CorrectOptionIndex *int     `json:"correct_option_index" validate:"omitempty,gte=0"`
	MaxAnswerLength    *int     `json:"max_answer_length" validate:"omitempty,gt=0"`
	Rubric             string   `json:"rubric" validate:"omitempty,max=10000"`
}

// QuestionResponse serializes a question for API clients.
type QuestionResponse struct {
	ID                 uint      `json:"id"`
	AssessmentID       uint      `json:"assessment_id"`
	Text               string    `json:"text"`
	Type               string    `json:"type"`
	Score              float64   `json:"score"`
	Options            []string  `json:"options"`
	CorrectOptionIndex *int      `json:"correct_option_index"`
	MaxAnswerLength    *int      `json:"max_answer_length"`
	Rubric             string    `json:"rubric"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:                 model.ID,
		AssessmentID:       model.AssessmentID,
		Text:               model.Text,
		Type:               model.Type,
		Score:              model.Score,
		Options:            model.Options,
		CorrectOptionIndex: model.CorrectOptionIndex,
		MaxAnswerLength:    model.MaxAnswerLength,
		Rubric:             model.Rubric,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

// NewQuestionResponseSlice converts question models into DTOs.
func NewQuestionResponseSlice(models []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(models))
	for _, question := range models {
		responses = append(responses, NewQuestionResponse(question))
	}

	return responses
}
