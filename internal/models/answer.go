package models

import "time"

// Answer is one student response to one question within a submission. The
// question is referenced by identifier only; resolving it against the
// assessment's question set happens at grading time.
type Answer struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	SubmissionID        uint      `gorm:"not null;index" json:"submission_id"`
	QuestionID          uint      `gorm:"not null" json:"question_id"`
	Content             string    `gorm:"type:text" json:"content"`
	SelectedOptionIndex *int      `json:"selected_option_index"`
	Score               *float64  `json:"score"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
