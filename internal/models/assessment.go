package models

import "time"

// Assessment is a gradable unit (quiz, exam or project) owned by a course.
type Assessment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Type        string     `gorm:"size:32;not null" json:"type"`
	CourseID    uint       `gorm:"index" json:"course_id"`
	TotalScore  float64    `gorm:"not null;default:0" json:"total_score"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

const (
	// AssessmentTypeQuiz is a short, usually auto-graded assessment.
	AssessmentTypeQuiz = "quiz"
	// AssessmentTypeExam is a formal timed assessment.
	AssessmentTypeExam = "exam"
	// AssessmentTypeProject is a long-form assessment graded manually.
	AssessmentTypeProject = "project"
)

// RecalculateTotalScore derives the total from the currently owned questions.
// It is idempotent; the stored total never drifts from the question sum.
func (a *Assessment) RecalculateTotalScore() {
	var total float64
	for _, q := range a.Questions {
		total += q.Score
	}
	a.TotalScore = total
}

// IsPastDue reports whether the assessment deadline has already passed.
func (a Assessment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
