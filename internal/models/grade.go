package models

import "time"

// Grade is the finalized scoring record for exactly one submission. MaxScore
// is a snapshot of the assessment total at grading time; later question
// changes do not rewrite stored grades.
type Grade struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;uniqueIndex" json:"submission_id"`
	TotalScore   float64   `gorm:"not null" json:"total_score"`
	MaxScore     float64   `json:"max_score"`
	GradedBy     string    `gorm:"size:255" json:"graded_by"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	GradedAt     time.Time `json:"graded_at"`
}

// Percentage derives the score percentage. A zero max score yields zero
// rather than a division fault.
func (g Grade) Percentage() float64 {
	if g.MaxScore == 0 {
		return 0
	}
	return g.TotalScore / g.MaxScore * 100
}

// LetterGrade maps the percentage onto the A-F scale.
func (g Grade) LetterGrade() string {
	percentage := g.Percentage()
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}
