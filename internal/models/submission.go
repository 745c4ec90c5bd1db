package models

import "time"

// Submission is one student's attempt at an assessment. Its status only
// moves forward: draft, then submitted, then graded.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssessmentID uint       `gorm:"not null;index" json:"assessment_id"`
	StudentID    uint       `gorm:"not null;index" json:"student_id"`
	Status       string     `gorm:"size:32;not null;default:draft" json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Answers      []Answer   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers"`
	Grade        *Grade     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"grade"`
}

const (
	// SubmissionStatusDraft indicates the submission is still being assembled.
	SubmissionStatusDraft = "draft"
	// SubmissionStatusSubmitted indicates the student has turned in the attempt.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates a grade record exists for the attempt.
	SubmissionStatusGraded = "graded"
)

// Submit transitions the submission from draft to submitted and stamps the
// submission time. It reports false when the submission already left draft.
func (s *Submission) Submit(now time.Time) bool {
	if s.Status != SubmissionStatusDraft {
		return false
	}
	s.Status = SubmissionStatusSubmitted
	s.SubmittedAt = &now
	return true
}

// CalculateTotalScore sums the scores of all graded answers. Answers still
// awaiting manual grading carry a nil score and contribute zero.
func (s Submission) CalculateTotalScore() float64 {
	var total float64
	for _, answer := range s.Answers {
		if answer.Score != nil {
			total += *answer.Score
		}
	}
	return total
}

// IsGraded reports whether the submission has reached its final state.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
