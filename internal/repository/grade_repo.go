package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/evalia-go-api/internal/models"
)

// GradeRepository defines persistence operations for grade records.
type GradeRepository interface {
	GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error)
	SaveForSubmission(ctx context.Context, grade *models.Grade) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&grade).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

// SaveForSubmission upserts the unique grade for a submission and flips the
// submission to graded inside one transaction. At most one grade row exists
// per submission; the unique index on submission_id backstops the
// lookup-before-create against concurrent graders.
func (r *gradeRepository) SaveForSubmission(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Grade
		err := tx.Where("submission_id = ?", grade.SubmissionID).First(&existing).Error
		switch {
		case err == nil:
			grade.ID = existing.ID
			grade.GradedAt = existing.GradedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first grade for this submission
		default:
			return err
		}

		if err := tx.Save(grade).Error; err != nil {
			return err
		}

		return tx.Model(&models.Submission{}).
			Where("id = ?", grade.SubmissionID).
			Update("status", models.SubmissionStatusGraded).Error
	})
}
