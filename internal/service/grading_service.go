package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/evalia-go-api/internal/dto"
	"github.com/noah-isme/evalia-go-api/internal/models"
	"github.com/noah-isme/evalia-go-api/internal/repository"
)

// ErrAnswerNotFound indicates the answer does not exist.
var ErrAnswerNotFound = errors.New("answer not found")

// ErrGradeNotFound indicates no grade record exists for the submission.
var ErrGradeNotFound = errors.New("grade not found")

// ErrGradeConflict indicates a concurrent grader persisted a grade for the
// same submission first.
var ErrGradeConflict = errors.New("grade already recorded concurrently")

// GradingService encapsulates the grading workflows: producing the grade
// record for a submission and manual per-answer overrides.
type GradingService interface {
	GradeSubmission(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.GradeResponse, error)
	GradeAnswer(ctx context.Context, answerID uint, payload dto.GradeAnswerRequest, actor ActivityActor) (dto.GradeAnswerResponse, error)
	GetGradeBySubmission(ctx context.Context, submissionID uint) (dto.GradeResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	assessments repository.AssessmentRepository
	answers     repository.AnswerRepository
	grades      repository.GradeRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	cache       *HistoryCache
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, assessments repository.AssessmentRepository, answers repository.AnswerRepository, grades repository.GradeRepository, validate *validator.Validate, activity ActivityRecorder, cache *HistoryCache, events EventPublisher, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		assessments: assessments,
		answers:     answers,
		grades:      grades,
		validator:   validate,
		activity:    activity,
		cache:       cache,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

// GradeSubmission aggregates the submission's answer scores into its unique
// grade record. MaxScore snapshots the assessment total at grading time;
// re-grading updates the existing record instead of creating a second one.
func (s *gradingService) GradeSubmission(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor ActivityActor) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/evalia-go-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.submission")
	span.SetAttributes(attribute.Int64("grading.submission_id", int64(submissionID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.GradeResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, submission.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assessment_not_found")
			return dto.GradeResponse{}, ErrAssessmentNotFound
		}
		span.RecordError(err)
		return dto.GradeResponse{}, err
	}

	grade := models.Grade{
		SubmissionID: submission.ID,
		TotalScore:   submission.CalculateTotalScore(),
		MaxScore:     assessment.TotalScore,
		GradedBy:     s.sanitizer.Sanitize(payload.GradedBy),
		Feedback:     s.sanitizer.Sanitize(payload.Feedback),
		GradedAt:     s.now(),
	}

	if err := s.grades.SaveForSubmission(ctx, &grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "grade_conflict")
			return dto.GradeResponse{}, ErrGradeConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_save_failed")
		return dto.GradeResponse{}, err
	}

	s.cache.Invalidate(ctx, submission.StudentID)

	s.recordActivity(ctx, actor, "submission.graded", "submission", submission.ID, map[string]interface{}{
		"student_id":    submission.StudentID,
		"assessment_id": submission.AssessmentID,
		"total_score":   grade.TotalScore,
		"max_score":     grade.MaxScore,
	})

	if s.events != nil {
		s.events.SubmissionGraded(ctx, submission, grade)
	}

	span.SetAttributes(
		attribute.Float64("grading.total_score", grade.TotalScore),
		attribute.Float64("grading.max_score", grade.MaxScore),
	)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("total_score", grade.TotalScore).
		Float64("max_score", grade.MaxScore).
		Msg("submission graded")

	return dto.NewGradeResponse(grade), nil
}

// GradeAnswer sets a manual score on a single answer, used for essay and
// coding questions. It never refreshes an existing grade record; the
// response reports when one exists and is now stale so the caller can
// re-run GradeSubmission.
func (s *gradingService) GradeAnswer(ctx context.Context, answerID uint, payload dto.GradeAnswerRequest, actor ActivityActor) (dto.GradeAnswerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeAnswerResponse{}, err
	}

	answer, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeAnswerResponse{}, ErrAnswerNotFound
		}
		return dto.GradeAnswerResponse{}, err
	}

	answer.Score = payload.Score
	if err := s.answers.Update(ctx, &answer); err != nil {
		return dto.GradeAnswerResponse{}, err
	}

	stale := false
	if _, err := s.grades.GetBySubmission(ctx, answer.SubmissionID); err == nil {
		stale = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.GradeAnswerResponse{}, err
	}

	s.recordActivity(ctx, actor, "answer.graded", "answer", answer.ID, map[string]interface{}{
		"submission_id": answer.SubmissionID,
		"score":         *payload.Score,
	})

	s.logger.Info().
		Uint("answer_id", answer.ID).
		Uint("submission_id", answer.SubmissionID).
		Bool("grade_stale", stale).
		Msg("answer graded manually")

	return dto.GradeAnswerResponse{
		Answer:     dto.NewAnswerResponse(answer),
		GradeStale: stale,
	}, nil
}

func (s *gradingService) GetGradeBySubmission(ctx context.Context, submissionID uint) (dto.GradeResponse, error) {
	grade, err := s.grades.GetBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrGradeNotFound
		}
		return dto.GradeResponse{}, err
	}

	return dto.NewGradeResponse(grade), nil
}

func (s *gradingService) recordActivity(ctx context.Context, actor ActivityActor, action, entityType string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	_, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
		Metadata:   metadata,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
