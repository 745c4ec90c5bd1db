package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/evalia-go-api/internal/dto"
	"github.com/noah-isme/evalia-go-api/internal/models"
	"github.com/noah-isme/evalia-go-api/internal/repository"
)

// ErrAssessmentNotFound indicates the requested assessment does not exist.
var ErrAssessmentNotFound = errors.New("assessment not found")

// ErrQuestionNotFound indicates the question does not exist or does not
// belong to the assessment named by the caller.
var ErrQuestionNotFound = errors.New("question not found")

// ErrInvalidCorrectOption indicates the correct option index points outside
// the question's option list.
var ErrInvalidCorrectOption = errors.New("correct option index out of range")

// AssessmentService exposes assessment authoring use cases. Question
// mutations always go through the owning assessment so the derived total
// score never drifts from the question sum.
type AssessmentService interface {
	List(ctx context.Context) ([]dto.AssessmentResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.AssessmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssessmentResponse, error)
	Create(ctx context.Context, payload dto.AssessmentCreateRequest, actor ActivityActor) (dto.AssessmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) error
	ListQuestions(ctx context.Context, assessmentID uint) ([]dto.QuestionResponse, error)
	AddQuestion(ctx context.Context, assessmentID uint, payload dto.QuestionRequest, actor ActivityActor) (dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, assessmentID, questionID uint, payload dto.QuestionRequest, actor ActivityActor) (dto.QuestionResponse, error)
	RemoveQuestion(ctx context.Context, assessmentID, questionID uint, actor ActivityActor) error
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	questions   repository.QuestionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssessmentService builds a new assessment service.
func NewAssessmentService(assessments repository.AssessmentRepository, questions repository.QuestionRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		assessments: assessments,
		questions:   questions,
		validator:   validate,
		activity:    activity,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "assessment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assessmentService) List(ctx context.Context) ([]dto.AssessmentResponse, error) {
	assessments, err := s.assessments.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewAssessmentResponseSlice(assessments), nil
}

func (s *assessmentService) ListByCourse(ctx context.Context, courseID uint) ([]dto.AssessmentResponse, error) {
	assessments, err := s.assessments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssessmentResponseSlice(assessments), nil
}

func (s *assessmentService) Get(ctx context.Context, id uint) (dto.AssessmentResponse, error) {
	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}

		return dto.AssessmentResponse{}, err
	}

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Create(ctx context.Context, payload dto.AssessmentCreateRequest, actor ActivityActor) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment := models.Assessment{
		Title:       s.sanitizer.Sanitize(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Type:        payload.Type,
		CourseID:    payload.CourseID,
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		assessment.DueDate = &dueDate
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assessment.created", "assessment", assessment.ID, map[string]interface{}{
		"title":     assessment.Title,
		"type":      assessment.Type,
		"course_id": assessment.CourseID,
	})

	s.logger.Info().Uint("assessment_id", assessment.ID).Msg("assessment created")

	return dto.NewAssessmentResponse(assessment), nil
}

func (s *assessmentService) Update(ctx context.Context, id uint, payload dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrAssessmentNotFound
		}

		return dto.AssessmentResponse{}, err
	}

	if payload.Title != nil {
		assessment.Title = s.sanitizer.Sanitize(*payload.Title)
	}

	if payload.Description != nil {
		assessment.Description = s.sanitizer.Sanitize(*payload.Description)
	}

	if payload.Type != nil {
		assessment.Type = *payload.Type
	}

	if payload.CourseID != nil {
		assessment.CourseID = *payload.CourseID
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssessmentResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		assessment.DueDate = &dueDate
	}

	if err := s.assessments.Update(ctx, &assessment); err != nil {
		return dto.AssessmentResponse{}, err
	}

	s.logger.Info().Uint("assessment_id", assessment.ID).Msg("assessment updated")

	return dto.NewAssessmentResponse(assessment), nil
}

// Delete removes the assessment together with its owned questions.
func (s *assessmentService) Delete(ctx context.Context, id uint, actor ActivityActor) error {
	if err := s.assessments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssessmentNotFound
		}
		return err
	}

	s.recordActivity(ctx, actor, "assessment.deleted", "assessment", id, nil)
	s.logger.Info().Uint("assessment_id", id).Msg("assessment deleted")
	return nil
}

func (s *assessmentService) ListQuestions(ctx context.Context, assessmentID uint) ([]dto.QuestionResponse, error) {
	if _, err := s.assessments.GetByID(ctx, assessmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}

	questions, err := s.questions.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuestionResponseSlice(questions), nil
}

func (s *assessmentService) AddQuestion(ctx context.Context, assessmentID uint, payload dto.QuestionRequest, actor ActivityActor) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if _, err := s.assessments.GetByID(ctx, assessmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrAssessmentNotFound
		}
		return dto.QuestionResponse{}, err
	}

	question := s.buildQuestion(assessmentID, payload)
	if !question.HasValidCorrectOption() {
		return dto.QuestionResponse{}, ErrInvalidCorrectOption
	}

	if err := s.questions.Create(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	if err := s.recalculateTotalScore(ctx, assessmentID); err != nil {
		return dto.QuestionResponse{}, err
	}

	s.recordActivity(ctx, actor, "question.added", "question", question.ID, map[string]interface{}{
		"assessment_id": assessmentID,
		"type":          question.Type,
		"score":         question.Score,
	})

	s.logger.Info().Uint("assessment_id", assessmentID).Uint("question_id", question.ID).Msg("question added")

	return dto.NewQuestionResponse(question), nil
}

// UpdateQuestion replaces the question definition. The assessment total is
// recalculated only when the point value actually changed.
func (s *assessmentService) UpdateQuestion(ctx context.Context, assessmentID, questionID uint, payload dto.QuestionRequest, actor ActivityActor) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	existing, err := s.getOwnedQuestion(ctx, assessmentID, questionID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}

	oldScore := existing.Score

	replacement := s.buildQuestion(assessmentID, payload)
	replacement.ID = existing.ID
	replacement.CreatedAt = existing.CreatedAt
	if !replacement.HasValidCorrectOption() {
		return dto.QuestionResponse{}, ErrInvalidCorrectOption
	}

	if err := s.questions.Update(ctx, &replacement); err != nil {
		return dto.QuestionResponse{}, err
	}

	if oldScore != replacement.Score {
		if err := s.recalculateTotalScore(ctx, assessmentID); err != nil {
			return dto.QuestionResponse{}, err
		}
	}

	s.recordActivity(ctx, actor, "question.updated", "question", questionID, map[string]interface{}{
		"assessment_id": assessmentID,
		"old_score":     oldScore,
		"new_score":     replacement.Score,
	})

	return dto.NewQuestionResponse(replacement), nil
}

func (s *assessmentService) RemoveQuestion(ctx context.Context, assessmentID, questionID uint, actor ActivityActor) error {
	if _, err := s.getOwnedQuestion(ctx, assessmentID, questionID); err != nil {
		return err
	}

	if err := s.questions.Delete(ctx, questionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.recalculateTotalScore(ctx, assessmentID); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "question.removed", "question", questionID, map[string]interface{}{
		"assessment_id": assessmentID,
	})

	s.logger.Info().Uint("assessment_id", assessmentID).Uint("question_id", questionID).Msg("question removed")
	return nil
}

func (s *assessmentService) getOwnedQuestion(ctx context.Context, assessmentID, questionID uint) (models.Question, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Question{}, ErrQuestionNotFound
		}
		return models.Question{}, err
	}

	if question.AssessmentID != assessmentID {
		return models.Question{}, ErrQuestionNotFound
	}

	return question, nil
}

func (s *assessmentService) buildQuestion(assessmentID uint, payload dto.QuestionRequest) models.Question {
	return models.Question{
		AssessmentID:       assessmentID,
		Text:               s.sanitizer.Sanitize(payload.Text),
		Type:               payload.Type,
		Score:              payload.Score,
		Options:            datatypes.JSONSlice[string](payload.Options),
		CorrectOptionIndex: payload.CorrectOptionIndex,
		MaxAnswerLength:    payload.MaxAnswerLength,
		Rubric:             s.sanitizer.Sanitize(payload.Rubric),
	}
}

// recalculateTotalScore rederives the stored total from the current question
// set. Idempotent; the result depends only on what is persisted.
func (s *assessmentService) recalculateTotalScore(ctx context.Context, assessmentID uint) error {
	questions, err := s.questions.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return err
	}

	var total float64
	for _, question := range questions {
		total += question.Score
	}

	return s.assessments.UpdateTotalScore(ctx, assessmentID, total)
}

func (s *assessmentService) recordActivity(ctx context.Context, actor ActivityActor, action, entityType string, entityID uint, metadata map[string]interface{}) {
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
