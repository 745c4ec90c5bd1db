package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/evalia-go-api/internal/dto"
	"github.com/noah-isme/evalia-go-api/internal/models"
	"github.com/noah-isme/evalia-go-api/internal/repository"
	"github.com/noah-isme/evalia-go-api/internal/scoring"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionAlreadySubmitted indicates the submission already left draft;
// re-submitting is rejected rather than silently re-stamping the timestamp.
var ErrSubmissionAlreadySubmitted = errors.New("submission already submitted")

// SubmissionService orchestrates the submission workflows: one-shot submit,
// draft assembly and the read-side queries.
type SubmissionService interface {
	SubmitAssessment(ctx context.Context, payload dto.SubmitAssessmentRequest) (dto.SubmissionResponse, error)
	CreateDraft(ctx context.Context, payload dto.SubmitAssessmentRequest) (dto.SubmissionResponse, error)
	Submit(ctx context.Context, submissionID uint) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	History(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assessments repository.AssessmentRepository
	answers     repository.AnswerRepository
	validator   *validator.Validate
	cache       *HistoryCache
	events      EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assessments repository.AssessmentRepository, answers repository.AnswerRepository, validate *validator.Validate, cache *HistoryCache, events EventPublisher, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assessments: assessments,
		answers:     answers,
		validator:   validate,
		cache:       cache,
		events:      events,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// SubmitAssessment creates, scores and submits an attempt in one step. MCQ
// answers are evaluated against the assessment's question set; essay and
// coding answers are persisted with a nil score awaiting manual grading.
// Answers referencing a question outside the assessment are persisted
// unscored rather than rejected.
func (s *submissionService) SubmitAssessment(ctx context.Context, payload dto.SubmitAssessmentRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, payload.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssessmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssessmentID: payload.AssessmentID,
		StudentID:    payload.StudentID,
		Status:       models.SubmissionStatusDraft,
		Answers:      buildAnswers(payload.Answers),
	}

	scoreAnswers(assessment, submission.Answers)
	submission.Submit(s.now())

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.cache.Invalidate(ctx, submission.StudentID)
	if s.events != nil {
		s.events.SubmissionSubmitted(ctx, submission)
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assessment_id", submission.AssessmentID).
		Uint("student_id", submission.StudentID).
		Msg("submission received")

	return dto.NewSubmissionResponse(submission), nil
}

// CreateDraft stores an attempt without submitting it. Answers are kept
// unscored until the draft is submitted.
func (s *submissionService) CreateDraft(ctx context.Context, payload dto.SubmitAssessmentRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.assessments.GetByID(ctx, payload.AssessmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssessmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssessmentID: payload.AssessmentID,
		StudentID:    payload.StudentID,
		Status:       models.SubmissionStatusDraft,
		Answers:      buildAnswers(payload.Answers),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("draft created")

	return dto.NewSubmissionResponse(submission), nil
}

// Submit scores and turns in a previously created draft. Submissions that
// already left draft are rejected.
func (s *submissionService) Submit(ctx context.Context, submissionID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !submission.Submit(s.now()) {
		return dto.SubmissionResponse{}, ErrSubmissionAlreadySubmitted
	}

	assessment, err := s.assessments.GetByID(ctx, submission.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssessmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	scoreAnswers(assessment, submission.Answers)
	for i := range submission.Answers {
		if submission.Answers[i].Score == nil {
			continue
		}
		if err := s.answers.Update(ctx, &submission.Answers[i]); err != nil {
			return dto.SubmissionResponse{}, err
		}
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.cache.Invalidate(ctx, submission.StudentID)
	if s.events != nil {
		s.events.SubmissionSubmitted(ctx, submission)
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("draft submitted")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssessmentID: filter.AssessmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// History returns the student's submissions ordered by submission time,
// newest first, served from the cache when warm.
func (s *submissionService) History(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	if cached, ok := s.cache.Get(ctx, studentID); ok {
		return cached, nil
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	history := dto.NewSubmissionResponseSlice(submissions)
	s.cache.Set(ctx, studentID, history)

	return history, nil
}

func buildAnswers(payloads []dto.AnswerPayload) []models.Answer {
	answers := make([]models.Answer, 0, len(payloads))
	for _, payload := range payloads {
		answers = append(answers, models.Answer{
			QuestionID:          payload.QuestionID,
			Content:             payload.Content,
			SelectedOptionIndex: payload.SelectedOptionIndex,
		})
	}

	return answers
}

// scoreAnswers evaluates every answer whose question belongs to the
// assessment and is automatically scorable. Answers whose question is
// missing from the set are skipped, not rejected.
func scoreAnswers(assessment models.Assessment, answers []models.Answer) {
	questionByID := make(map[uint]models.Question, len(assessment.Questions))
	for _, question := range assessment.Questions {
		questionByID[question.ID] = question
	}

	for i := range answers {
		question, ok := questionByID[answers[i].QuestionID]
		if !ok {
			continue
		}

		if score, scored := scoring.Evaluate(question, answers[i]); scored {
			value := score
			answers[i].Score = &value
		}
	}
}
