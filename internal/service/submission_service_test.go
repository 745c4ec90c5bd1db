package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/evalia-go-api/internal/dto"
	"github.com/noah-isme/evalia-go-api/internal/models"
)

func newSubmissionFixture(t *testing.T, cache *HistoryCache) (*fakeStore, SubmissionService, *fakeEventPublisher) {
	t.Helper()

	store := newFakeStore()
	events := &fakeEventPublisher{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubmissionService(&fakeSubmissionRepo{store: store}, &fakeAssessmentRepo{store: store}, &fakeAnswerRepo{store: store}, validate, cache, events, testLogger())

	return store, svc, events
}

// seedQuizAssessment stores an assessment with one MCQ worth 5 points
// (correct index 1) and one worth 10 points (correct index 0). Returns the
// assessment ID followed by the two question IDs.
func seedQuizAssessment(store *fakeStore) (uint, uint, uint) {
	assessmentID := store.nextID()
	store.assessments[assessmentID] = models.Assessment{
		ID:         assessmentID,
		Title:      "Weekly quiz",
		Type:       models.AssessmentTypeQuiz,
		CourseID:   1,
		TotalScore: 15,
	}

	firstID := store.nextID()
	store.questions[firstID] = models.Question{
		ID:                 firstID,
		AssessmentID:       assessmentID,
		Text:               "Pick green",
		Type:               models.QuestionTypeMCQ,
		Score:              5,
		Options:            datatypes.JSONSlice[string]{"red", "green", "blue"},
		CorrectOptionIndex: ptrInt(1),
	}

	secondID := store.nextID()
	store.questions[secondID] = models.Question{
		ID:                 secondID,
		AssessmentID:       assessmentID,
		Text:               "Pick red",
		Type:               models.QuestionTypeMCQ,
		Score:              10,
		Options:            datatypes.JSONSlice[string]{"red", "green", "blue"},
		CorrectOptionIndex: ptrInt(0),
	}

	return assessmentID, firstID, secondID
}

func TestSubmitAssessmentScoresMCQAnswers(t *testing.T) {
	store, svc, events := newSubmissionFixture(t, nil)
	assessmentID, firstQ, secondQ := seedQuizAssessment(store)

	submission, err := svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers: []dto.AnswerPayload{
			{QuestionID: firstQ, SelectedOptionIndex: ptrInt(1)},
			{QuestionID: secondQ, SelectedOptionIndex: ptrInt(2)},
		},
	})
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	require.NotNil(t, submission.SubmittedAt)
	require.Len(t, submission.Answers, 2)

	require.NotNil(t, submission.Answers[0].Score)
	require.Equal(t, float64(5), *submission.Answers[0].Score)
	require.NotNil(t, submission.Answers[1].Score)
	require.Zero(t, *submission.Answers[1].Score)
	require.Equal(t, float64(5), submission.TotalScore)

	require.Len(t, events.submitted, 1)
}

func TestSubmitAssessmentLeavesManualQuestionsUnscored(t *testing.T) {
	store, svc, _ := newSubmissionFixture(t, nil)
	assessmentID, firstQ, _ := seedQuizAssessment(store)

	essayID := store.nextID()
	store.questions[essayID] = models.Question{
		ID:           essayID,
		AssessmentID: assessmentID,
		Text:         "Explain your choice",
		Type:         models.QuestionTypeEssay,
		Score:        10,
	}

	submission, err := svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers: []dto.AnswerPayload{
			{QuestionID: firstQ, SelectedOptionIndex: ptrInt(1)},
			{QuestionID: essayID, Content: "Because green"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, submission.Answers[0].Score)
	require.Nil(t, submission.Answers[1].Score)
}

func TestSubmitAssessmentSkipsForeignQuestion(t *testing.T) {
	store, svc, _ := newSubmissionFixture(t, nil)
	assessmentID, firstQ, _ := seedQuizAssessment(store)

	submission, err := svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers: []dto.AnswerPayload{
			{QuestionID: firstQ, SelectedOptionIndex: ptrInt(1)},
			{QuestionID: 999, SelectedOptionIndex: ptrInt(0)},
		},
	})
	require.NoError(t, err)

	require.Len(t, submission.Answers, 2)
	require.Nil(t, submission.Answers[1].Score)
}

func TestSubmitAssessmentMissingAssessment(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t, nil)

	_, err := svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: 99,
		StudentID:    10,
		Answers:      []dto.AnswerPayload{{QuestionID: 1}},
	})
	require.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestSubmitAssessmentRequiresAnswers(t *testing.T) {
	store, svc, _ := newSubmissionFixture(t, nil)
	assessmentID, _, _ := seedQuizAssessment(store)

	_, err := svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
	})
	require.Error(t, err)
}

func TestDraftThenSubmit(t *testing.T) {
	store, svc, events := newSubmissionFixture(t, nil)
	assessmentID, firstQ, _ := seedQuizAssessment(store)

	draft, err := svc.CreateDraft(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers:      []dto.AnswerPayload{{QuestionID: firstQ, SelectedOptionIndex: ptrInt(1)}},
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusDraft, draft.Status)
	require.Nil(t, draft.SubmittedAt)
	require.Nil(t, draft.Answers[0].Score)
	require.Empty(t, events.submitted)

	submitted, err := svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	require.NotNil(t, submitted.Answers[0].Score)
	require.Equal(t, float64(5), *submitted.Answers[0].Score)
	require.Len(t, events.submitted, 1)

	_, err = svc.Submit(context.Background(), draft.ID)
	require.ErrorIs(t, err, ErrSubmissionAlreadySubmitted)
}

func TestSubmitMissingSubmission(t *testing.T) {
	_, svc, _ := newSubmissionFixture(t, nil)

	_, err := svc.Submit(context.Background(), 404)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	store, svc, _ := newSubmissionFixture(t, nil)
	assessmentID, firstQ, _ := seedQuizAssessment(store)

	_, err := svc.CreateDraft(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers:      []dto.AnswerPayload{{QuestionID: firstQ}},
	})
	require.NoError(t, err)

	_, err = svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    11,
		Answers:      []dto.AnswerPayload{{QuestionID: firstQ, SelectedOptionIndex: ptrInt(1)}},
	})
	require.NoError(t, err)

	status := models.SubmissionStatusSubmitted
	submitted, err := svc.List(context.Background(), dto.SubmissionFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	require.Equal(t, uint(11), submitted[0].StudentID)
}

func TestHistoryServedFromCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cache := NewHistoryCache(client, time.Minute, testLogger())

	store, svc, _ := newSubmissionFixture(t, cache)
	assessmentID, firstQ, _ := seedQuizAssessment(store)

	_, err := svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers:      []dto.AnswerPayload{{QuestionID: firstQ, SelectedOptionIndex: ptrInt(1)}},
	})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// Mutate the store behind the cache's back; a warm cache must still
	// serve the previous answer.
	for id := range store.submissions {
		delete(store.submissions, id)
	}

	cached, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.Equal(t, history[0].ID, cached[0].ID)
}

func TestSubmitInvalidatesHistoryCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cache := NewHistoryCache(client, time.Minute, testLogger())

	store, svc, _ := newSubmissionFixture(t, cache)
	assessmentID, firstQ, secondQ := seedQuizAssessment(store)

	_, err := svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers:      []dto.AnswerPayload{{QuestionID: firstQ, SelectedOptionIndex: ptrInt(1)}},
	})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)

	_, err = svc.SubmitAssessment(context.Background(), dto.SubmitAssessmentRequest{
		AssessmentID: assessmentID,
		StudentID:    10,
		Answers:      []dto.AnswerPayload{{QuestionID: secondQ, SelectedOptionIndex: ptrInt(0)}},
	})
	require.NoError(t, err)

	refreshed, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, refreshed, 2)
}
