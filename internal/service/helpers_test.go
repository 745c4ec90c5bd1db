package service

import (
	"context"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/evalia-go-api/internal/dto"
	"github.com/noah-isme/evalia-go-api/internal/models"
	"github.com/noah-isme/evalia-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrInt(v int) *int {
	return &v
}

func ptrFloat(v float64) *float64 {
	return &v
}

// fakeStore backs the in-memory repository fakes used across service tests.
type fakeStore struct {
	assessments map[uint]models.Assessment
	questions   map[uint]models.Question
	submissions map[uint]models.Submission
	answers     map[uint]models.Answer
	grades      map[uint]models.Grade
	lastID      uint

	totalScoreUpdates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assessments: map[uint]models.Assessment{},
		questions:   map[uint]models.Question{},
		submissions: map[uint]models.Submission{},
		answers:     map[uint]models.Answer{},
		grades:      map[uint]models.Grade{},
	}
}

func (s *fakeStore) nextID() uint {
	s.lastID++
	return s.lastID
}

func (s *fakeStore) questionsOf(assessmentID uint) []models.Question {
	var questions []models.Question
	for _, question := range s.questions {
		if question.AssessmentID == assessmentID {
			questions = append(questions, question)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions
}

func (s *fakeStore) answersOf(submissionID uint) []models.Answer {
	var answers []models.Answer
	for _, answer := range s.answers {
		if answer.SubmissionID == submissionID {
			answers = append(answers, answer)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers
}

func (s *fakeStore) gradeOf(submissionID uint) (models.Grade, bool) {
	for _, grade := range s.grades {
		if grade.SubmissionID == submissionID {
			return grade, true
		}
	}
	return models.Grade{}, false
}

func (s *fakeStore) loadSubmission(id uint) (models.Submission, bool) {
	submission, ok := s.submissions[id]
	if !ok {
		return models.Submission{}, false
	}
	submission.Answers = s.answersOf(id)
	if grade, ok := s.gradeOf(id); ok {
		submission.Grade = &grade
	}
	return submission, true
}

type fakeAssessmentRepo struct {
	store *fakeStore
}

func (f *fakeAssessmentRepo) List(ctx context.Context) ([]models.Assessment, error) {
	var assessments []models.Assessment
	for id := range f.store.assessments {
		assessment, _ := f.load(id)
		assessments = append(assessments, assessment)
	}
	return assessments, nil
}

func (f *fakeAssessmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Assessment, error) {
	var assessments []models.Assessment
	for id, assessment := range f.store.assessments {
		if assessment.CourseID == courseID {
			loaded, _ := f.load(id)
			assessments = append(assessments, loaded)
		}
	}
	return assessments, nil
}

func (f *fakeAssessmentRepo) load(id uint) (models.Assessment, bool) {
	assessment, ok := f.store.assessments[id]
	if !ok {
		return models.Assessment{}, false
	}
	assessment.Questions = f.store.questionsOf(id)
	return assessment, true
}

func (f *fakeAssessmentRepo) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	assessment, ok := f.load(id)
	if !ok {
		return models.Assessment{}, gorm.ErrRecordNotFound
	}
	return assessment, nil
}

func (f *fakeAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	assessment.ID = f.store.nextID()
	for i := range assessment.Questions {
		assessment.Questions[i].ID = f.store.nextID()
		assessment.Questions[i].AssessmentID = assessment.ID
		f.store.questions[assessment.Questions[i].ID] = assessment.Questions[i]
	}
	stored := *assessment
	stored.Questions = nil
	f.store.assessments[assessment.ID] = stored
	return nil
}

func (f *fakeAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment) error {
	stored := *assessment
	stored.Questions = nil
	f.store.assessments[assessment.ID] = stored
	return nil
}

func (f *fakeAssessmentRepo) UpdateTotalScore(ctx context.Context, id uint, totalScore float64) error {
	assessment, ok := f.store.assessments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assessment.TotalScore = totalScore
	f.store.assessments[id] = assessment
	f.store.totalScoreUpdates++
	return nil
}

func (f *fakeAssessmentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.store.assessments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.store.assessments, id)
	for questionID, question := range f.store.questions {
		if question.AssessmentID == id {
			delete(f.store.questions, questionID)
		}
	}
	return nil
}

type fakeQuestionRepo struct {
	store *fakeStore
}

func (f *fakeQuestionRepo) ListByAssessment(ctx context.Context, assessmentID uint) ([]models.Question, error) {
	return f.store.questionsOf(assessmentID), nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id uint) (models.Question, error) {
	question, ok := f.store.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (f *fakeQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	question.ID = f.store.nextID()
	f.store.questions[question.ID] = *question
	return nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, question *models.Question) error {
	if _, ok := f.store.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.store.questions[question.ID] = *question
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.store.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.store.questions, id)
	return nil
}

type fakeSubmissionRepo struct {
	store *fakeStore
}

func (f *fakeSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var submissions []models.Submission
	for id := range f.store.submissions {
		submission, _ := f.store.loadSubmission(id)
		if filter.AssessmentID != nil && submission.AssessmentID != *filter.AssessmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	for id := range f.store.submissions {
		submission, _ := f.store.loadSubmission(id)
		if submission.StudentID == studentID {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool {
		left, right := submissions[i].SubmittedAt, submissions[j].SubmittedAt
		switch {
		case left == nil:
			return false
		case right == nil:
			return true
		default:
			return left.After(*right)
		}
	})
	return submissions, nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := f.store.loadSubmission(id)
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	submission.ID = f.store.nextID()
	for i := range submission.Answers {
		submission.Answers[i].ID = f.store.nextID()
		submission.Answers[i].SubmissionID = submission.ID
		f.store.answers[submission.Answers[i].ID] = submission.Answers[i]
	}
	stored := *submission
	stored.Answers = nil
	stored.Grade = nil
	f.store.submissions[submission.ID] = stored
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	if _, ok := f.store.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *submission
	stored.Answers = nil
	stored.Grade = nil
	f.store.submissions[submission.ID] = stored
	return nil
}

type fakeAnswerRepo struct {
	store *fakeStore
}

func (f *fakeAnswerRepo) GetByID(ctx context.Context, id uint) (models.Answer, error) {
	answer, ok := f.store.answers[id]
	if !ok {
		return models.Answer{}, gorm.ErrRecordNotFound
	}
	return answer, nil
}

func (f *fakeAnswerRepo) Update(ctx context.Context, answer *models.Answer) error {
	if _, ok := f.store.answers[answer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.store.answers[answer.ID] = *answer
	return nil
}

type fakeGradeRepo struct {
	store *fakeStore
}

func (f *fakeGradeRepo) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	grade, ok := f.store.gradeOf(submissionID)
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

func (f *fakeGradeRepo) SaveForSubmission(ctx context.Context, grade *models.Grade) error {
	if existing, ok := f.store.gradeOf(grade.SubmissionID); ok {
		grade.ID = existing.ID
		grade.GradedAt = existing.GradedAt
	} else {
		grade.ID = f.store.nextID()
	}
	f.store.grades[grade.ID] = *grade

	submission, ok := f.store.submissions[grade.SubmissionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	submission.Status = models.SubmissionStatusGraded
	f.store.submissions[grade.SubmissionID] = submission
	return nil
}

type fakeActivityRecorder struct {
	entries []ActivityEntry
}

func (f *fakeActivityRecorder) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	f.entries = append(f.entries, entry)
	return dto.ActivityResponse{}, nil
}

type fakeEventPublisher struct {
	submitted []models.Submission
	graded    []models.Grade
}

func (f *fakeEventPublisher) SubmissionSubmitted(ctx context.Context, submission models.Submission) {
	f.submitted = append(f.submitted, submission)
}

func (f *fakeEventPublisher) SubmissionGraded(ctx context.Context, submission models.Submission, grade models.Grade) {
	f.graded = append(f.graded, grade)
}
