package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalia-go-api/internal/models"
)

// SubmissionEvent is the wire payload published after a submission changes
// state. Consumers (notification service, gradebook sync) key on Type.
type SubmissionEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	SubmissionID uint      `json:"submission_id"`
	AssessmentID uint      `json:"assessment_id"`
	StudentID    uint      `json:"student_id"`
	TotalScore   *float64  `json:"total_score,omitempty"`
	MaxScore     *float64  `json:"max_score,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher emits submission lifecycle events. Publishing is
// best-effort; a failed publish is logged and never fails the workflow.
type EventPublisher interface {
	SubmissionSubmitted(ctx context.Context, submission models.Submission)
	SubmissionGraded(ctx context.Context, submission models.Submission, grade models.Grade)
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewNATSEventPublisher builds a NATS-backed publisher. A nil connection
// yields a publisher that drops events silently.
func NewNATSEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	if subjectBase == "" {
		subjectBase = "evalia"
	}

	return &natsEventPublisher{
		conn:    conn,
		subject: subjectBase + ".submissions",
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		now:     time.Now,
	}
}

func (p *natsEventPublisher) SubmissionSubmitted(ctx context.Context, submission models.Submission) {
	p.publish("submitted", SubmissionEvent{
		ID:           uuid.NewString(),
		Type:         "submission.submitted",
		SubmissionID: submission.ID,
		AssessmentID: submission.AssessmentID,
		StudentID:    submission.StudentID,
		OccurredAt:   p.now(),
	})
}

func (p *natsEventPublisher) SubmissionGraded(ctx context.Context, submission models.Submission, grade models.Grade) {
	total := grade.TotalScore
	max := grade.MaxScore
	p.publish("graded", SubmissionEvent{
		ID:           uuid.NewString(),
		Type:         "submission.graded",
		SubmissionID: submission.ID,
		AssessmentID: submission.AssessmentID,
		StudentID:    submission.StudentID,
		TotalScore:   &total,
		MaxScore:     &max,
		OccurredAt:   p.now(),
	})
}

func (p *natsEventPublisher) publish(suffix string, event SubmissionEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to encode event")
		return
	}

	subject := p.subject + "." + suffix
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
