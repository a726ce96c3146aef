package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kaamgarau/internal/amqp"
	"kaamgarau/internal/core"
	"kaamgarau/internal/log"
	"kaamgarau/internal/metrics"
	"kaamgarau/internal/ports"
)

// RecalcPublisher enqueues level recalculation requests.
type RecalcPublisher interface {
	PublishLevelRecalc(ctx context.Context, msg *amqp.LevelRecalcMessage) error
}

// JobStore is the write side a JobService needs.
type JobStore interface {
	ports.JobRecorder
	ports.SpendingRecorder
}

// JobService records marketplace activity and fans out the side effects:
// a recalculation message and cache invalidation for the user.
type JobService struct {
	store      JobStore
	publisher  RecalcPublisher
	metrics    *metrics.Manager
	invalidate func(userID string)
	logger     *log.Logger
	now        func() time.Time
}

type JobOption func(*JobService)

// WithPublisher enables recalculation messages. A nil publisher is ignored.
func WithPublisher(p RecalcPublisher) JobOption {
	return func(s *JobService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithJobMetrics(m *metrics.Manager) JobOption {
	return func(s *JobService) { s.metrics = m }
}

// WithInvalidation registers a callback run after every successful write.
func WithInvalidation(fn func(userID string)) JobOption {
	return func(s *JobService) { s.invalidate = fn }
}

func WithJobLogger(l *log.Logger) JobOption {
	return func(s *JobService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentJobs)
		}
	}
}

func NewJobService(store JobStore, opts ...JobOption) *JobService {
	s := &JobService{
		store:  store,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentJobs),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordCompletedJob stores a freelancer's finished job.
func (s *JobService) RecordCompletedJob(ctx context.Context, userID string, job core.CompletedJob) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUser
	}
	if err := job.Validate(); err != nil {
		return "", err
	}

	ref, err := s.store.RecordCompletedJob(ctx, userID, job)
	if err != nil {
		return "", fmt.Errorf("record completed job: %w", err)
	}

	s.afterWrite(ctx, userID, core.RoleFreelancer, amqp.ReasonJobCompleted, ref)
	s.logger.InfoContext(ctx, "Completed job recorded",
		log.FieldUserID, userID,
		log.FieldProjectID, job.ProjectID,
		log.FieldBudget, job.Budget.Paisa,
		log.FieldRef, ref)
	return ref, nil
}

// RecordPostedJob stores a client's posted job. A non-empty category also
// records the budget as a spending event dated on the posting day; once the
// job is stored a failed spending write is logged and counted, not returned.
func (s *JobService) RecordPostedJob(ctx context.Context, userID string, job core.PostedJob, category string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUser
	}
	if err := job.Validate(); err != nil {
		return "", err
	}

	var spend *core.SpendingEvent
	if category = strings.TrimSpace(category); category != "" {
		date := job.PostedOn
		if date.IsZero() {
			date = core.DateOf(s.now())
		}
		e := core.SpendingEvent{Date: date, Amount: job.Budget, Category: category}
		if err := e.Validate(); err != nil {
			return "", err
		}
		spend = &e
	}

	ref, err := s.store.RecordPostedJob(ctx, userID, job)
	if err != nil {
		return "", fmt.Errorf("record posted job: %w", err)
	}
	if spend != nil {
		if _, err := s.store.RecordSpending(ctx, userID, *spend); err != nil {
			s.metrics.SpendingFailed()
			s.logger.ErrorContext(ctx, "Failed to record spending for posted job",
				log.FieldUserID, userID,
				log.FieldProjectID, job.ProjectID,
				log.FieldRef, ref,
				log.FieldError, err.Error())
		}
	}

	s.afterWrite(ctx, userID, core.RoleClient, amqp.ReasonJobPosted, ref)
	s.logger.InfoContext(ctx, "Posted job recorded",
		log.FieldUserID, userID,
		log.FieldProjectID, job.ProjectID,
		log.FieldBudget, job.Budget.Paisa,
		log.FieldRef, ref)
	return ref, nil
}

// RecordSpending stores a spending event. Spending does not affect XP, so
// no recalculation is published.
func (s *JobService) RecordSpending(ctx context.Context, userID string, e core.SpendingEvent) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUser
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	ref, err := s.store.RecordSpending(ctx, userID, e)
	if err != nil {
		return "", fmt.Errorf("record spending: %w", err)
	}
	if s.invalidate != nil {
		s.invalidate(userID)
	}
	s.logger.DebugContext(ctx, "Spending recorded", log.FieldUserID, userID, log.FieldRef, ref)
	return ref, nil
}

func (s *JobService) afterWrite(ctx context.Context, userID string, role core.Role, reason, ref string) {
	s.metrics.JobRecorded(role.String())
	if s.invalidate != nil {
		s.invalidate(userID)
	}

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping level recalc", log.FieldUserID, userID)
		return
	}
	msg := amqp.NewLevelRecalcMessage(userID, role, reason, ref)
	if err := s.publisher.PublishLevelRecalc(ctx, msg); err != nil {
		s.metrics.PublishFailed()
		s.logger.ErrorContext(ctx, "Failed to publish level recalc",
			log.FieldUserID, userID,
			log.FieldRole, role.String(),
			log.FieldError, err.Error())
	}
}
