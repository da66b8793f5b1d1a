package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	"github.com/noah-isme/ppdb-selection-api/pkg/jobs"
)

const jobTypeOutcomeNotification = "admission_outcome"

// OutcomeSink receives acceptance/rejection messages for delivery. The actual
// transport (mail gateway, message broker) lives outside this service; the
// default sink only logs.
type OutcomeSink interface {
	Deliver(ctx context.Context, registration models.AnnouncedRegistration) error
}

// LogOutcomeSink writes outcome notifications to the application log.
type LogOutcomeSink struct {
	logger *zap.Logger
}

// NewLogOutcomeSink constructs the default sink.
func NewLogOutcomeSink(logger *zap.Logger) *LogOutcomeSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogOutcomeSink{logger: logger}
}

// Deliver logs the outcome message.
func (s *LogOutcomeSink) Deliver(_ context.Context, registration models.AnnouncedRegistration) error {
	s.logger.Info("outcome notification",
		zap.String("registration_id", registration.RegistrationID),
		zap.String("email", registration.Email),
		zap.String("status", string(registration.Status)),
	)
	return nil
}

// NotificationService fans announce outcomes out to the sink through a
// background queue. Delivery is best effort.
type NotificationService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service and its queue.
func NewNotificationService(sink OutcomeSink, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{logger: logger}
	svc.queue = jobs.NewQueue("outcome-notifications", func(ctx context.Context, job jobs.Job) error {
		registration, ok := job.Payload.(models.AnnouncedRegistration)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return sink.Deliver(ctx, registration)
	}, cfg)
	return svc
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// EnqueueOutcome queues one outcome notification.
func (s *NotificationService) EnqueueOutcome(registration models.AnnouncedRegistration) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      registration.RegistrationID,
		Type:    jobTypeOutcomeNotification,
		Payload: registration,
	})
}
