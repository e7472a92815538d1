package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/absensi-qr-api/internal/models"
	"github.com/noah-isme/absensi-qr-api/internal/notify"
	"github.com/noah-isme/absensi-qr-api/pkg/config"
	"github.com/noah-isme/absensi-qr-api/pkg/jobs"
)

type scanNotification struct {
	Target  string
	Message string
}

// NotificationService dispatches guardian WhatsApp messages on a worker
// queue so delivery never sits on the scan path. Delivery gets one
// attempt; a failure is logged and dropped.
type NotificationService struct {
	queue    *jobs.Queue
	notifier notify.Notifier
	logger   *zap.Logger
	enabled  bool
}

// NewNotificationService constructs the dispatcher. A nil notifier or a
// disabled config turns every notification into a no-op.
func NewNotificationService(notifier notify.Notifier, cfg config.WhatsAppConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		notifier: notifier,
		logger:   logger,
		enabled:  cfg.Enabled && notifier != nil,
	}
	if !s.enabled {
		return s
	}
	s.queue = jobs.NewQueue("whatsapp", s.handle, jobs.Config{
		Workers: cfg.Workers,
		Buffer:  cfg.Buffer,
		Logger:  logger,
	})
	return s
}

// Start begins queue consumption.
func (s *NotificationService) Start(ctx context.Context) {
	if s.queue != nil {
		s.queue.Start(ctx)
	}
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

func (s *NotificationService) handle(ctx context.Context, task jobs.Task) error {
	n, ok := task.Payload.(scanNotification)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("task_id", task.ID))
		return nil
	}
	if err := s.notifier.Send(ctx, n.Target, n.Message); err != nil {
		s.logger.Warn("whatsapp delivery failed",
			zap.String("target", notify.NormalizePhone(n.Target)), zap.Error(err))
	}
	return nil
}

// NotifyScan queues the guardian message for a stored record. Missing
// phone numbers and queue pressure never fail the scan.
func (s *NotificationService) NotifyScan(person models.Person, record *models.AttendanceRecord) {
	if !s.enabled || person.GuardianPhone == nil || *person.GuardianPhone == "" {
		return
	}
	verb := "masuk"
	if record.Kind == models.AttendanceKindExit {
		verb = "pulang"
	}
	message := fmt.Sprintf("Ananda %s telah melakukan absen %s pada %s pukul %s dengan status %s.",
		person.Name, verb, record.Date.Format("02-01-2006"), record.Time.Short(), record.Status)

	err := s.queue.Enqueue(jobs.Task{
		ID:      uuid.NewString(),
		Kind:    "scan-notification",
		Payload: scanNotification{Target: *person.GuardianPhone, Message: message},
	})
	if err != nil {
		s.logger.Warn("failed to queue notification", zap.String("person", person.Code), zap.Error(err))
	}
}
