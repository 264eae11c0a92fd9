package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// DefaultReminderLeadDays is how far ahead of a due date reminders are created.
const DefaultReminderLeadDays = 3

// PaymentReminderPayload configures one reminder scan.
type PaymentReminderPayload struct {
	LeadDays int `json:"lead_days"`
}

// ReminderScanner creates reminders for recurring payments falling due within
// leadDays of now and reports how many were created.
type ReminderScanner interface {
	ScheduleReminders(ctx context.Context, now time.Time, leadDays int) (int, error)
}

// NewPaymentReminderTask constructs the reminder scan task.
func NewPaymentReminderTask(leadDays int) (*asynq.Task, error) {
	if leadDays <= 0 {
		leadDays = DefaultReminderLeadDays
	}
	data, err := json.Marshal(PaymentReminderPayload{LeadDays: leadDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePaymentReminders, data), nil
}

// NewPaymentReminderHandler processes TaskTypePaymentReminders tasks.
func NewPaymentReminderHandler(scanner ReminderScanner, logger *slog.Logger, now func() time.Time) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PaymentReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("jobs: decode reminder payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.LeadDays <= 0 {
			payload.LeadDays = DefaultReminderLeadDays
		}
		created, err := scanner.ScheduleReminders(ctx, now(), payload.LeadDays)
		if err != nil {
			logger.Error("payment reminders", slog.Any("error", err))
			return err
		}
		logger.Info("payment reminders scheduled", slog.Int("created", created), slog.String("job", TaskTypePaymentReminders))
		return nil
	}
}

// PaymentReminderCron registers the daily reminder scan.
func PaymentReminderCron(spec string, leadDays int) (CronRegistration, error) {
	task, err := NewPaymentReminderTask(leadDays)
	if err != nil {
		return CronRegistration{}, err
	}
	return CronRegistration{
		Spec:    spec,
		Task:    task,
		Options: []asynq.Option{asynq.Queue(QueueDefault), asynq.Unique(time.Hour)},
	}, nil
}
