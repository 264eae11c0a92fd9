package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypePaymentReminders scans recurring payment instructions for upcoming due dates.
	TaskTypePaymentReminders = "finance:payment-reminders"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	if payload.To == "" {
		return nil, fmt.Errorf("jobs: email recipient required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// PasswordResetEmail renders the reset email for name.
func PasswordResetEmail(to, name, resetBaseURL, token string) SendEmailPayload {
	link := strings.TrimRight(resetBaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	return SendEmailPayload{
		To:      to,
		Subject: "Reset your Tabdeel Pulse password",
		Body: fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in one hour.\n\n%s\n\nIf you did not ask for this, you can ignore this email.\n",
			name, link),
	}
}

// Mailer delivers rendered emails.
type Mailer interface {
	Send(ctx context.Context, from string, msg SendEmailPayload) error
}

// LogMailer writes emails to the log instead of delivering them.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(ctx context.Context, from string, msg SendEmailPayload) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email sent", slog.String("from", from), slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks.
func NewSendEmailHandler(mailer Mailer, from string) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("jobs: decode email payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.To == "" {
			return fmt.Errorf("jobs: email without recipient: %w", asynq.SkipRetry)
		}
		return mailer.Send(ctx, from, payload)
	}
}
