// Package mailer renders and delivers report emails.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finara/internal/models"
	"finara/internal/services"
)

// Message is a single outbound email.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a Message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ReportMailer sends monthly report emails through a Sender with a per-send
// deadline.
type ReportMailer struct {
	sender  Sender
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewReportMailer creates a ReportMailer. A non-positive timeout disables
// the per-send deadline.
func NewReportMailer(sender Sender, timeout time.Duration, log *zap.SugaredLogger) *ReportMailer {
	return &ReportMailer{sender: sender, timeout: timeout, log: log}
}

// SendReport renders report and delivers it to the report's owner.
func (m *ReportMailer) SendReport(ctx context.Context, report *services.ReportSummary, frequency models.ReportFrequency) error {
	if report == nil {
		return errors.New("mailer: nil report")
	}
	if report.UserEmail == "" {
		return errors.New("mailer: report has no recipient")
	}

	msg, err := RenderReport(report, frequency)
	if err != nil {
		return err
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	id, err := m.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send report email to %s: %w", report.UserEmail, err)
	}

	m.log.Infow("report email sent", "to", report.UserEmail, "message_id", id, "period", report.PeriodLabel())
	return nil
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no email provider is configured.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *zap.SugaredLogger) *LogSender {
	return &LogSender{log: log}
}

// Send logs msg and reports success.
func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	s.log.Infow("email delivery disabled, logging message", "to", msg.To, "subject", msg.Subject)
	return "logged", nil
}
