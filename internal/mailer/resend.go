package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a ResendSender sending as from.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	resp, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
		Tags:    []resend.Tag{{Name: "category", Value: "financial_report"}},
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return resp.Id, nil
}

// NewSender returns a ResendSender when apiKey is set and a LogSender
// otherwise.
func NewSender(apiKey, from string, log *zap.SugaredLogger) Sender {
	if apiKey == "" {
		log.Warn("RESEND_API_KEY not set, report emails will only be logged")
		return NewLogSender(log)
	}
	return NewResendSender(apiKey, from)
}
