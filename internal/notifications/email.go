package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender implements EmailSender using SendGrid.
type SendGridSender struct {
	apiKey   string
	from     string
	fromName string
}

func NewSendGridSender(apiKey, from, fromName string) *SendGridSender {
	return &SendGridSender{apiKey: apiKey, from: from, fromName: fromName}
}

func (s *SendGridSender) Send(ctx context.Context, msg *EmailMessage) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", msg.To)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, "<p>"+msg.Body+"</p>")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sending email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
	}
	return nil
}

// MockEmailSender records emails for tests.
type MockEmailSender struct {
	Sent []EmailMessage
}

func (m *MockEmailSender) Send(ctx context.Context, msg *EmailMessage) error {
	m.Sent = append(m.Sent, *msg)
	return nil
}
