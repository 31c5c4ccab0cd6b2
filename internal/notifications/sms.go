package notifications

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender implements SMSSender using Twilio.
type TwilioSender struct {
	client      *twilio.RestClient
	phoneNumber string
}

func NewTwilioSender(accountSID, authToken, phoneNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, phoneNumber: phoneNumber}
}

func (s *TwilioSender) Send(ctx context.Context, msg *SMSMessage) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(s.phoneNumber)
	params.SetBody(msg.Body)

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("sending SMS via Twilio: %w", err)
	}
	return nil
}

// MockSMSSender records messages for tests.
type MockSMSSender struct {
	Sent []SMSMessage
}

func (m *MockSMSSender) Send(ctx context.Context, msg *SMSMessage) error {
	m.Sent = append(m.Sent, *msg)
	return nil
}
