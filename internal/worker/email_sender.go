package worker

import (
	"context"
	"fmt"

	"github.com/recordhub/backend/internal/config"
	emailProvider "github.com/recordhub/backend/pkg/email"
)

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type welcomeEmailInput struct {
	Email string
}

func (s *emailSender) SendWelcomeEmail(_ context.Context, email string) error {
	subject := "Welcome to Recordhub"

	templateInput := welcomeEmailInput{email}
	sendInput := emailProvider.SendEmailInput{Subject: subject, To: email}

	if err := sendInput.GenerateBodyFromHTML(s.config.Templates.Welcome, templateInput); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
