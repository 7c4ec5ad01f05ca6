package service

import (
	"fmt"
	"log/slog"

	"github.com/nimbusdrive/nimbus/internal/model"
	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional mail through Resend. In development, or
// when no API key is configured, messages are logged instead of sent.
type EmailService struct {
	client  *resend.Client
	from    string
	appName string
	appURL  string
	logOnly bool
}

func NewEmailService(apiKey, from, appName, appURL string, isDevelopment bool) *EmailService {
	logOnly := isDevelopment || apiKey == ""

	var client *resend.Client
	if !logOnly {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:  client,
		from:    from,
		appName: appName,
		appURL:  appURL,
		logOnly: logOnly,
	}
}

// SendWelcome greets a new user. Failures are logged, never surfaced; signup
// must not fail because mail delivery did.
func (s *EmailService) SendWelcome(user *model.User) {
	subject := fmt.Sprintf("Welcome to %s", s.appName)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your %s drive is ready. Upload your first file at <a href="%s">%s</a>.</p>`,
		user.Name, s.appName, s.appURL, s.appURL,
	)

	if s.logOnly {
		slog.Info("email (log mode)", "to", user.Email, "subject", subject)
		return
	}

	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{user.Email},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		slog.Error("failed to send welcome email", "error", err, "to", user.Email)
	}
}
