package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/templui/coachflow/internal/model"
)

// Notifier tells a client that something new is waiting in the app.
// Delivery is best effort; callers log and swallow failures.
type Notifier interface {
	Notify(ctx context.Context, client *model.Client, title, body string) error
}

type NotificationService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewNotificationService(apiKey, fromEmail, appURL, appName string, isDev bool) *NotificationService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &NotificationService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *NotificationService) Notify(ctx context.Context, client *model.Client, title, body string) error {
	subject := notificationSubject(s.appName, title)

	if s.isDev {
		slog.Info("notification sent (dev mode)", "client_id", client.ID, "to", client.Email, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("notification service not configured (missing RESEND_API_KEY)")
	}

	if client.Email == "" {
		slog.Warn("notification skipped, client has no email", "client_id", client.ID)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{client.Email},
		Subject: subject,
		Text:    fmt.Sprintf("%s\n\nOpen %s to read it.", body, s.appURL),
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	slog.Info("notification sent", "client_id", client.ID, "to", client.Email)
	return nil
}

// notifyBestEffort logs delivery failures and never returns them.
func notifyBestEffort(ctx context.Context, n Notifier, client *model.Client, title, body string) {
	if n == nil {
		return
	}
	err := n.Notify(ctx, client, title, body)
	if err != nil {
		slog.Warn("client notification failed", "error", err, "client_id", client.ID)
	}
}
