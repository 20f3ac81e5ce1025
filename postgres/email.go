package postgres

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avaldeso/machina"
	"github.com/keighl/postmark"
)

// Compile-time interface check
var _ machina.EmailService = (*MockEmailService)(nil)
var _ machina.EmailService = (*PostmarkEmailService)(nil)

// NewEmailService creates an email service based on the provider configuration.
func NewEmailService(logger *slog.Logger, cfg machina.EmailConfig) machina.EmailService {
	switch cfg.Provider {
	case "postmark":
		return &PostmarkEmailService{
			client: postmark.NewClient(cfg.PostmarkServerToken, ""),
			logger: logger,
			cfg:    cfg,
		}
	default:
		return &MockEmailService{logger: logger, cfg: cfg}
	}
}

// MockEmailService is a mock implementation that logs instead of sending emails.
type MockEmailService struct {
	logger *slog.Logger
	cfg    machina.EmailConfig
}

// SendWelcomeEmail logs the welcome email instead of sending it.
func (s *MockEmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	s.logger.Info("MOCK EMAIL: Welcome email",
		slog.String("to", to),
		slog.String("name", name))
	return nil
}

// SendReportEmail logs the report email instead of sending it.
func (s *MockEmailService) SendReportEmail(ctx context.Context, to []string, subject, message string, attachment *machina.Attachment) error {
	attrs := []any{
		slog.Any("to", to),
		slog.String("subject", subject),
	}
	if attachment != nil {
		attrs = append(attrs,
			slog.String("attachment", attachment.Name),
			slog.Int("attachment_size", len(attachment.Content)))
	}
	s.logger.Info("MOCK EMAIL: Inspection report", attrs...)
	return nil
}

// PostmarkEmailService sends emails via Postmark.
type PostmarkEmailService struct {
	client *postmark.Client
	logger *slog.Logger
	cfg    machina.EmailConfig
}

func (s *PostmarkEmailService) from() string {
	return fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromAddress)
}

// SendWelcomeEmail sends a welcome email via Postmark.
func (s *PostmarkEmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	email := postmark.Email{
		From:     s.from(),
		To:       to,
		Subject:  "Welcome to Machina",
		TextBody: fmt.Sprintf("Hello %s,\n\nYour account has been created. You can now log in and start filing inspection reports.", name),
	}

	if _, err := s.client.SendEmail(email); err != nil {
		return fmt.Errorf("sending welcome email: %w", err)
	}

	s.logger.Info("welcome email sent", slog.String("to", to))
	return nil
}

// SendReportEmail sends an inspection report with its PDF attached.
func (s *PostmarkEmailService) SendReportEmail(ctx context.Context, to []string, subject, message string, attachment *machina.Attachment) error {
	if len(to) == 0 {
		return machina.Invalid("At least one recipient is required")
	}

	email := postmark.Email{
		From:     s.from(),
		To:       strings.Join(to, ","),
		Subject:  subject,
		TextBody: message,
	}
	if attachment != nil {
		email.Attachments = []postmark.Attachment{{
			Name:        attachment.Name,
			Content:     base64.StdEncoding.EncodeToString(attachment.Content),
			ContentType: attachment.ContentType,
		}}
	}

	if _, err := s.client.SendEmail(email); err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}

	s.logger.Info("report email sent",
		slog.Any("to", to),
		slog.String("subject", subject))
	return nil
}
