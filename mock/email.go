package mock

import (
	"context"
	"sync"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.EmailService = (*EmailService)(nil)

// SentWelcomeEmail records one SendWelcomeEmail call for assertions.
type SentWelcomeEmail struct {
	To   string
	Name string
}

// SentReportEmail records one SendReportEmail call for assertions.
type SentReportEmail struct {
	To         []string
	Subject    string
	Message    string
	Attachment *machina.Attachment
}

// EmailService is a mock implementation of machina.EmailService.
// It records sent messages for inspection in tests.
type EmailService struct {
	SendWelcomeEmailFn func(ctx context.Context, to, name string) error
	SendReportEmailFn  func(ctx context.Context, to []string, subject, message string, attachment *machina.Attachment) error

	mu            sync.Mutex
	WelcomeEmails []SentWelcomeEmail
	ReportEmails  []SentReportEmail
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	if s.SendWelcomeEmailFn != nil {
		return s.SendWelcomeEmailFn(ctx, to, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.WelcomeEmails = append(s.WelcomeEmails, SentWelcomeEmail{To: to, Name: name})
	return nil
}

func (s *EmailService) SendReportEmail(ctx context.Context, to []string, subject, message string, attachment *machina.Attachment) error {
	if s.SendReportEmailFn != nil {
		return s.SendReportEmailFn(ctx, to, subject, message, attachment)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReportEmails = append(s.ReportEmails, SentReportEmail{
		To:         to,
		Subject:    subject,
		Message:    message,
		Attachment: attachment,
	})
	return nil
}
