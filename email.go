package machina

import "context"

// EmailService defines operations for sending emails.
type EmailService interface {
	// SendWelcomeEmail sends a welcome email to a new user.
	SendWelcomeEmail(ctx context.Context, to, name string) error

	// SendReportEmail sends a rendered inspection report to recipients,
	// with the PDF attached.
	SendReportEmail(ctx context.Context, to []string, subject, message string, attachment *Attachment) error
}

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// EmailConfig holds configuration for email services.
type EmailConfig struct {
	// Provider is the email provider ("mock" or "postmark").
	Provider string

	// FromAddress is the sender email address.
	FromAddress string

	// FromName is the sender display name.
	FromName string

	// Postmark-specific configuration
	PostmarkServerToken string
}
