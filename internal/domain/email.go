package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// VisitorPendingEmailData holds data for the new-visitor notification sent
// to staff. The action URLs embed the day-scoped capability token, so the
// recipient can approve or reject without logging in.
type VisitorPendingEmailData struct {
	Email         string
	StaffName     string
	VisitorName   string
	VisitorEmail  string
	MeetWith      string
	Purpose       string
	ScheduledAt   time.Time
	ApproveURL    string
	RejectURL     string
	RejectFormURL string
}

// VisitorResultEmailData holds data for the approval-result emails sent to
// the visitor (approved, rejected, rescheduled).
type VisitorResultEmailData struct {
	Email       string
	VisitorName string
	Reason      string
	ScheduledAt time.Time
}

// EmailService defines the contract for sending domain-level emails.
// Implementations must not block callers beyond their own timeouts;
// failures are reported as errors and handled by the caller's cascade.
type EmailService interface {
	SendVisitorPending(ctx context.Context, data *VisitorPendingEmailData) error
	SendVisitorApproved(ctx context.Context, data *VisitorResultEmailData) error
	SendVisitorRejected(ctx context.Context, data *VisitorResultEmailData) error
	SendVisitorRescheduled(ctx context.Context, data *VisitorResultEmailData) error
}
