package services

import (
	"context"
	"fmt"
	"log"

	"visitordesk/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendVisitorPending sends the new-visitor notification to a staff member
// using the "visitor_pending" template. The rendered body carries the
// token-bearing approve/reject links.
func (s *emailService) SendVisitorPending(ctx context.Context, data *domain.VisitorPendingEmailData) error {
	if data == nil {
		return fmt.Errorf("visitor pending email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("visitor_pending", data)
	if err != nil {
		return fmt.Errorf("failed to render visitor_pending template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send visitor pending email: %w", err)
	}
	log.Printf("[EMAIL] Visitor pending notification sent to %s", data.Email)
	return nil
}

func (s *emailService) SendVisitorApproved(ctx context.Context, data *domain.VisitorResultEmailData) error {
	return s.sendResult("visitor_approved", data)
}

func (s *emailService) SendVisitorRejected(ctx context.Context, data *domain.VisitorResultEmailData) error {
	return s.sendResult("visitor_rejected", data)
}

func (s *emailService) SendVisitorRescheduled(ctx context.Context, data *domain.VisitorResultEmailData) error {
	return s.sendResult("visitor_rescheduled", data)
}

func (s *emailService) sendResult(templateName string, data *domain.VisitorResultEmailData) error {
	if data == nil {
		return fmt.Errorf("%s email data is nil", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s email sent to %s", templateName, data.Email)
	return nil
}
