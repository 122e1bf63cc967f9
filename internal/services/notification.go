package services

import (
	"context"
	"fmt"
	"log"

	"examscheduler/internal/domain"
)

type notificationService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewNotificationService returns a NotificationService that renders and sends
// supervisor assignment notices through the given Mailer.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.NotificationService {
	return &notificationService{mailer: mailer, renderer: renderer}
}

// SendAssignmentNotice emails a supervisor their newly assigned sessions
// using the "assignment_notice" template.
func (s *notificationService) SendAssignmentNotice(ctx context.Context, data *domain.AssignmentNoticeData) error {
	if data == nil {
		return fmt.Errorf("assignment notice data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("assignment_notice", data)
	if err != nil {
		return fmt.Errorf("failed to render assignment_notice template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send assignment notice: %w", err)
	}
	log.Printf("[EMAIL] Assignment notice sent to %s", data.Email)
	return nil
}
