package usecase

import (
	"context"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"
	"safarsathi-service/templates"
)

var ErrEmailFailed = apperror.New(apperror.KindUpstream, "email_failed", "Failed to send email.")

// Notifier renders and delivers the service's outbound emails
type Notifier struct {
	mailer      repository.MailRepository
	renderer    *templates.Renderer
	metrics     *metrics.Metrics
	frontendURL string
	logger      logger.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(
	mailer repository.MailRepository,
	renderer *templates.Renderer,
	metrics *metrics.Metrics,
	frontendURL string,
	logger logger.Logger,
) *Notifier {
	return &Notifier{
		mailer:      mailer,
		renderer:    renderer,
		metrics:     metrics,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// SendVerification emails a one-time registration code
func (n *Notifier) SendVerification(ctx context.Context, to, code string, ttl time.Duration) error {
	mail, err := n.renderer.VerificationMail(to, code, ttl)
	return n.deliver(ctx, templates.Verification, mail, err)
}

// SendWelcome greets a newly registered actor
func (n *Notifier) SendWelcome(ctx context.Context, actor *entity.Actor) error {
	mail, err := n.renderer.WelcomeMail(actor.Email, actor.DisplayName(), n.frontendURL)
	return n.deliver(ctx, templates.Welcome, mail, err)
}

// SendLocationStatus tells a requester the outcome of their location request
func (n *Notifier) SendLocationStatus(ctx context.Context, actor *entity.Actor, status entity.ReviewStatus) error {
	mail, err := n.renderer.LocationStatusMail(actor.Email, actor.DisplayName(), status)
	return n.deliver(ctx, templates.LocationStatus, mail, err)
}

func (n *Notifier) deliver(ctx context.Context, template string, mail *entity.Mail, renderErr error) error {
	err := renderErr
	if err == nil {
		err = n.mailer.Send(ctx, mail)
	}
	if err != nil {
		n.metrics.NotificationFailures.WithLabelValues(template).Inc()
		n.logger.Error("Failed to deliver email", "template", template, "error", err)
		return ErrEmailFailed.Wrap(err)
	}

	n.logger.Debug("Email delivered", "template", template, "to", mail.To)
	return nil
}
