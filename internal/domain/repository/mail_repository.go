package repository

import (
	"context"

	"safarsathi-service/internal/domain/entity"
)

// MailRepository delivers outbound email
type MailRepository interface {
	Send(ctx context.Context, mail *entity.Mail) error
}
