package repository

import (
	"context"
	"fmt"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	mailStatusSent   = "SENT"
	mailStatusFailed = "FAILED"
	mailStatusLogged = "LOGGED"
)

type mailLog struct {
	ID          string    `bson:"_id"`
	To          string    `bson:"to"`
	Subject     string    `bson:"subject"`
	Template    string    `bson:"template"`
	Status      string    `bson:"status"`
	ErrorDetail string    `bson:"errorDetail,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// MongoMailLogRepository records every outbound mail in the emailLogs
// collection and delegates delivery to next.
type MongoMailLogRepository struct {
	collection *mongo.Collection
	next       repository.MailRepository
	logger     logger.Logger
}

// NewMongoMailLogRepository wraps next with a delivery log
func NewMongoMailLogRepository(db *mongo.Database, next repository.MailRepository, logger logger.Logger) repository.MailRepository {
	return &MongoMailLogRepository{
		collection: db.Collection(collMailLogs),
		next:       next,
		logger:     logger,
	}
}

// Send delivers the mail and records the outcome. A failure to write the log
// is only logged.
func (r *MongoMailLogRepository) Send(ctx context.Context, mail *entity.Mail) error {
	sendErr := r.next.Send(ctx, mail)

	record := mailLog{
		ID:        newID(),
		To:        mail.To,
		Subject:   mail.Subject,
		Template:  mail.Template,
		Status:    mailStatusSent,
		CreatedAt: time.Now(),
	}
	if sendErr != nil {
		record.Status = mailStatusFailed
		record.ErrorDetail = sendErr.Error()
	}
	if _, ok := r.next.(*LogMailRepository); ok && sendErr == nil {
		record.Status = mailStatusLogged
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		r.logger.Error("Failed to record email log", "to", mail.To, "template", mail.Template, "error", err)
	}
	return sendErr
}

// LogMailRepository writes mails to the log instead of sending them. It is
// used when no mail provider is configured.
type LogMailRepository struct {
	logger logger.Logger
}

func NewLogMailRepository(logger logger.Logger) *LogMailRepository {
	return &LogMailRepository{logger: logger}
}

func (r *LogMailRepository) Send(_ context.Context, mail *entity.Mail) error {
	if mail == nil || mail.To == "" {
		return fmt.Errorf("mail has no recipient")
	}
	r.logger.Info("Email not sent, no mail provider configured",
		"to", mail.To,
		"subject", mail.Subject,
		"template", mail.Template,
		"text", mail.Text)
	return nil
}
