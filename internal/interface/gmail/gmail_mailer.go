package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer implements the MailRepository interface through the Gmail API
type GmailMailer struct {
	gmailService *gmail.Service
	from         string
	logger       logger.Logger
}

// NewGmailMailer creates a new Gmail mailer sending as from
func NewGmailMailer(ctx context.Context, tokenSource oauth2.TokenSource, from string, logger logger.Logger) (*GmailMailer, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailMailer{
		gmailService: service,
		from:         from,
		logger:       logger,
	}, nil
}

// Send delivers mail as a multipart/alternative message
func (m *GmailMailer) Send(ctx context.Context, mail *entity.Mail) error {
	raw, err := buildMessage(m.from, mail)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := m.gmailService.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		m.logger.Error("Failed to send email", "to", mail.To, "template", mail.Template, "error", err)
		return err
	}

	m.logger.Info("Email sent", "to", mail.To, "template", mail.Template, "messageID", sent.Id)
	return nil
}

func buildMessage(from string, mail *entity.Mail) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", mail.Text},
		{"text/html; charset=UTF-8", mail.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		w, err := writer.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", mail.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", mail.Subject))
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}
