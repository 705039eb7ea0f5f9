package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"safarsathi-service/internal/domain/entity"
)

// Template names, also used as metric labels
const (
	Verification   = "verification"
	Welcome        = "welcome"
	LocationStatus = "location_status"
)

const layout = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 0; padding: 0; background-color: #f4f4f4; }
    .container { max-width: 600px; margin: 30px auto; background: #ffffff; border-radius: 8px; overflow: hidden; border: 1px solid #ddd; }
    .header { background-color: {{.Accent}}; color: white; padding: 20px; text-align: center; font-size: 26px; font-weight: bold; }
    .content { padding: 25px; color: #333; line-height: 1.8; }
    .code { display: block; margin: 20px 0; font-size: 22px; color: #4CAF50; background: #e8f5e9; border: 1px dashed #4CAF50; padding: 10px; text-align: center; border-radius: 5px; font-weight: bold; letter-spacing: 2px; }
    .footer { background-color: #f4f4f4; padding: 15px; text-align: center; color: #777; font-size: 12px; border-top: 1px solid #ddd; }
    p { margin: 0 0 15px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">{{.Title}}</div>
    <div class="content">{{template "content" .}}</div>
    <div class="footer"><p>&copy; {{.Year}} SafarSathi. All rights reserved.</p></div>
  </div>
</body>
</html>`

var contents = map[string]string{
	Verification: `
      <p>Hello,</p>
      <p>Thank you for signing up! Please confirm your email address by entering the code below:</p>
      <span class="code">{{.Code}}</span>
      <p>The code expires in {{.TTLMinutes}} minutes. If you did not create an account, no further action is required.</p>`,
	Welcome: `
      <p>Hello {{.Name}},</p>
      <p>We're thrilled to have you join SafarSathi. Start exploring packages curated by our team.</p>
      {{if .Link}}<p><a href="{{.Link}}">Get started</a></p>{{end}}`,
	LocationStatus: `
      <p>Dear {{.Name}},</p>
      <p>Your location request status has been updated to <strong>{{.Status}}</strong>.</p>
      <p>Thank you for helping us grow our catalog.</p>`,
}

// Renderer builds outbound mails from the parsed templates
type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

// NewRenderer parses every template once
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(contents))
	for name, content := range contents {
		t, err := template.New(name).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout: %w", err)
		}
		if _, err := t.New("content").Parse(content); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, now: time.Now}, nil
}

// MustNewRenderer is like NewRenderer but panics on a template error
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

type page struct {
	Title      string
	Accent     string
	Year       int
	Code       string
	TTLMinutes int
	Name       string
	Status     string
	Link       string
}

func (r *Renderer) render(name string, p page) (string, error) {
	p.Year = r.now().Year()
	if p.Accent == "" {
		p.Accent = "#4CAF50"
	}

	var buf bytes.Buffer
	if err := r.pages[name].Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}

// VerificationMail carries a one-time registration code
func (r *Renderer) VerificationMail(to, code string, ttl time.Duration) (*entity.Mail, error) {
	html, err := r.render(Verification, page{Title: "Verify Your Email", Code: code, TTLMinutes: int(ttl.Minutes())})
	if err != nil {
		return nil, err
	}
	return &entity.Mail{
		To:       to,
		Subject:  "Verify Your Email",
		Text:     fmt.Sprintf("Your OTP is: %s", code),
		HTML:     html,
		Template: Verification,
	}, nil
}

// WelcomeMail greets a newly registered customer
func (r *Renderer) WelcomeMail(to, name, link string) (*entity.Mail, error) {
	html, err := r.render(Welcome, page{Title: "Welcome to SafarSathi", Name: name, Link: link})
	if err != nil {
		return nil, err
	}
	return &entity.Mail{
		To:       to,
		Subject:  "Welcome Email",
		Text:     fmt.Sprintf("Welcome to SafarSathi, %s!", name),
		HTML:     html,
		Template: Welcome,
	}, nil
}

// LocationStatusMail tells a requester their location request was reviewed
func (r *Renderer) LocationStatusMail(to, name string, status entity.ReviewStatus) (*entity.Mail, error) {
	accent := "#4CAF50"
	if status == entity.StatusRejected {
		accent = "#E53935"
	}

	html, err := r.render(LocationStatus, page{Title: "Location Request Update", Accent: accent, Name: name, Status: string(status)})
	if err != nil {
		return nil, err
	}
	return &entity.Mail{
		To:       to,
		Subject:  fmt.Sprintf("Location Request Status Updated to %s", status),
		Text:     fmt.Sprintf("Dear %s, Your location request status has been updated to %s. Thank you!", name, status),
		HTML:     html,
		Template: LocationStatus,
	}, nil
}
