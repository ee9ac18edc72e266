package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/sangkips/lexdesk-api/pkg/logger"
)

var ErrNoRecipients = errors.New("email has no recipients")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
}

// Attachment is a file sent along with a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is an HTML email with optional attachments
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Enabled reports whether an SMTP host is configured. Without one, messages
// are logged and dropped.
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != ""
}

// Send delivers msg over SMTP.
func (s *EmailService) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Enabled() {
		logger.FromContext(ctx).Warn().Strs("to", msg.To).Str("subject", msg.Subject).Msg("smtp not configured, email dropped")
		return nil
	}

	raw, err := s.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}
	return s.sendEmail(msg.To, raw)
}

// SendPasswordResetEmail sends a password reset email
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.config.FrontendURL,
		url.QueryEscape(token),
		url.QueryEscape(toEmail),
	)

	htmlContent, err := render(passwordResetTemplate, map[string]string{
		"Email":    toEmail,
		"ResetURL": resetURL,
		"AppName":  appName,
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.Send(ctx, Message{
		To:      []string{toEmail},
		Subject: "Restablece tu contraseña - " + appName,
		HTML:    htmlContent,
	})
}

// SendDocument mails a generated document (quote, invoice, receipt) to a client.
func (s *EmailService) SendDocument(ctx context.Context, to []string, subject, greeting, body string, files ...Attachment) error {
	htmlContent, err := render(documentTemplate, map[string]string{
		"Greeting": greeting,
		"Body":     body,
		"AppName":  s.fromName(),
	})
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return s.Send(ctx, Message{To: to, Subject: subject, HTML: htmlContent, Attachments: files})
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to []string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) fromName() string {
	if s.config.FromName != "" {
		return s.config.FromName
	}
	return appName
}

// buildMessage builds a multipart/mixed message: the HTML body first, then
// one base64 part per attachment.
func (s *EmailService) buildMessage(msg Message) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	var head strings.Builder
	fmt.Fprintf(&head, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.fromName()), s.config.FromEmail)
	fmt.Fprintf(&head, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&head, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	head.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&head, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	html, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="UTF-8"`},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(html, []byte(msg.HTML)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return append([]byte(head.String()), body.Bytes()...), nil
}

// writeBase64 wraps encoded lines at 76 characters.
func writeBase64(w interface{ Write([]byte) (int, error) }, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := w.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := w.Write([]byte(encoded + "\r\n"))
	return err
}

func render(tpl string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
