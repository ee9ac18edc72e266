package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	to   []string
	raw  []byte
}

func newTestService(c *captured) *EmailService {
	s := NewEmailService(EmailConfig{SMTPHost: "smtp.test", SMTPPort: 587, FromEmail: "noreply@lexdesk.mx", FromName: "Despacho", FrontendURL: "https://app.lexdesk.mx"})
	s.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		c.addr, c.to, c.raw = addr, to, msg
		return nil
	}
	return s
}

func TestSend_WithAttachment(t *testing.T) {
	var c captured
	s := newTestService(&c)

	err := s.SendDocument(context.Background(), []string{"cliente@acme.mx"}, "Cotización COT-202610-0001",
		"Estimado cliente", "Adjuntamos su cotización.",
		Attachment{Filename: "COT-202610-0001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3 test")})
	require.NoError(t, err)
	assert.Equal(t, "smtp.test:587", c.addr)
	assert.Equal(t, []string{"cliente@acme.mx"}, c.to)

	msg, err := mail.ReadMessage(bytes.NewReader(c.raw))
	require.NoError(t, err)
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Cotización COT-202610-0001", subject)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	r := multipart.NewReader(msg.Body, params["boundary"])
	htmlPart, err := r.NextPart()
	require.NoError(t, err)
	assert.Contains(t, htmlPart.Header.Get("Content-Type"), "text/html")

	file, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "COT-202610-0001.pdf", file.FileName())
	encoded, err := io.ReadAll(file)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 test", string(decoded))

	_, err = r.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSendPasswordResetEmail(t *testing.T) {
	var c captured
	s := newTestService(&c)
	require.NoError(t, s.SendPasswordResetEmail(context.Background(), "ana@despacho.mx", "tok123"))

	msg, err := mail.ReadMessage(bytes.NewReader(c.raw))
	require.NoError(t, err)
	_, params, _ := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	part, err := multipart.NewReader(msg.Body, params["boundary"]).NextPart()
	require.NoError(t, err)
	encoded, _ := io.ReadAll(part)
	html, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	require.NoError(t, err)
	assert.Contains(t, string(html), "https://app.lexdesk.mx/reset-password?token=tok123&amp;email=ana%40despacho.mx")
}

func TestSend_Guards(t *testing.T) {
	s := NewEmailService(EmailConfig{})
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipients)
	// no host configured: dropped without error
	assert.NoError(t, s.Send(context.Background(), Message{To: []string{"a@b.mx"}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: []string{"a@b.mx"}}), context.Canceled)
}
