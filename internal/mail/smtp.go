package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/google/uuid"
	"github.com/tsplhq/registration-api/internal/config"
)

// SMTP reply codes the dispatcher treats as rate limiting. 421 is the
// classic "too many messages" deferral; 450/452 are mailbox/quota
// throttling responses.
var rateLimitCodes = map[int]bool{
	421: true,
	450: true,
	452: true,
}

// SMTPMailer delivers messages over SMTP, opening a fresh connection for
// every message so no connection goes stale between the long pauses the
// batch dispatcher introduces.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string

	dialTimeout time.Duration
}

// NewSMTPMailer creates a mailer from SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:        cfg.Host,
		port:        cfg.Port,
		username:    cfg.Username,
		password:    cfg.Password,
		from:        cfg.From,
		dialTimeout: 30 * time.Second,
	}
}

// Ensure SMTPMailer implements the Mailer interface.
var _ Mailer = (*SMTPMailer)(nil)

// Send delivers one message as multipart/alternative (text + HTML) over a
// fresh SMTP connection. Errors are classified into the package's typed
// errors so the batch engine can choose a retry policy.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	payload := m.buildMessage(to, subject, htmlBody, textBody)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	dialer := &net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return &ConnectionError{Err: err}
	}
	defer func() { _ = client.Close() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return classifySMTPError(err)
		}
	}

	if m.username != "" && m.password != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return classifySMTPError(err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return classifySMTPError(err)
	}
	if err := client.Rcpt(to); err != nil {
		return classifySMTPError(err)
	}

	w, err := client.Data()
	if err != nil {
		return classifySMTPError(err)
	}
	if _, err := w.Write(payload); err != nil {
		return classifySMTPError(err)
	}
	if err := w.Close(); err != nil {
		return classifySMTPError(err)
	}

	return client.Quit()
}

// buildMessage assembles a multipart/alternative MIME message.
func (m *SMTPMailer) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := fmt.Sprintf("b-%s", uuid.New().String())

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	buf.WriteString(fmt.Sprintf("Message-ID: <%s@%s>\r\n", uuid.New().String(), m.host))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(textBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(htmlBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return buf.Bytes()
}

// classifySMTPError converts raw SMTP/transport failures into the package's
// typed errors: rate-limit reply codes become RateLimitError, other protocol
// replies become SendError, everything else is a ConnectionError.
func classifySMTPError(err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		if rateLimitCodes[protoErr.Code] {
			return &RateLimitError{Code: protoErr.Code, Msg: protoErr.Msg}
		}
		return &SendError{Code: protoErr.Code, Msg: protoErr.Msg}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ConnectionError{Err: err}
	}

	return &ConnectionError{Err: err}
}
