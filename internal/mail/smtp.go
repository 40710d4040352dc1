package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoRecipients is returned for a message without a To address.
var ErrNoRecipients = errors.New("mail has no recipients")

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, m *Message) error
}

// SMTPSender delivers through an SMTP relay with STARTTLS and PLAIN auth.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender creates a new SMTPSender. Auth is skipped when user is empty.
func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		from: from,
	}
	if user != "" {
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s
}

// Send builds the MIME body and hands it to the relay.
func (s *SMTPSender) Send(ctx context.Context, m *Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	raw, err := Build(s.from, m, time.Now())
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- smtp.SendMail(s.addr, s.auth, s.from, m.To, raw) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender writes messages to the log instead of sending them. Used when
// no SMTP relay is configured.
type LogSender struct {
	log zerolog.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "mail_log").Logger()}
}

// Send logs the envelope.
func (s *LogSender) Send(_ context.Context, m *Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	s.log.Info().
		Strs("to", m.To).
		Str("subject", m.Subject).
		Int("attachments", len(m.Attachments)).
		Msg("SMTP disabled, mail not sent")
	return nil
}

// Build renders m as an RFC 5322 message with a multipart/mixed body.
func Build(from string, m *Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	hdr("From", from)
	hdr("To", strings.Join(m.To, ", "))
	hdr("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	hdr("Date", now.Format(time.RFC1123Z))
	hdr("Message-ID", "<"+uuid.New().String()+"@recruit>")
	hdr("MIME-Version", "1.0")
	hdr("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	if m.Text != "" || m.HTML == "" {
		if err := writePart(mw, "text/plain; charset=utf-8", m.Text); err != nil {
			return nil, err
		}
	}
	if m.HTML != "" {
		if err := writePart(mw, "text/html; charset=utf-8", m.HTML); err != nil {
			return nil, err
		}
	}

	for _, a := range m.Attachments {
		data, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		name := a.Filename
		if name == "" {
			name = filepath.Base(a.Path)
		}
		ctype := mime.TypeByExtension(filepath.Ext(name))
		if ctype == "" {
			ctype = "application/octet-stream"
		}

		h := textproto.MIMEHeader{}
		h.Set("Content-Type", ctype)
		h.Set("Content-Transfer-Encoding", "base64")
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		pw, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if err := writeBase64(pw, data); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(mw *multipart.Writer, ctype, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", ctype)
	h.Set("Content-Transfer-Encoding", "base64")
	pw, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	return writeBase64(pw, []byte(body))
}

// writeBase64 wraps encoded output at 76 columns.
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := w.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := w.Write([]byte(enc + "\r\n"))
	return err
}
