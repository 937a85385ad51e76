package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/ummachristians-netizen/umma-christians/internal/config"
)

// Config holds mail provider settings.
type Config struct {
	Enable    bool
	Host      string
	Port      int
	User      string
	Pass      string
	From      string
	ReplyTo   string
	UseResend bool
	ResendKey string
}

// FromAppConfig maps the YAML mail section.
func FromAppConfig(c config.MailConfig) Config {
	return Config{
		Enable:    c.Enable,
		Host:      c.Host,
		Port:      c.Port,
		User:      c.User,
		Pass:      c.Pass,
		From:      c.From,
		ReplyTo:   c.ReplyTo,
		UseResend: c.UseResend,
		ResendKey: c.ResendKey,
	}
}

// Message is a single email to send.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender sends emails via SMTP or Resend.
type Sender struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Sender {
	return &Sender{cfg: cfg, client: &http.Client{Timeout: 15 * time.Second}}
}

// Enabled reports whether Send will actually deliver.
func (s *Sender) Enabled() bool { return s != nil && s.cfg.Enable }

// Send dispatches an email. Uses Resend if configured, otherwise SMTP.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.Enabled() {
		return nil
	}
	if s.cfg.UseResend && s.cfg.ResendKey != "" {
		return s.sendResend(ctx, msg)
	}
	return s.sendSMTP(msg)
}

func (s *Sender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

func (s *Sender) sendSMTP(msg Message) error {
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, port)
	from := s.from()

	var body bytes.Buffer
	body.WriteString("MIME-Version: 1.0\r\n")
	body.WriteString(fmt.Sprintf("From: %s\r\n", from))
	body.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	body.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	if s.cfg.ReplyTo != "" {
		body.WriteString(fmt.Sprintf("Reply-To: %s\r\n", s.cfg.ReplyTo))
	}
	body.WriteString("\r\n")
	body.WriteString(msg.HTML)

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	return smtp.SendMail(addr, auth, from, msg.To, body.Bytes())
}

func (s *Sender) sendResend(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]interface{}{
		"from":    s.from(),
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.ResendKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return fmt.Errorf("resend error %d: %s", resp.StatusCode, errResp.Message)
	}
	return nil
}

var passwordResetTpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background:#f5f7fb;padding:20px">
<div style="max-width:560px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#0f4c81">Reset your office password</h2>
  <p>Someone asked to reset the password for {{.Email}}. Use the button below within one hour.</p>
  <p style="margin-top:24px">
    <a href="{{.Link}}" style="background:#0f4c81;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Choose a new password</a>
  </p>
  <p style="color:#999;font-size:12px">If you did not ask for this, ignore this email.</p>
</div>
</body>
</html>`))

// PasswordReset renders the reset email for email pointing at link.
func PasswordReset(email, link string) (Message, error) {
	var buf bytes.Buffer
	if err := passwordResetTpl.Execute(&buf, struct{ Email, Link string }{email, link}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{email},
		Subject: "Reset your office password",
		HTML:    buf.String(),
	}, nil
}
