package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"tourbook/internal/config"
	"tourbook/pkg/metrics"
	"tourbook/pkg/utils"
)

// IMailService is the notifier used by the auth flow. Every send error wraps
// utils.ErrDeliveryFailed; nothing is retried.
type IMailService interface {
	SendVerificationLink(ctx context.Context, email, link string) error
	SendMailToResetPassword(ctx context.Context, email, token string) error
	SendMailToNotifyUser(ctx context.Context, to, subject, body, ctaText, ctaURL string) error
}

type MailBranding struct {
	AppName    string
	AppBaseURL string
}

type smtpMailService struct {
	cfg     config.SMTPSettings
	brand   MailBranding
	htmlTpl *template.Template
	textTpl *texttemplate.Template
	dialer  *net.Dialer
}

func NewSMTPMailService(cfg config.SMTPSettings, brand MailBranding) IMailService {
	return &smtpMailService{
		cfg:     cfg,
		brand:   brand,
		htmlTpl: template.Must(template.New("html").Parse(baseHTMLTemplate)),
		textTpl: texttemplate.Must(texttemplate.New("text").Parse(plainTextTemplate)),
		dialer:  &net.Dialer{Timeout: 10 * time.Second},
	}
}

func (s *smtpMailService) SendVerificationLink(ctx context.Context, to, link string) error {
	err := s.deliver(ctx, to, EmailData{
		Title:     "Verify your email",
		Intro:     "Thanks for signing up. Confirm your email address to activate your account and start booking tours.",
		ButtonURL: link,
		ButtonTxt: "Verify email",
	})
	metrics.RecordEmail("verification", err)
	return err
}

func (s *smtpMailService) SendMailToResetPassword(ctx context.Context, to, token string) error {
	err := s.deliver(ctx, to, EmailData{
		Title:     "Reset your password",
		Intro:     "We received a request to reset your password. If you did not request this, you can safely ignore this email.",
		ButtonURL: resetPasswordLink(s.brand.AppBaseURL, token),
		ButtonTxt: "Reset password",
	})
	metrics.RecordEmail("password_reset", err)
	return err
}

func (s *smtpMailService) SendMailToNotifyUser(ctx context.Context, to, subject, body, ctaText, ctaURL string) error {
	err := s.deliver(ctx, to, EmailData{
		Title:     subject,
		Intro:     body,
		ButtonURL: ctaURL,
		ButtonTxt: ctaText,
	})
	metrics.RecordEmail("notification", err)
	return err
}

func (s *smtpMailService) deliver(ctx context.Context, to string, data EmailData) error {
	data.AppName = s.brand.AppName
	data.Year = time.Now().Year()

	html, text, err := renderEmail(s.htmlTpl, s.textTpl, data)
	if err != nil {
		return fmt.Errorf("%w: render: %w", utils.ErrDeliveryFailed, err)
	}

	msg := buildMessage(formatFromHeader(s.cfg.FromName, s.cfg.From), to, data.Title, html, text, time.Now())
	if err := s.send(ctx, to, msg); err != nil {
		return fmt.Errorf("%w: %w", utils.ErrDeliveryFailed, err)
	}
	return nil
}

// ------------------- Rendering -------------------

type EmailData struct {
	Title     string
	Intro     string
	ButtonURL string
	ButtonTxt string
	AppName   string
	Year      int
}

const baseHTMLTemplate = `<!doctype html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; padding: 0; background: #f1f5f9; color: #0f172a; font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    .card { max-width: 560px; margin: 32px auto; background: #ffffff; border-radius: 12px; overflow: hidden; }
    .brand { padding: 24px 28px; font-weight: 700; font-size: 20px; color: #0e7490; border-bottom: 1px solid #e2e8f0; }
    .content { padding: 28px; }
    h1 { margin: 0 0 12px; font-size: 24px; }
    p { margin: 0 0 16px; line-height: 1.6; color: #475569; }
    .btn { display: inline-block; padding: 14px 28px; background: #0891b2; color: #ffffff !important; text-decoration: none; border-radius: 8px; font-weight: 600; }
    .fallback { font-size: 13px; color: #64748b; word-break: break-all; }
    .footer { padding: 16px 28px; font-size: 12px; color: #94a3b8; text-align: center; border-top: 1px solid #e2e8f0; }
  </style>
</head>
<body>
  <div class="card">
    <div class="brand">{{.AppName}}</div>
    <div class="content">
      <h1>{{.Title}}</h1>
      <p>{{.Intro}}</p>
      {{if .ButtonURL}}
      <p><a class="btn" href="{{.ButtonURL}}">{{.ButtonTxt}}</a></p>
      <p class="fallback">If the button does not work, open this link: <a href="{{.ButtonURL}}">{{.ButtonURL}}</a></p>
      {{end}}
    </div>
    <div class="footer">© {{.Year}} {{.AppName}}</div>
  </div>
</body>
</html>`

const plainTextTemplate = `{{.Title}}

{{.Intro}}
{{if .ButtonURL}}
{{.ButtonTxt}}: {{.ButtonURL}}
{{end}}
-- {{.AppName}} (c) {{.Year}}
`

func renderEmail(htmlTpl *template.Template, textTpl *texttemplate.Template, data EmailData) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := htmlTpl.Execute(&hb, data); err != nil {
		return "", "", err
	}
	if err := textTpl.Execute(&tb, data); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}

func buildMessage(from, to, subject, htmlBody, textBody string, date time.Time) []byte {
	boundary := fmt.Sprintf("alt_%d", date.UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }

	write("From: %s\r\n", from)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	write("Date: %s\r\n", date.Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	write("--%s\r\n", boundary)
	write("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	write("%s\r\n\r\n", textBody)

	write("--%s\r\n", boundary)
	write("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	write("%s\r\n\r\n", htmlBody)

	write("--%s--\r\n", boundary)
	return msg.Bytes()
}

func formatFromHeader(name, address string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", name), address)
}

func resetPasswordLink(baseURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(token))
}

// ------------------- SMTP Send -------------------

func (s *smtpMailService) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	tlsCfg := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if s.cfg.UseSSL {
		// SMTPS, implicit TLS (usually 465)
		conn, err = (&tls.Dialer{NetDialer: s.dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = s.dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp: handshake: %w", err)
	}
	defer c.Close()

	if !s.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(tlsCfg); err != nil {
				return fmt.Errorf("smtp: starttls: %w", err)
			}
		} else if s.cfg.RequireTLS {
			return fmt.Errorf("smtp: server does not support STARTTLS and TLS is required")
		}
	}

	if s.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}
	if err := c.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp: rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: close body: %w", err)
	}
	return c.Quit()
}

// ------------------- Development mailer -------------------

// logMailService stands in for SMTP when it is disabled and writes the links to the log.
type logMailService struct {
	log   *zap.Logger
	brand MailBranding
}

func NewLogMailService(log *zap.Logger, brand MailBranding) IMailService {
	return &logMailService{log: log.With(zap.String("module", "mail")), brand: brand}
}

func (l *logMailService) SendVerificationLink(_ context.Context, email, link string) error {
	l.log.Info("verification email (smtp disabled)", zap.String("to", email), zap.String("link", link))
	metrics.RecordEmail("verification", nil)
	return nil
}

func (l *logMailService) SendMailToResetPassword(_ context.Context, email, token string) error {
	l.log.Info("password reset email (smtp disabled)", zap.String("to", email),
		zap.String("link", resetPasswordLink(l.brand.AppBaseURL, token)))
	metrics.RecordEmail("password_reset", nil)
	return nil
}

func (l *logMailService) SendMailToNotifyUser(_ context.Context, to, subject, _, _, _ string) error {
	l.log.Info("notification email (smtp disabled)", zap.String("to", to), zap.String("subject", subject))
	metrics.RecordEmail("notification", nil)
	return nil
}
