package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"net/smtp"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"agroinnova-backend/config"
)

const appName = "AgroInnova"

// MailMessage is one outgoing email
type MailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a rendered message
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// NewMailer picks the delivery backend named by MAIL_PROVIDER
func NewMailer(ctx context.Context, cfg *config.Config, log *zap.Logger) (Mailer, error) {
	switch cfg.MailProvider {
	case "smtp":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom), nil
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom), nil
	case "gmail":
		return NewGmailMailer(ctx, cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, cfg.MailFrom)
	case "", "log":
		return NewLogMailer(log), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}

// SMTPMailer sends through a plain-auth SMTP relay
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	// Trim quotes from password if present
	if len(password) >= 2 && password[0] == '"' && password[len(password)-1] == '"' {
		password = password[1 : len(password)-1]
	}
	if from == "" {
		from = username
	}
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// Send delivers msg with net/smtp
func (m *SMTPMailer) Send(_ context.Context, msg MailMessage) error {
	if m.host == "" || m.port == 0 {
		return fmt.Errorf("smtp mailer is not configured")
	}
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := smtp.SendMail(addr, auth, m.from, []string{msg.To}, buildMIME(m.from, msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMIME(from string, msg MailMessage) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTML)
	return b.Bytes()
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	key  string
	host string
	from *sgmail.Email
}

// NewSendGridMailer creates a new SendGrid mailer
func NewSendGridMailer(key, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		key:  key,
		host: "https://api.sendgrid.com",
		from: sgmail.NewEmail(appName, fromEmail),
	}
}

// Send delivers msg through the SendGrid API
func (m *SendGridMailer) Send(_ context.Context, msg MailMessage) error {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)

	req := sendgrid.GetRequest(m.key, "/v3/mail/send", m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(v3)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// GmailMailer sends through the Gmail API with an offline refresh token
type GmailMailer struct {
	svc  *gmail.Service
	from string
}

// NewGmailMailer builds a Gmail API client from OAuth client credentials
func NewGmailMailer(ctx context.Context, clientID, clientSecret, refreshToken, from string) (*GmailMailer, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("gmail mailer requires client id, client secret and refresh token")
	}
	oauthConfig := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
	client := oauthConfig.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailMailer{svc: svc, from: from}, nil
}

// Send delivers msg as a raw RFC 2822 message
func (m *GmailMailer) Send(ctx context.Context, msg MailMessage) error {
	raw := base64.URLEncoding.EncodeToString(buildMIME(m.from, msg))
	_, err := m.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email via gmail: %w", err)
	}
	return nil
}

// logMailerHistory bounds how many messages a LogMailer keeps
const logMailerHistory = 50

// LogMailer writes messages to the log instead of delivering them.
// The most recent messages are kept so codes can be read back.
type LogMailer struct {
	log  *zap.Logger
	mu   sync.Mutex
	sent []MailMessage
}

// NewLogMailer creates a mailer for development and tests
func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log}
}

// Send records msg
func (m *LogMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	if len(m.sent) > logMailerHistory {
		m.sent = append([]MailMessage(nil), m.sent[len(m.sent)-logMailerHistory:]...)
	}
	m.mu.Unlock()
	m.log.Info("email not delivered, log mailer in use",
		zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// Sent returns a copy of the recorded messages, oldest first
func (m *LogMailer) Sent() []MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MailMessage(nil), m.sent...)
}

// Last returns the latest message sent to the address
func (m *LogMailer) Last(to string) (MailMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if strings.EqualFold(m.sent[i].To, to) {
			return m.sent[i], true
		}
	}
	return MailMessage{}, false
}

var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="es">
<body style="font-family: Arial, sans-serif; background: #f4f7f2; padding: 24px;">
  <div style="max-width: 520px; margin: auto; background: #ffffff; border-radius: 8px; padding: 24px;">
    <h2 style="color: #2e7d32;">{{.Title}}</h2>
    <p>Hola {{.Username}},</p>
    <p>{{.Intro}}</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold; color: #1b5e20;">{{.Code}}</p>
    <p>{{.Footer}}</p>
    <p style="color: #888888; font-size: 12px;">` + appName + `</p>
  </div>
</body>
</html>`))

type emailData struct {
	Title    string
	Username string
	Intro    string
	Code     string
	Footer   string
}

// EmailService renders and sends the account emails
type EmailService struct {
	mailer Mailer
	log    *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(mailer Mailer, log *zap.Logger) *EmailService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailService{mailer: mailer, log: log}
}

func (s *EmailService) send(ctx context.Context, to, subject string, data emailData) error {
	var body bytes.Buffer
	if err := emailLayout.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	msg := MailMessage{
		To:      to,
		Subject: subject,
		HTML:    body.String(),
		Text:    fmt.Sprintf("%s\n\n%s: %s\n\n%s", data.Intro, data.Title, data.Code, data.Footer),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}

// SendVerificationCode mails the 6-digit email verification code
func (s *EmailService) SendVerificationCode(ctx context.Context, to, username, code string, ttlMinutes int) error {
	return s.send(ctx, to, appName+" - Código de verificación", emailData{
		Title:    "Código de verificación",
		Username: username,
		Intro:    "Usa el siguiente código para verificar tu correo electrónico.",
		Code:     code,
		Footer:   fmt.Sprintf("El código expira en %d minutos.", ttlMinutes),
	})
}

// SendRandomPassword mails the one-time password used to recover an account
func (s *EmailService) SendRandomPassword(ctx context.Context, to, username, password string, ttlMinutes int) error {
	return s.send(ctx, to, appName+" - Recuperación de contraseña", emailData{
		Title:    "Contraseña temporal",
		Username: username,
		Intro:    "Recibimos una solicitud para recuperar tu cuenta. Inicia sesión con esta contraseña temporal y luego cámbiala.",
		Code:     password,
		Footer:   fmt.Sprintf("La contraseña temporal expira en %d minutos. Si no la solicitaste, ignora este mensaje.", ttlMinutes),
	})
}
