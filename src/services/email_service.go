package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/fleetservis/backend/src/config"
	"github.com/username/fleetservis/backend/src/logger"
)

type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}

// NewEmailService picks the provider from configuration. Incomplete provider
// settings fall back to the mock so a misconfigured deployment still starts.
func NewEmailService() EmailService {
	if config.Cfg == nil {
		slog.Error("config.Cfg is nil, email service falls back to mock")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("initializing email service", "provider", provider)

	mock := &MockEmailService{
		VerificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
		PasswordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
	}

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("mailgun settings incomplete, falling back to mock email service")
			return mock
		}
		return &MailgunEmailService{
			mg:                       mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey),
			senderEmail:              config.Cfg.SenderEmail,
			senderName:               config.Cfg.SenderName,
			verificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
			passwordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
		}
	case "smtp":
		if config.Cfg.SMTPServer == "" || config.Cfg.SMTPUser == "" || config.Cfg.SMTPPassword == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("smtp settings incomplete, falling back to mock email service")
			return mock
		}
		return &SMTPEmailService{
			server:                   config.Cfg.SMTPServer,
			port:                     config.Cfg.SMTPPort,
			user:                     config.Cfg.SMTPUser,
			password:                 config.Cfg.SMTPPassword,
			senderEmail:              config.Cfg.SenderEmail,
			verificationEmailBaseURL: config.Cfg.VerificationEmailBaseURL,
			passwordResetBaseURL:     config.Cfg.PasswordResetBaseURL,
		}
	default:
		return mock
	}
}

func verificationBody(username, link string) string {
	return fmt.Sprintf(`Merhaba %s,

FleetServis hesabınızı etkinleştirmek için e-posta adresinizi doğrulayın:
%s

Bu hesabı siz açmadıysanız bu e-postayı yok sayabilirsiniz.

FleetServis`, username, link)
}

func passwordResetBody(username, link string) string {
	return fmt.Sprintf(`Merhaba %s,

FleetServis hesabınız için parola sıfırlama talebinde bulundunuz.
Parolanızı sıfırlamak için aşağıdaki bağlantıyı kullanın:
%s

Bağlantı %s içinde geçerliliğini yitirir. Talebi siz yapmadıysanız bu
e-postayı yok sayabilirsiniz.

FleetServis`, username, link, config.Cfg.PasswordResetTokenExpiry.String())
}

type SMTPEmailService struct {
	server                   string
	port                     int
	user                     string
	password                 string
	senderEmail              string
	verificationEmailBaseURL string
	passwordResetBaseURL     string
}

func (s *SMTPEmailService) send(toEmail, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.senderEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.user, s.password, s.server)
	addr := fmt.Sprintf("%s:%d", s.server, s.port)
	if err := smtp.SendMail(addr, auth, s.senderEmail, []string{toEmail}, []byte(msg.String())); err != nil {
		logger.L.Error("smtp send failed", "error", err, "to", toEmail, "subject", subject)
		return fmt.Errorf("smtp send failed: %w", err)
	}
	logger.L.Info("email sent via smtp", "to", toEmail, "subject", subject)
	return nil
}

func (s *SMTPEmailService) SendVerificationEmail(toEmail, username, token string) error {
	link := fmt.Sprintf("%s?token=%s", s.verificationEmailBaseURL, token)
	return s.send(toEmail, "FleetServis E-posta Doğrulama", verificationBody(username, link))
}

func (s *SMTPEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	link := fmt.Sprintf("%s?token=%s", s.passwordResetBaseURL, token)
	return s.send(toEmail, "FleetServis Parola Sıfırlama", passwordResetBody(username, link))
}

type MailgunEmailService struct {
	mg                       mailgun.Mailgun
	senderEmail              string
	senderName               string
	verificationEmailBaseURL string
	passwordResetBaseURL     string
}

func (s *MailgunEmailService) send(toEmail, subject, plainBody, htmlBody, tag string) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	message := s.mg.NewMessage(from, subject, plainBody, toEmail)
	message.SetHtml(htmlBody)
	if tag != "" {
		message.AddTag(tag)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("mailgun send failed", "error", err, "to", toEmail, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	logger.L.Info("email sent via mailgun", "to", toEmail, "subject", subject, "id", id)
	return nil
}

func (s *MailgunEmailService) SendVerificationEmail(toEmail, username, token string) error {
	link := fmt.Sprintf("%s?token=%s", s.verificationEmailBaseURL, token)
	htmlBody := fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6;">
			<p>Merhaba %s,</p>
			<p>FleetServis hesabınızı etkinleştirmek için e-posta adresinizi doğrulayın:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8; text-decoration: none; font-weight: bold; padding: 10px 15px; border: 1px solid #1a73e8; border-radius: 4px; background-color: #e8f0fe;">E-postayı Doğrula</a></p>
			<p>Buton çalışmazsa bu bağlantıyı tarayıcınıza yapıştırın:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8;">%s</a></p>
			<p>Bu hesabı siz açmadıysanız bu e-postayı yok sayabilirsiniz.</p>
			<p>FleetServis</p>
		</body>
	</html>`, username, link, link, link)
	return s.send(toEmail, "FleetServis E-posta Doğrulama", verificationBody(username, link), htmlBody, "")
}

func (s *MailgunEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	link := fmt.Sprintf("%s?token=%s", s.passwordResetBaseURL, token)
	expiry := config.Cfg.PasswordResetTokenExpiry.String()
	htmlBody := fmt.Sprintf(`
	<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6;">
			<p>Merhaba %s,</p>
			<p>FleetServis hesabınız için parola sıfırlama talebinde bulundunuz:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8; text-decoration: none; font-weight: bold; padding: 10px 15px; border: 1px solid #1a73e8; border-radius: 4px; background-color: #e8f0fe;">Parolayı Sıfırla</a></p>
			<p>Buton çalışmazsa bu bağlantıyı tarayıcınıza yapıştırın:</p>
			<p><a href="%s" target="_blank" style="color: #1a73e8;">%s</a></p>
			<p>Bağlantı %s içinde geçerliliğini yitirir. Talebi siz yapmadıysanız bu e-postayı yok sayabilirsiniz.</p>
			<p>FleetServis</p>
		</body>
	</html>`, username, link, link, link, expiry)
	return s.send(toEmail, "FleetServis Parola Sıfırlama", passwordResetBody(username, link), htmlBody, "password-reset")
}

// MockEmailService logs instead of sending. Used in development and as the
// fallback when no real provider is configured.
type MockEmailService struct {
	VerificationEmailBaseURL string
	PasswordResetBaseURL     string
}

func (m *MockEmailService) SendVerificationEmail(toEmail, username, token string) error {
	link := ""
	if m.VerificationEmailBaseURL != "" {
		link = fmt.Sprintf("%s?token=%s", m.VerificationEmailBaseURL, token)
	}
	logger.L.Info("mock email service: verification email", "to", toEmail, "username", username, "verificationLink", link)
	return nil
}

func (m *MockEmailService) SendPasswordResetEmail(toEmail, username, token string) error {
	link := ""
	if m.PasswordResetBaseURL != "" {
		link = fmt.Sprintf("%s?token=%s", m.PasswordResetBaseURL, token)
	}
	logger.L.Info("mock email service: password reset email", "to", toEmail, "username", username, "resetLink", link)
	return nil
}
