package mailer

import (
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/musa-app/musa-api/internal/config"
)

// Mailer sends transactional account emails. Implementations should treat
// delivery as best effort; callers log failures and continue.
type Mailer interface {
	SendConfirmationEmail(to, name, token string) error
	SendPasswordResetEmail(to, name, token string) error
}

// SMTPMailer delivers over SMTP using the configured relay.
type SMTPMailer struct {
	client      *gomail.Client
	from        string
	frontendURL string
	logger      *slog.Logger
}

func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) (*SMTPMailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := gomail.NewClient(cfg.SMTPHost,
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SMTPUsername),
		gomail.WithPassword(cfg.SMTPPassword),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPMailer{
		client:      client,
		from:        cfg.SMTPFrom,
		frontendURL: cfg.FrontendURL,
		logger:      logger,
	}, nil
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

func (m *SMTPMailer) SendConfirmationEmail(to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Musa! Please confirm your email address by opening the link below:\n\n%s\n\nThe link expires in 24 hours. If you did not create an account, you can ignore this message.\n",
		name, link)
	return m.send(to, "Confirm your Musa account", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(to, name, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n%s\n\nThe link expires in 1 hour. If you did not request this, you can ignore this message.\n",
		name, link)
	return m.send(to, "Reset your Musa password", body)
}

// NoopMailer is used when SMTP is not configured; it logs what would have
// been sent so local development still surfaces tokens.
type NoopMailer struct {
	logger *slog.Logger
}

func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopMailer{logger: logger}
}

func (m *NoopMailer) SendConfirmationEmail(to, name, token string) error {
	m.logger.Info("smtp not configured, skipping confirmation email", "to", to, "token", token)
	return nil
}

func (m *NoopMailer) SendPasswordResetEmail(to, name, token string) error {
	m.logger.Info("smtp not configured, skipping password reset email", "to", to, "token", token)
	return nil
}
