package email

import (
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/peerconnect/api/internal/pkg/apperrors"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendVerificationEmail(toEmail, toName, verificationURL string) error
	SendMentionEmail(toEmail, senderName string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	// FrontendURL is the web client base, used for links back into the app
	FrontendURL string
}

// dialer is the part of *gomail.Dialer the service uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailServiceImpl implements EmailService on top of gomail
type EmailServiceImpl struct {
	config SMTPConfig
	dialer dialer
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		logger: logger,
	}
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// SendVerificationEmail sends the account verification link
func (s *EmailServiceImpl) SendVerificationEmail(toEmail, toName, verificationURL string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("verificationURL", verificationURL).
			Msg("SMTP credentials not configured - verification email not sent. Use the URL above for testing.")
		return nil
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e2e8f0; border-radius: 10px; background-color: #ffffff;">
			<h2 style="color: #0f172a; text-align: center;">Welcome to PeerConnect!</h2>
			<p style="color: #475569; font-size: 16px; line-height: 1.6;">Hello %s,</p>
			<p style="color: #475569; font-size: 16px; line-height: 1.6;">
				Thanks for signing up. Please verify your email address to get started and connect with peers on campus.
			</p>
			<div style="text-align: center; margin: 30px 0;">
				<a href="%s" target="_blank" rel="noopener noreferrer" style="background-color: #0ea5e9; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold; display: inline-block;">Verify Email Address</a>
			</div>
			<p style="color: #94a3b8; font-size: 14px; text-align: center;">
				If you did not create this account, you can safely ignore this email.
			</p>
			<p style="color: #cbd5e1; font-size: 12px; text-align: center;">PeerConnect Team</p>
		</div>
	`, html.EscapeString(toName), html.EscapeString(verificationURL))

	return s.sendHTMLEmail(toEmail, "Verify your email - PeerConnect", body)
}

// SendMentionEmail tells a participant that someone mentioned them in chat
func (s *EmailServiceImpl) SendMentionEmail(toEmail, senderName string) error {
	if !s.configured() {
		s.logger.Debug().
			Str("toEmail", toEmail).
			Str("sender", senderName).
			Msg("SMTP credentials not configured - mention email not sent")
		return nil
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px;">
			<h2>You were mentioned!</h2>
			<p><strong>%s</strong> mentioned you in a chat.</p>
			<a href="%s/dashboard" style="background-color: #0ea5e9; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Chat</a>
		</div>
	`, html.EscapeString(senderName), html.EscapeString(strings.TrimRight(s.config.FrontendURL, "/")))

	return s.sendHTMLEmail(toEmail, "You were mentioned in PeerConnect", body)
}

func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.fromAddress(), s.config.FromName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error().Err(err).
			Str("server", fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)).
			Str("toEmail", toEmail).
			Msg("Failed to send email")
		return fmt.Errorf("%w: send to %s: %v", apperrors.ErrExternalService, toEmail, err)
	}

	return nil
}

func (s *EmailServiceImpl) fromAddress() string {
	if s.config.FromEmail != "" {
		return s.config.FromEmail
	}
	return s.config.Username
}
