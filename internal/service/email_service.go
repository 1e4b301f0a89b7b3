package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ecotrack/auth-service/internal/config"
	"github.com/ecotrack/auth-service/internal/constants"
	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/utils"
)

const resetMailSubject = "Password Reset Request"

// Mailer delivers password reset tokens out of band
type Mailer interface {
	SendPasswordReset(ctx context.Context, msg models.PasswordResetMessage) error
}

// NewMailer builds the Mailer selected by the mail settings
func NewMailer(cfg *config.MailSettings) (Mailer, error) {
	switch cfg.Provider {
	case constants.MailProviderSendGrid:
		return NewSendGridMailer(cfg)
	case constants.MailProviderLog, "":
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}

// SendGridMailer sends reset mails through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey      string
	host        string
	fromAddress string
	fromName    string
}

// NewSendGridMailer creates a new SendGridMailer.
// It expects the API key to be present in the mail settings.
func NewSendGridMailer(cfg *config.MailSettings) (*SendGridMailer, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("SENDGRID_API_KEY must be set for the sendgrid mail provider")
	}

	host := cfg.SendGridHost
	if host == "" {
		host = constants.DefaultSendGridHost
	}

	return &SendGridMailer{
		apiKey:      cfg.SendGridAPIKey,
		host:        host,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}, nil
}

// SendPasswordReset sends a password reset email to the account owner.
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, msg models.PasswordResetMessage) error {
	from := mail.NewEmail(m.fromName, m.fromAddress)
	to := mail.NewEmail(msg.Name, msg.To)
	plainTextContent, htmlContent := resetMailContent(msg)
	message := mail.NewSingleEmail(from, resetMailSubject, to, plainTextContent, htmlContent)

	request := sendgrid.GetRequest(m.apiKey, constants.SendGridMailEndpoint, m.host)
	request.Method = http.MethodPost
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		log.Error().Err(err).Str("to", utils.MaskEmail(msg.To)).Msg("Failed to send password reset email")
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	if response.StatusCode >= http.StatusMultipleChoices {
		log.Error().
			Int("status_code", response.StatusCode).
			Str("to", utils.MaskEmail(msg.To)).
			Msg("SendGrid rejected password reset email")
		return fmt.Errorf("sendgrid responded with status %d", response.StatusCode)
	}

	log.Info().Int("status_code", response.StatusCode).Str("to", utils.MaskEmail(msg.To)).Msg("Password reset email sent")
	return nil
}

func resetMailContent(msg models.PasswordResetMessage) (plain, html string) {
	expires := msg.ExpiresAt.UTC().Format("15:04 MST")
	if msg.ResetURL != "" {
		plain = fmt.Sprintf("Please use the following link to reset your password: %s\nThe link expires at %s.", msg.ResetURL, expires)
		html = fmt.Sprintf("<strong>Please use the following link to reset your password:</strong> <a href=\"%s\">Reset Password</a><p>The link expires at %s.</p>", msg.ResetURL, expires)
		return plain, html
	}
	plain = fmt.Sprintf("Your password reset token is: %s\nIt expires at %s.", msg.Token, expires)
	html = fmt.Sprintf("<strong>Your password reset token is:</strong> <code>%s</code><p>It expires at %s.</p>", msg.Token, expires)
	return plain, html
}

// LogMailer records that a reset mail would have been sent. The token itself is never logged.
type LogMailer struct{}

// NewLogMailer creates a LogMailer
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendPasswordReset logs the masked recipient and the token expiry
func (m *LogMailer) SendPasswordReset(_ context.Context, msg models.PasswordResetMessage) error {
	log.Info().
		Str("to", utils.MaskEmail(msg.To)).
		Time("expires_at", msg.ExpiresAt).
		Msg("Password reset issued; mail delivery is disabled")
	return nil
}
