package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/acme/identity-service/internal/domain"
)

// SMTPMailer renders the notification templates and delivers them over
// SMTP. Implements identity.Mailer.
type SMTPMailer struct {
	lg zerolog.Logger

	host     string
	port     int
	user     string
	pass     string
	from     string
	insecure bool
	timeout  time.Duration

	identity Identity
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool

	SiteName    string
	SiteAddress string
}

func NewSMTPMailer(cfg SMTPConfig, lg zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		lg:       lg.With().Str("component", "smtp_mailer").Logger(),
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.Username,
		pass:     cfg.Password,
		from:     cfg.From,
		insecure: cfg.Insecure,
		timeout:  cfg.Timeout,
		identity: Identity{SiteName: cfg.SiteName, Address: cfg.SiteAddress},
	}
}

func (s *SMTPMailer) SendVerificationEmail(ctx context.Context, u domain.User, url string) error {
	htmlBody, err := renderVerifyEmail(s.identity, u.FirstName, url)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s,\n\nVerify your email address by opening this link:\n\n%s\n\n%s\n%s\n",
		u.FirstName, url, s.identity.SiteName, s.identity.Address)
	return s.send(ctx, u.Email, "Verify your email address", text, htmlBody)
}

func (s *SMTPMailer) SendPasswordResetEmail(ctx context.Context, u domain.User, url string) error {
	htmlBody, err := renderResetEmail(s.identity, url)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Reset your password by opening this link:\n\n%s\n", url)
	return s.send(ctx, u.Email, "Reset your password", text, htmlBody)
}

func (s *SMTPMailer) send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(subject)

	// Text fallback + HTML alternative
	m.SetBodyString(mail.TypeTextPlain, textBody)
	m.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	tlsPolicy := mail.TLSMandatory
	if s.insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.user != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(s.user), mail.WithPassword(s.pass))
	}

	c, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client init failed: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("to", to).Str("subject", subject).Msg("smtp send failed")
		return fmt.Errorf("smtp send: %w", err)
	}

	s.lg.Info().Str("to", to).Str("subject", subject).Msg("smtp send ok")
	return nil
}
