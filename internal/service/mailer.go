package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/minwonhaeso/esc-server/internal/config"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

const defaultSMTPTimeout = 10 * time.Second

type Mail struct {
	To       string
	Subject  string
	HTMLBody string
	// Purpose labels delivery metrics, e.g. signup or password_change.
	Purpose string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

func NewMailer(cfg *config.Config, logger *slog.Logger) Mailer {
	if strings.EqualFold(cfg.MailDriver, "smtp") {
		return NewSMTPMailer(SMTPSettings{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Timeout:  cfg.SMTPTimeout,
		})
	}
	return NewLogMailer(logger)
}

// LogMailer writes mails to the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.InfoContext(ctx, "mail issued",
		"to", mail.To,
		"subject", mail.Subject,
		"purpose", mail.Purpose,
		"body", mail.HTMLBody,
	)
	observability.RecordMailDelivery(ctx, mail.Purpose, "logged")
	return nil
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds the dial and every SMTP round trip.
	Timeout time.Duration
}

type SMTPMailer struct {
	settings SMTPSettings
	send     func(ctx context.Context, msg *gomail.Msg) error
}

func NewSMTPMailer(settings SMTPSettings) *SMTPMailer {
	if settings.Timeout <= 0 {
		settings.Timeout = defaultSMTPTimeout
	}
	m := &SMTPMailer{settings: settings}
	m.send = m.dialAndSend
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.message(mail)
	if err != nil {
		observability.RecordMailDelivery(ctx, mail.Purpose, "error")
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, m.settings.Timeout)
	defer cancel()
	if err := m.send(ctx, msg); err != nil {
		observability.RecordMailDelivery(ctx, mail.Purpose, "error")
		return fmt.Errorf("send mail via %s: %w", m.settings.Host, err)
	}
	observability.RecordMailDelivery(ctx, mail.Purpose, "sent")
	return nil
}

func (m *SMTPMailer) message(mail Mail) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.settings.From); err != nil {
		return nil, fmt.Errorf("mail sender %q: %w", m.settings.From, err)
	}
	if err := msg.To(mail.To); err != nil {
		return nil, fmt.Errorf("mail recipient %q: %w", mail.To, err)
	}
	msg.Subject(mail.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, mail.HTMLBody)
	return msg, nil
}

// dialAndSend opens one connection per mail; the client is not shared
// between concurrent requests.
func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(m.settings.Host, m.clientOptions()...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func (m *SMTPMailer) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(m.settings.Port),
		gomail.WithTimeout(m.settings.Timeout),
	}
	if m.settings.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if m.settings.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.settings.Username),
			gomail.WithPassword(m.settings.Password),
		)
	}
	return opts
}
