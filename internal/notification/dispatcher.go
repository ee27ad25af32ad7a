// Package notification delivers order confirmations through an SMTP relay.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/errors"
)

type Attachment struct {
	Filename string
	Content  []byte
}

type Message struct {
	To          string
	FromName    string
	FromAddress string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachment  *Attachment
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPDispatcher makes exactly one delivery attempt per message. It keeps
// no delivery state between calls.
type SMTPDispatcher struct {
	client sender
	logger *zap.Logger
}

// NewSMTPDispatcher builds a client for the configured relay. Callers check
// cfg.Enabled first; a dispatcher for an empty host is an error.
func NewSMTPDispatcher(cfg config.MailConfig, logger *zap.Logger) (*SMTPDispatcher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp host is not configured")
	}

	opts := authOptions(cfg)
	if cfg.Secure {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	opts = append(opts, mail.WithPort(cfg.Port))
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPDispatcher{client: client, logger: logger}, nil
}

// authOptions enables PLAIN auth only when a relay user is configured.
func authOptions(cfg config.MailConfig) []mail.Option {
	if cfg.User == "" {
		return nil
	}
	return []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
	}
}

func (d *SMTPDispatcher) Dispatch(ctx context.Context, msg Message) error {
	m, err := buildMessage(msg)
	if err != nil {
		return errors.NewDeliveryError("building message", err)
	}

	start := time.Now()
	if err := d.client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.NewDeliveryError("sending message", err)
	}

	d.logger.Info("email delivered",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	if msg.FromName != "" {
		if err := m.FromFormat(msg.FromName, msg.FromAddress); err != nil {
			return nil, fmt.Errorf("setting sender: %w", err)
		}
	} else if err := m.From(msg.FromAddress); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}

	if msg.Attachment != nil {
		if err := m.AttachReader(msg.Attachment.Filename, bytes.NewReader(msg.Attachment.Content)); err != nil {
			return nil, fmt.Errorf("attaching %s: %w", msg.Attachment.Filename, err)
		}
	}

	return m, nil
}
