package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/angelmondragon/storefront-orders/pkg/config"
)

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Validate reports the first missing field.
func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.To) == "":
		return errors.New("recipient required")
	case strings.TrimSpace(m.Subject) == "":
		return errors.New("subject required")
	case strings.TrimSpace(m.Body) == "":
		return errors.New("body required")
	}
	return nil
}

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Client sends mail through the configured SMTP relay.
type Client struct {
	from   string
	dialer dialer
}

// New builds an SMTP client. Credentials are optional; when set, PLAIN auth is used.
func New(cfg config.SMTPConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp from address required")
	}

	var opts []mail.Option
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &Client{from: cfg.From, dialer: client}, nil
}

// Send delivers one message.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.dialer == nil {
		return errors.New("mailer not initialized")
	}
	built, err := c.build(msg)
	if err != nil {
		return err
	}
	if err := c.dialer.DialAndSendWithContext(ctx, built); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (c *Client) build(msg Message) (*mail.Msg, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}
