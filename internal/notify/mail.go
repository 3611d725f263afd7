package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/mail.v2"
)

// mailSender is the subset of *mail.Dialer used by MailSink.
type mailSender interface {
	DialAndSend(m ...*mail.Message) error
}

// MailSink emails the event recipient over SMTP.
type MailSink struct {
	sender mailSender
	from   string
	logger zerolog.Logger
}

// NewMailSink creates an SMTP sink.
func NewMailSink(host string, port int, username, password, from string, logger zerolog.Logger) *MailSink {
	return newMailSink(mail.NewDialer(host, port, username, password), from, logger)
}

func newMailSink(sender mailSender, from string, logger zerolog.Logger) *MailSink {
	return &MailSink{
		sender: sender,
		from:   from,
		logger: logger.With().Str("sink", "mail").Logger(),
	}
}

// Name implements Sink.
func (s *MailSink) Name() string { return "mail" }

// Send implements Sink. Events without a recipient are skipped.
func (s *MailSink) Send(ctx context.Context, ev Event) error {
	if ev.Recipient == "" {
		s.logger.Debug().Str("kind", string(ev.Kind)).Msg("No recipient, skipping email")
		return nil
	}

	msg, err := render(ev)
	if err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", ev.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)

	errCh := make(chan error, 1)
	go func() { errCh <- s.sender.DialAndSend(m) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", ev.Recipient, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email to %s: %w", ev.Recipient, ctx.Err())
	}
}
