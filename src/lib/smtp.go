package lib

import (
	"clinic/src/config"
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type SendMailInput struct {
	From     string
	FromName string
	To       []string
	Cc       []string
	Bcc      []string
	ReplyTo  string
	Subject  string
	Body     string
	Html     bool
}

func GetSMTPClient(c *config.Config) (*mail.Client, error) {
	client, err := mail.NewClient(
		c.SMTPHost,
		mail.WithPort(c.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.SMTPUsername),
		mail.WithPassword(c.SMTPPassword),
	)
	if err != nil {
		GetLogger().Error("smtp: could not initialize client", zap.Error(err))
		return nil, err
	}
	return client, nil
}

// BuildMessage turns the input into a go-mail message.
func BuildMessage(in *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(in.FromName, in.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(in.To...); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	if in.ReplyTo != "" {
		if err := msg.ReplyTo(in.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to address: %w", err)
		}
	}
	if len(in.Cc) > 0 {
		if err := msg.Cc(in.Cc...); err != nil {
			return nil, fmt.Errorf("cc address: %w", err)
		}
	}
	if len(in.Bcc) > 0 {
		if err := msg.Bcc(in.Bcc...); err != nil {
			return nil, fmt.Errorf("bcc address: %w", err)
		}
	}
	msg.Subject(in.Subject)
	if in.Html {
		msg.SetBodyString(mail.TypeTextHTML, in.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, in.Body)
	}
	return msg, nil
}

// SMTPMailer sends mail through the configured SMTP relay.
type SMTPMailer struct {
	client *mail.Client
}

func NewSMTPMailer(client *mail.Client) *SMTPMailer {
	return &SMTPMailer{client: client}
}

func (m *SMTPMailer) Send(ctx context.Context, in *SendMailInput) error {
	msg, err := BuildMessage(in)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}
