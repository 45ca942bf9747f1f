package aws

import (
	"clinic/src/lib"
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer delivers lib.SendMailInput messages through Amazon SES.
type SESMailer struct {
	inner SESAPI
}

func NewSESMailer(client SESAPI) *SESMailer {
	return &SESMailer{inner: client}
}

func (m *SESMailer) Send(ctx context.Context, in *lib.SendMailInput) error {
	from := (&mail.Address{Name: in.FromName, Address: in.From}).String()
	body := &types.Body{}
	content := &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(in.Body)}
	if in.Html {
		body.Html = content
	} else {
		body.Text = content
	}
	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses:  in.To,
			CcAddresses:  in.Cc,
			BccAddresses: in.Bcc,
		},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(in.Subject)},
			Body:    body,
		},
	}
	if in.ReplyTo != "" {
		input.ReplyToAddresses = []string{in.ReplyTo}
	}
	if _, err := m.inner.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
