package aws

import (
	"clinic/src/lib"
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	lookups int
	sent    []*sqs.SendMessageInput
	err     error
}

func (f *fakeSQS) GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/" + *params.QueueName)}, nil
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSProducerCachesQueueURL(t *testing.T) {
	client := &fakeSQS{}
	p := NewSQSProducer(client, "ConversionEvents")

	for i := 0; i < 3; i++ {
		id, err := p.Send(context.Background(), `{"a":1}`, map[string]string{"event_name": "Purchase"})
		require.NoError(t, err)
		assert.Equal(t, "m-1", id)
	}
	assert.Equal(t, 1, client.lookups)
	require.Len(t, client.sent, 3)
	assert.Equal(t, "https://sqs.local/ConversionEvents", *client.sent[0].QueueUrl)
	assert.Equal(t, "Purchase", *client.sent[0].MessageAttributes["event_name"].StringValue)
}

func TestSQSProducerLookupError(t *testing.T) {
	p := NewSQSProducer(&fakeSQS{err: errors.New("no such queue")}, "Missing")
	_, err := p.Send(context.Background(), "x", nil)
	assert.ErrorContains(t, err, "resolve queue Missing")
}

type fakeSNS struct{ in *sns.PublishInput }

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = params
	return &sns.PublishOutput{}, nil
}

func TestSNSPublisher(t *testing.T) {
	client := &fakeSNS{}
	p := NewSNSPublisher(client, "arn:aws:sns:eu-west-1:1:staff")
	require.NoError(t, p.Publish(context.Background(), "booking.confirmed", "New booking", "{}"))
	assert.Equal(t, "arn:aws:sns:eu-west-1:1:staff", *client.in.TopicArn)
	assert.Equal(t, "booking.confirmed", *client.in.MessageAttributes["event_type"].StringValue)
}

type fakeSES struct{ in *ses.SendEmailInput }

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = params
	return &ses.SendEmailOutput{MessageId: aws.String("e-1")}, nil
}

func TestSESMailer(t *testing.T) {
	client := &fakeSES{}
	m := NewSESMailer(client)
	err := m.Send(context.Background(), &lib.SendMailInput{
		From:     "noreply@clinic.test",
		FromName: "Clinic",
		To:       []string{"jan@example.com"},
		Subject:  "Bevestiging",
		Body:     "<p>ok</p>",
		Html:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, `"Clinic" <noreply@clinic.test>`, *client.in.Source)
	assert.Equal(t, []string{"jan@example.com"}, client.in.Destination.ToAddresses)
	require.NotNil(t, client.in.Message.Body.Html)
	assert.Nil(t, client.in.Message.Body.Text)
}
