package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type SQSAPI interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSProducer sends messages to a queue looked up by name. The queue URL is
// resolved once and cached.
type SQSProducer struct {
	Name   string
	client SQSAPI

	mu  sync.Mutex
	url *string
}

func NewSQSProducer(client SQSAPI, queue string) *SQSProducer {
	return &SQSProducer{Name: queue, client: client}
}

func (s *SQSProducer) queueURL(ctx context.Context) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.url != nil {
		return s.url, nil
	}
	out, err := s.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(s.Name)})
	if err != nil {
		return nil, fmt.Errorf("resolve queue %s: %w", s.Name, err)
	}
	s.url = out.QueueUrl
	return s.url, nil
}

func (s *SQSProducer) Send(ctx context.Context, body string, attributes map[string]string) (string, error) {
	url, err := s.queueURL(ctx)
	if err != nil {
		return "", err
	}
	attrs := make(map[string]sqstypes.MessageAttributeValue, len(attributes))
	for k, v := range attributes {
		attrs[k] = sqstypes.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}
	out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          url,
		MessageBody:       aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("send to %s: %w", s.Name, err)
	}
	return aws.ToString(out.MessageId), nil
}
