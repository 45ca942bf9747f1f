package tracking

import (
	"clinic/src/lib"
	awslib "clinic/src/lib/aws"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// KafkaSink publishes events to a topic, keyed by session so one visitor's
// events stay ordered.
type KafkaSink struct {
	producer lib.KafkaProducer
	topic    string
}

func NewKafkaSink(producer lib.KafkaProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := lib.KafkaProduceMessage(ctx, s.producer, s.topic, []byte(e.Session), value); err != nil {
		return fmt.Errorf("kafka publish %s: %w", e.EventName, err)
	}
	return nil
}

type SQSSink struct {
	producer *awslib.SQSProducer
}

func NewSQSSink(producer *awslib.SQSProducer) *SQSSink {
	return &SQSSink{producer: producer}
}

func (s *SQSSink) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.producer.Send(ctx, string(body), map[string]string{
		"event_name": e.EventName,
		"kind":       string(e.Kind),
	})
	return err
}

// LogSink only logs. Used when no broker is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, e Event) error {
	s.logger.Info("conversion event",
		zap.String("event_id", e.EventID),
		zap.String("event_name", e.EventName),
		zap.String("kind", string(e.Kind)),
		zap.String("dedupe_key", e.DedupeKey),
		zap.Any("payload", e.Payload),
	)
	return nil
}
