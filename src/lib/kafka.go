package lib

import (
	"context"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

// KafkaProducer is the part of *kafka.Producer used for publishing.
type KafkaProducer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

var (
	kafkaProducer *kafka.Producer
	kafkaMu       sync.Mutex
)

func GetKafkaProducerConfig(broker, clientId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": broker,
		"client.id":         clientId,
		"acks":              "all",
	}
}

// GetKafkaProducer returns the shared producer, creating it on first use.
func GetKafkaProducer(broker, clientId string) (*kafka.Producer, error) {
	kafkaMu.Lock()
	defer kafkaMu.Unlock()
	if kafkaProducer != nil {
		return kafkaProducer, nil
	}
	cfg := GetKafkaProducerConfig(broker, clientId)
	p, err := kafka.NewProducer(&cfg)
	if err != nil {
		GetLogger().Error("kafka: error creating producer", zap.Error(err))
		return nil, err
	}
	kafkaProducer = p
	return p, nil
}

// KafkaProduceMessage sends value to topic and waits for the delivery report.
func KafkaProduceMessage(ctx context.Context, p KafkaProducer, topic string, key, value []byte) error {
	delivery := make(chan kafka.Event, 1)
	err := p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}, delivery)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
		return nil
	}
}

func CloseKafkaProducer() {
	kafkaMu.Lock()
	defer kafkaMu.Unlock()
	if kafkaProducer == nil {
		return
	}
	kafkaProducer.Flush(5000)
	kafkaProducer.Close()
	kafkaProducer = nil
}
