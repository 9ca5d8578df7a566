package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/krapi/cms/internal/model"
)

var _ ChangelogQueue = (*Kafka)(nil)

// Kafka publishes changelog entries to a topic, keyed by entity id so all
// mutations of one entity land on the same partition in order.
type Kafka struct {
	producer *kafka.Producer
	topic    string
}

func NewKafka(brokers, topic string) (*Kafka, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	return &Kafka{producer: producer, topic: topic}, nil
}

func (k *Kafka) Publish(ctx context.Context, entry *model.ChangelogEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(entry.EntityID),
		Value:          value,
	}, nil)
}

func (k *Kafka) Close() {
	k.producer.Flush(5000)
	k.producer.Close()
}
