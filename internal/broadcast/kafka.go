package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher publishes group messages to Kafka, one topic per group
// under a common prefix.
type KafkaPublisher struct {
	prefix   string
	producer sarama.SyncProducer
}

// NewKafkaPublisher connects a synchronous idempotent producer to the
// brokers. Topics are named "<prefix>.<group>".
func NewKafkaPublisher(brokersCSV, prefix string) (*KafkaPublisher, error) {
	if prefix == "" {
		return nil, errors.New("topic prefix empty")
	}
	brokers := splitCSV(brokersCSV)
	if len(brokers) == 0 {
		return nil, errors.New("no brokers")
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 10
	cfg.Producer.Retry.Backoff = 200 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Version = sarama.V2_1_0_0

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaPublisher{prefix: prefix, producer: producer}, nil
}

// Publish implements Broadcaster. The broker ACK is awaited; a returned
// nil means the message is durable.
func (p *KafkaPublisher) Publish(ctx context.Context, group string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.prefix + "." + group,
		Value: sarama.ByteEncoder(value),
	}
	_, _, err = p.producer.SendMessage(msg)
	return err
}

// Close shuts down the producer.
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var _ Broadcaster = (*KafkaPublisher)(nil)
