// internal/events/publisher.go
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"recharge-core/internal/domain"

	"github.com/IBM/sarama"
)

// RechargeEvent is the message published for every terminal recharge entry.
type RechargeEvent struct {
	EntryID     int64              `json:"entry_id"`
	AccountID   int64              `json:"account_id"`
	Kind        domain.EntryKind   `json:"kind"`
	Status      domain.EntryStatus `json:"status"`
	Amount      string             `json:"amount"`
	PhoneNumber string             `json:"phone_number"`
	Operator    string             `json:"operator"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Publisher emits recharge result events. Publishing is best-effort: a
// failed publish is logged by the caller and never affects the ledger.
type Publisher interface {
	PublishRechargeResult(event RechargeEvent) error
	Close() error
}

// KafkaPublisher publishes recharge results to a Kafka topic.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher creates a synchronous Kafka producer that waits for all
// in-sync replicas to acknowledge each message.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

// PublishRechargeResult sends one event keyed by account id, preserving
// per-account ordering.
func (p *KafkaPublisher) PublishRechargeResult(event RechargeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal recharge event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", event.AccountID)),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish recharge event: %w", err)
	}
	return nil
}

// Close shuts down the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher discards events, used when Kafka is not configured.
type NopPublisher struct{}

// PublishRechargeResult discards the event.
func (NopPublisher) PublishRechargeResult(event RechargeEvent) error { return nil }

// Close is a no-op.
func (NopPublisher) Close() error { return nil }
