// Package kafka publishes events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/genai/pkg/eventstream"
)

const (
	defaultBatchTimeout = 10 * time.Millisecond

	headerEventType     = "event_type"
	headerSchemaVersion = "schema_version"
)

// Config configures a Kafka publisher.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string

	// BatchTimeout bounds how long messages wait for a batch to fill.
	BatchTimeout time.Duration
}

// messageWriter is the part of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implements eventstream.Publisher on a Kafka topic. Messages are
// keyed by session id so the records of a session land on one partition, in
// order.
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a publisher writing to cfg.Topic.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = defaultBatchTimeout
	}

	return newPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           batchTimeout,
		Transport:              &kafkago.Transport{ClientID: cfg.ClientID},
	}), nil
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w}
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for b := range strings.SplitSeq(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PublishRecord writes event keyed by its session id.
func (p *Publisher) PublishRecord(ctx context.Context, event *eventstream.StreamRecordEvent) error {
	if event == nil {
		return eventstream.ErrNilRecordEvent
	}
	return p.publish(ctx, event.Record.SessionID, event.EventType, event.SchemaVersion, event)
}

// PublishTurn writes event keyed by its session id.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}
	return p.publish(ctx, event.SessionID, event.EventType, event.SchemaVersion, event)
}

func (p *Publisher) publish(ctx context.Context, key, eventType string, version int, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshaling %s event: %w", eventType, err)
	}

	msg := kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: headerEventType, Value: []byte(eventType)},
			{Key: headerSchemaVersion, Value: []byte(strconv.Itoa(version))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publishing %s event: %w", eventType, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
