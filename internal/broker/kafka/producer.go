// Package kafka publishes duty-status events to Kafka.
package kafka

import (
	"context"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/pkordes/eld-logbook/internal/broker/messages"
	"github.com/pkordes/eld-logbook/internal/domain"
)

// DefaultTopic receives DutyStatusChanged messages when no topic is configured.
const DefaultTopic = "duty-status.changed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Producer struct {
	w     messageWriter
	topic string
}

func NewProducer(brokers []string, topic string) *Producer {
	return newProducerWithWriter(&kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.Hash{},
	}, topic)
}

func newProducerWithWriter(w messageWriter, topic string) *Producer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{w: w, topic: topic}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   key,
		Value: value,
	}); err != nil {
		return errors.Wrap(err, "kafka publish")
	}
	return nil
}

// PublishDutyChange keys the message by driver so one driver's events stay
// ordered within a partition.
func (p *Producer) PublishDutyChange(ctx context.Context, change domain.DutyChange) error {
	value, err := messages.NewDutyStatusChanged(change).Marshal()
	if err != nil {
		return errors.Wrap(err, "encode duty change")
	}
	return p.Publish(ctx, []byte(change.DriverID.String()), value)
}

func (p *Producer) Close() error {
	if c, ok := p.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
