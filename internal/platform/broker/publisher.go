package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"infiniteLeafWeb/internal/modules/realtime/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes change messages to "<prefix><section>".
type KafkaPublisher struct {
	writer  messageWriter
	prefix  string
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, prefix string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		prefix:  prefix,
		timeout: 5 * time.Second,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg *domain.Message) error {
	value, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: domain.StreamName(p.prefix, msg.Section),
		Key:   []byte(msg.Section),
		Value: value,
		Time:  msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
