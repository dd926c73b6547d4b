package broker

import (
	"context"
	"log/slog"
	"sync"

	"infiniteLeafWeb/internal/modules/realtime/domain"
)

// Dispatcher routes a consumed message by the stream it arrived on.
type Dispatcher interface {
	Topics() []string
	Dispatch(ctx context.Context, stream string, msg *domain.Message) error
}

// StartKafkaConsumers runs one consumer per registered stream until ctx is
// cancelled. The returned WaitGroup completes once every consumer has stopped.
func StartKafkaConsumers(ctx context.Context, dispatcher Dispatcher, brokers []string, groupID, prefix string) *sync.WaitGroup {
	var wg sync.WaitGroup
	if len(brokers) == 0 {
		return &wg
	}
	for _, topic := range dispatcher.Topics() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer := NewKafkaConsumer(brokers, groupID, topic, prefix)
			slog.Info("kafka consumer started", slog.String("topic", topic), slog.String("groupId", groupID))
			_ = consumer.Consume(ctx, func(stream string, msg *domain.Message) error {
				return dispatcher.Dispatch(ctx, stream, msg)
			})
		}()
	}
	return &wg
}
