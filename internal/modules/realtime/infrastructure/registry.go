package infrastructure

import (
	"context"
	"sort"

	"infiniteLeafWeb/internal/modules/realtime/application/port"
	"infiniteLeafWeb/internal/modules/realtime/domain"
)

// HandlerRegistry routes broker messages by stream name.
type HandlerRegistry struct {
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.handlers[h.Topic()] = h
}

// Topics lists the registered streams in a stable order.
func (r *HandlerRegistry) Topics() []string {
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

func (r *HandlerRegistry) Dispatch(ctx context.Context, stream string, msg *domain.Message) error {
	if handler, ok := r.handlers[stream]; ok {
		return handler.Handle(ctx, msg)
	}
	return nil
}
