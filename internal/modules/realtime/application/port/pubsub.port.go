package port

import (
	"context"

	admin "infiniteLeafWeb/internal/modules/admin/domain"
	"infiniteLeafWeb/internal/modules/realtime/domain"
)

// Publisher hands a change to the broker so every instance sees it.
type Publisher interface {
	Publish(ctx context.Context, msg *domain.Message) error
}

// Broadcaster sends a message to the connected websocket clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// Invalidator marks cached dashboards stale, sparing the originating session.
type Invalidator interface {
	Invalidate(section admin.Section, origin string) int
}

// TopicHandler is registered per broker stream.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
