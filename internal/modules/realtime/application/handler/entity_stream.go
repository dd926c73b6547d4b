package handler

import (
	"context"
	"log/slog"
	"strings"

	"infiniteLeafWeb/internal/modules/realtime/application/port"
	"infiniteLeafWeb/internal/modules/realtime/application/usecase"
	"infiniteLeafWeb/internal/modules/realtime/domain"
)

// EntityStreamHandler forwards the events of one section's broker stream to
// the local fan-out. Actions outside the allowed set are dropped.
type EntityStreamHandler struct {
	section        string
	stream         string
	allowedActions map[string]struct{}
	fanout         *usecase.FanoutUseCase
}

func NewEntityStreamHandler(section, stream string, allowedActions []string, fanout *usecase.FanoutUseCase) *EntityStreamHandler {
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &EntityStreamHandler{
		section:        strings.TrimSpace(section),
		stream:         stream,
		allowedActions: actionSet,
		fanout:         fanout,
	}
}

func (h *EntityStreamHandler) Topic() string { return h.stream }

func (h *EntityStreamHandler) Handle(ctx context.Context, msg *domain.Message) error {
	msg.Action = strings.ToLower(strings.TrimSpace(msg.Action))
	if len(h.allowedActions) > 0 {
		if _, ok := h.allowedActions[msg.Action]; !ok {
			return nil
		}
	}
	if msg.Section == "" {
		msg.Section = h.section
	}
	if msg.Topic == "" {
		msg.Topic = domain.Topic(msg.Section, msg.Action)
	}
	slog.Info("entity-stream change", slog.String("section", msg.Section), slog.String("action", msg.Action), slog.Int("id", msg.ResourceID))
	h.fanout.Execute(ctx, msg)
	return nil
}

var _ port.TopicHandler = (*EntityStreamHandler)(nil)
