package usecase

import (
	"context"
	"log/slog"
	"time"

	adminport "infiniteLeafWeb/internal/modules/admin/application/port"
	admin "infiniteLeafWeb/internal/modules/admin/domain"
	"infiniteLeafWeb/internal/modules/realtime/application/port"
	"infiniteLeafWeb/internal/modules/realtime/domain"
)

// FanoutUseCase applies a change on this instance: other sessions' cached
// dashboards go stale and live sockets get the message.
type FanoutUseCase struct {
	broadcaster port.Broadcaster
	invalidator port.Invalidator
}

func NewFanoutUseCase(b port.Broadcaster, inv port.Invalidator) *FanoutUseCase {
	return &FanoutUseCase{broadcaster: b, invalidator: inv}
}

func (uc *FanoutUseCase) Execute(ctx context.Context, msg *domain.Message) {
	if msg.IsChange() && uc.invalidator != nil {
		section, err := admin.ParseSection(msg.Section)
		if err != nil {
			slog.Warn("change for unknown section ignored", slog.String("section", msg.Section), slog.String("action", msg.Action))
			return
		}
		marked := uc.invalidator.Invalidate(section, msg.Origin)
		slog.Debug("dashboards marked stale", slog.String("section", section.String()), slog.Int("sessions", marked))
	}
	if uc.broadcaster != nil {
		uc.broadcaster.Broadcast(ctx, msg)
	}
}

// Announcer turns dashboard and booking mutations into change messages. With a
// publisher the broker carries them back to every instance (this one
// included); without one, or when publishing fails, they are applied locally.
type Announcer struct {
	publisher port.Publisher
	fanout    *FanoutUseCase
	now       func() time.Time
}

func NewAnnouncer(publisher port.Publisher, fanout *FanoutUseCase) *Announcer {
	return &Announcer{publisher: publisher, fanout: fanout, now: time.Now}
}

func (a *Announcer) Notify(ctx context.Context, change adminport.Change) {
	msg := domain.NewChange(change.Section, change.Action, change.ResourceID, change.Origin, a.now())
	if a.publisher != nil {
		err := a.publisher.Publish(ctx, msg)
		if err == nil {
			return
		}
		slog.Warn("change publish failed, applying locally", slog.String("topic", msg.Topic), slog.Any("error", err))
	}
	a.fanout.Execute(ctx, msg)
}

var _ adminport.Notifier = (*Announcer)(nil)
