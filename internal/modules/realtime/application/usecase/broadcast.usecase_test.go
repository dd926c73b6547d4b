package usecase

import (
	"context"
	"errors"
	"testing"

	adminport "infiniteLeafWeb/internal/modules/admin/application/port"
	admin "infiniteLeafWeb/internal/modules/admin/domain"
	"infiniteLeafWeb/internal/modules/realtime/domain"
)

type broadcastLog struct{ messages []*domain.Message }

func (b *broadcastLog) Broadcast(_ context.Context, msg *domain.Message) {
	b.messages = append(b.messages, msg)
}

type invalidation struct {
	section admin.Section
	origin  string
}

type invalidationLog struct{ calls []invalidation }

func (l *invalidationLog) Invalidate(section admin.Section, origin string) int {
	l.calls = append(l.calls, invalidation{section, origin})
	return 1
}

type stubPublisher struct {
	err       error
	published []*domain.Message
}

func (p *stubPublisher) Publish(_ context.Context, msg *domain.Message) error {
	p.published = append(p.published, msg)
	return p.err
}

func TestFanoutInvalidatesAndBroadcasts(t *testing.T) {
	b, inv := &broadcastLog{}, &invalidationLog{}
	uc := NewFanoutUseCase(b, inv)

	uc.Execute(context.Background(), &domain.Message{Section: "reservations", Action: "created", Origin: "s1"})

	if len(inv.calls) != 1 || inv.calls[0] != (invalidation{admin.SectionReservations, "s1"}) {
		t.Fatalf("unexpected invalidations %#v", inv.calls)
	}
	if len(b.messages) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(b.messages))
	}
}

func TestFanoutIgnoresUnknownSection(t *testing.T) {
	b, inv := &broadcastLog{}, &invalidationLog{}
	NewFanoutUseCase(b, inv).Execute(context.Background(), &domain.Message{Section: "restaurants", Action: "created"})

	if len(inv.calls) != 0 || len(b.messages) != 0 {
		t.Fatalf("unknown section must be dropped: %#v %#v", inv.calls, b.messages)
	}
}

func TestAnnouncerWithoutPublisherAppliesLocally(t *testing.T) {
	b, inv := &broadcastLog{}, &invalidationLog{}
	a := NewAnnouncer(nil, NewFanoutUseCase(b, inv))

	a.Notify(context.Background(), adminport.Change{Section: "menu", Action: adminport.ActionDeleted, ResourceID: 7, Origin: "s2"})

	if len(b.messages) != 1 {
		t.Fatalf("expected local broadcast")
	}
	msg := b.messages[0]
	if msg.Topic != "menu.deleted" || msg.ResourceID != 7 || msg.Origin != "s2" {
		t.Fatalf("unexpected message %#v", msg)
	}
}

func TestAnnouncerPublishesAndFallsBack(t *testing.T) {
	b, inv := &broadcastLog{}, &invalidationLog{}
	pub := &stubPublisher{}
	a := NewAnnouncer(pub, NewFanoutUseCase(b, inv))
	change := adminport.Change{Section: "tables", Action: adminport.ActionCreated, ResourceID: 2, Origin: "s1"}

	a.Notify(context.Background(), change)
	if len(pub.published) != 1 || len(b.messages) != 0 {
		t.Fatalf("published change must not be applied locally: %d published, %d local", len(pub.published), len(b.messages))
	}

	pub.err = errors.New("broker down")
	a.Notify(context.Background(), change)
	if len(b.messages) != 1 || len(inv.calls) != 1 {
		t.Fatalf("failed publish must fall back to local fan-out")
	}
}
