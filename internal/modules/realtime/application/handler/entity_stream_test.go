package handler

import (
	"context"
	"testing"

	admin "infiniteLeafWeb/internal/modules/admin/domain"
	"infiniteLeafWeb/internal/modules/realtime/application/usecase"
	"infiniteLeafWeb/internal/modules/realtime/domain"
)

type broadcastLog struct{ messages []*domain.Message }

func (b *broadcastLog) Broadcast(_ context.Context, msg *domain.Message) {
	b.messages = append(b.messages, msg)
}

type staleSections struct{ sections []admin.Section }

func (s *staleSections) Invalidate(section admin.Section, _ string) int {
	s.sections = append(s.sections, section)
	return 0
}

func TestEntityStreamFiltersActionsAndFillsSection(t *testing.T) {
	b, stale := &broadcastLog{}, &staleSections{}
	h := NewEntityStreamHandler("customers", "infiniteleaf.customers", domain.ChangeActions, usecase.NewFanoutUseCase(b, stale))

	if h.Topic() != "infiniteleaf.customers" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}

	if err := h.Handle(context.Background(), &domain.Message{Action: "viewed"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(b.messages) != 0 {
		t.Fatal("filtered action must not be broadcast")
	}

	if err := h.Handle(context.Background(), &domain.Message{Action: "Updated", ResourceID: 3}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(b.messages) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(b.messages))
	}
	if got := b.messages[0]; got.Section != "customers" || got.Topic != "customers.updated" {
		t.Fatalf("unexpected message %#v", got)
	}
	if len(stale.sections) != 1 || stale.sections[0] != admin.SectionCustomers {
		t.Fatalf("expected customers to go stale, got %#v", stale.sections)
	}
}
