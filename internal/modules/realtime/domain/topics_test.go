package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTopic(t *testing.T) {
	if got := Topic(" tables ", "created"); got != "tables.created" {
		t.Fatalf("unexpected topic %q", got)
	}
	if got := Topic("", "created"); got != "" {
		t.Fatalf("expected empty topic, got %q", got)
	}
}

func TestSplitTopic(t *testing.T) {
	cases := []struct {
		topic   string
		section string
		action  string
	}{
		{"tables.created", "tables", "created"},
		{"infiniteleaf.menu.deleted", "menu", "deleted"},
		{"infiniteleaf.customers", "infiniteleaf", "customers"},
		{"reservations", "reservations", ""},
	}
	for _, tc := range cases {
		section, action := SplitTopic(tc.topic)
		if section != tc.section || action != tc.action {
			t.Fatalf("SplitTopic(%q) = %q, %q; want %q, %q", tc.topic, section, action, tc.section, tc.action)
		}
	}
}

func TestNewChangeHidesOrigin(t *testing.T) {
	msg := NewChange("menu", " Created ", 8, "session-1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if msg.Topic != "menu.created" || !msg.IsChange() {
		t.Fatalf("unexpected message %#v", msg)
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "session-1") {
		t.Fatalf("origin leaked into %s", raw)
	}
	if !strings.Contains(string(raw), `"id":8`) {
		t.Fatalf("missing id in %s", raw)
	}
}

func TestConnectedIsNotAChange(t *testing.T) {
	if Connected(time.Now()).IsChange() {
		t.Fatal("greeting must not count as a change")
	}
}
