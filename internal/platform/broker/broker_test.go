package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infiniteLeafWeb/internal/modules/realtime/domain"
)

func TestDecodeMessage(t *testing.T) {
	cases := []struct {
		name    string
		topic   string
		value   string
		section string
		action  string
		id      int
		origin  string
	}{
		{name: "full payload", topic: "infiniteleaf.menu", value: `{"section":"menu","action":"created","id":8,"origin":"s1"}`, section: "menu", action: "created", id: 8, origin: "s1"},
		{name: "string id", topic: "infiniteleaf.tables", value: `{"action":"deleted","id":"12"}`, section: "tables", action: "deleted", id: 12},
		{name: "topic only", topic: "infiniteleaf.customers", value: `{"topic":"customers.updated","id":3}`, section: "customers", action: "updated", id: 3},
		{name: "not json", topic: "infiniteleaf.reservations", value: `created`, section: "reservations", action: "created"},
		{name: "no action", topic: "infiniteleaf.menu", value: `{}`, section: "menu", action: "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := decodeMessage(kafka.Message{Topic: tc.topic, Value: []byte(tc.value)}, "infiniteleaf.")
			assert.Equal(t, tc.section, msg.Section)
			assert.Equal(t, tc.action, msg.Action)
			assert.Equal(t, tc.id, msg.ResourceID)
			assert.Equal(t, tc.origin, msg.Origin)
			assert.NotEmpty(t, msg.Topic)
		})
	}
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestPublisherWritesToSectionStream(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, prefix: "infiniteleaf.", timeout: time.Second}
	msg := domain.NewChange("reservations", "created", 4, "s9", time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC))

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "infiniteleaf.reservations", w.messages[0].Topic)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &payload))
	assert.Equal(t, "s9", payload["origin"])

	decoded := decodeMessage(w.messages[0], "infiniteleaf.")
	assert.Equal(t, msg.Topic, decoded.Topic)
	assert.Equal(t, 4, decoded.ResourceID)
	assert.Equal(t, "s9", decoded.Origin)
	assert.True(t, msg.Timestamp.Equal(decoded.Timestamp))

	w.err = errors.New("leader not available")
	assert.ErrorContains(t, p.Publish(context.Background(), msg), "publish reservations.created")
}

type emptyDispatcher struct{}

func (emptyDispatcher) Topics() []string { return []string{"infiniteleaf.menu"} }
func (emptyDispatcher) Dispatch(context.Context, string, *domain.Message) error {
	return nil
}

func TestStartKafkaConsumersWithoutBrokers(t *testing.T) {
	wg := StartKafkaConsumers(context.Background(), emptyDispatcher{}, nil, "group", "infiniteleaf.")
	wg.Wait()
}
