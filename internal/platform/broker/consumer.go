package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"infiniteLeafWeb/internal/modules/realtime/domain"
)

type KafkaConsumer struct {
	reader *kafka.Reader
	prefix string
}

func NewKafkaConsumer(brokers []string, groupID, topic, prefix string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			StartOffset: kafka.LastOffset,
		}),
		prefix: prefix,
	}
}

// Consume reads until ctx is cancelled, handing every decoded message to
// handler. Handler errors are logged and the message is still committed.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(stream string, msg *domain.Message) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Warn("kafka read error", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		msg := decodeMessage(m, c.prefix)
		slog.Debug("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("section", msg.Section),
			slog.String("action", msg.Action),
			slog.Int("id", msg.ResourceID),
		)
		if err := handler(m.Topic, msg); err != nil {
			slog.Warn("kafka handler error", slog.Any("error", err))
		}
	}
}

// rawEvent is the broker payload. The id may arrive as a number or a string.
type rawEvent struct {
	Topic      string          `json:"topic"`
	Section    string          `json:"section"`
	Action     string          `json:"action"`
	ResourceID json.RawMessage `json:"id"`
	Origin     string          `json:"origin"`
	Timestamp  time.Time       `json:"timestamp"`
}

func encodeMessage(msg *domain.Message) ([]byte, error) {
	id, err := json.Marshal(msg.ResourceID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rawEvent{
		Topic:      msg.Topic,
		Section:    msg.Section,
		Action:     msg.Action,
		ResourceID: id,
		Origin:     msg.Origin,
		Timestamp:  msg.Timestamp,
	})
}

func decodeMessage(m kafka.Message, prefix string) *domain.Message {
	msg := &domain.Message{Timestamp: time.Now().UTC()}
	streamSection := strings.TrimPrefix(m.Topic, prefix)

	var event rawEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		msg.Section = streamSection
		msg.Action = strings.TrimSpace(string(m.Value))
		msg.Topic = domain.Topic(msg.Section, msg.Action)
		return msg
	}

	section, action := event.Section, event.Action
	if event.Topic != "" && (section == "" || action == "") {
		topicSection, topicAction := domain.SplitTopic(event.Topic)
		section = firstNonEmpty(section, topicSection)
		action = firstNonEmpty(action, topicAction)
	}
	msg.Section = firstNonEmpty(section, streamSection)
	msg.Action = firstNonEmpty(action, "unknown")
	msg.ResourceID = parseID(event.ResourceID)
	msg.Origin = event.Origin
	if !event.Timestamp.IsZero() {
		msg.Timestamp = event.Timestamp.UTC()
	}
	msg.Topic = firstNonEmpty(event.Topic, domain.Topic(msg.Section, msg.Action))
	return msg
}

func parseID(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, _ = strconv.Atoi(strings.TrimSpace(s))
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
