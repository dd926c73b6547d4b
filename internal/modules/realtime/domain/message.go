package domain

import (
	"strings"
	"time"
)

// Message is one change notification pushed to live dashboards. Origin is the
// session that caused it and never leaves the server.
type Message struct {
	Topic      string    `json:"topic"`
	Section    string    `json:"section,omitempty"`
	Action     string    `json:"action"`
	ResourceID int       `json:"id,omitempty"`
	Origin     string    `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChange builds the message announcing a mutation of section.
func NewChange(section, action string, id int, origin string, at time.Time) *Message {
	section = strings.TrimSpace(section)
	action = strings.ToLower(strings.TrimSpace(action))
	return &Message{
		Topic:      Topic(section, action),
		Section:    section,
		Action:     action,
		ResourceID: id,
		Origin:     origin,
		Timestamp:  at.UTC(),
	}
}

// Connected is the greeting sent right after a socket is accepted.
func Connected(at time.Time) *Message {
	return &Message{Topic: TopicSystemConnected, Action: ActionConnected, Timestamp: at.UTC()}
}

// IsChange reports whether the message describes a data mutation.
func (m *Message) IsChange() bool {
	switch m.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return m.Section != ""
	}
	return false
}
