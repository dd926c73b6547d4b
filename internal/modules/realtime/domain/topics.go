package domain

import "strings"

const (
	SystemEntity = "system"

	TopicSystemConnected = SystemEntity + ".connected"

	ActionConnected = "connected"
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
)

// ChangeActions are the actions live dashboards react to.
var ChangeActions = []string{ActionCreated, ActionUpdated, ActionDeleted}

// Topic returns the canonical "<section>.<action>" topic.
func Topic(section, action string) string {
	cleanSection := strings.TrimSpace(section)
	cleanAction := strings.TrimSpace(action)
	if cleanSection == "" || cleanAction == "" {
		return ""
	}
	return cleanSection + "." + cleanAction
}

// StreamName is the broker topic carrying every change of section.
func StreamName(prefix, section string) string {
	return prefix + strings.TrimSpace(section)
}

// SplitTopic is the inverse of Topic. A topic without an action yields the
// last dotted segment as the section and an empty action.
func SplitTopic(topic string) (section, action string) {
	parts := strings.Split(strings.TrimSpace(topic), ".")
	if len(parts) >= 2 {
		section = strings.TrimSpace(parts[len(parts)-2])
		action = strings.TrimSpace(parts[len(parts)-1])
		if section != "" && action != "" {
			return section, action
		}
	}
	return strings.TrimSpace(parts[len(parts)-1]), ""
}
