package domain

import (
	"fmt"
	"strings"
	"time"

	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	"infiniteLeafWeb/internal/shared/normalization"
)

type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindTel      FieldKind = "tel"
	KindDateTime FieldKind = "datetime-local"
	KindSelect   FieldKind = "select"
	KindTextarea FieldKind = "textarea"
	KindCheckbox FieldKind = "checkbox"
	KindURL      FieldKind = "url"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Required    bool
	Placeholder string
	Step        string
	Options     []Option
}

// InputLayout is the value format of datetime-local inputs.
const InputLayout = "2006-01-02T15:04"

// CanonicalLayout is the UTC timestamp format sent upstream for datetime fields.
const CanonicalLayout = "2006-01-02T15:04:05.000Z"

// formatValue renders a record value the way the field's input expects it.
func (f Field) formatValue(value any, loc *time.Location) string {
	switch f.Kind {
	case KindDateTime:
		switch typed := value.(type) {
		case reservations.Timestamp:
			if typed.IsZero() {
				return ""
			}
			return typed.In(loc).Format(InputLayout)
		case time.Time:
			if typed.IsZero() {
				return ""
			}
			return typed.In(loc).Format(InputLayout)
		case string:
			parsed, err := reservations.ParseTimestamp(typed)
			if err != nil {
				return typed
			}
			return parsed.In(loc).Format(InputLayout)
		}
		return ""
	case KindCheckbox:
		if normalization.AsBool(value) {
			return "true"
		}
		return ""
	default:
		return normalization.AsString(value)
	}
}

// coerce converts a submitted string into the JSON value sent upstream.
func (f Field) coerce(raw string, loc *time.Location) (any, error) {
	trimmed := strings.TrimSpace(raw)
	switch f.Kind {
	case KindNumber:
		return normalization.AsFloat64(trimmed), nil
	case KindSelect:
		return normalization.AsInt(trimmed), nil
	case KindCheckbox:
		return normalization.AsBool(trimmed), nil
	case KindDateTime:
		if trimmed == "" {
			return nil, nil
		}
		if loc == nil {
			loc = time.Local
		}
		parsed, err := time.ParseInLocation(InputLayout, trimmed, loc)
		if err != nil {
			parsed, err = time.ParseInLocation(reservations.StartTimeLayout, trimmed, loc)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: invalid date", f.Label)
		}
		return parsed.UTC().Format(CanonicalLayout), nil
	case KindURL:
		if trimmed == "" {
			return nil, nil
		}
		return trimmed, nil
	default:
		return trimmed, nil
	}
}
