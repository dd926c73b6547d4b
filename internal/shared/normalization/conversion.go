package normalization

import (
	"math"
	"strconv"
	"strings"
)

// AsString trims and returns the string representation of value when possible.
func AsString(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

// AsInt coerces numeric values (including numeric strings) into Go ints.
func AsInt(value any) int {
	switch typed := value.(type) {
	case float64:
		return int(typed)
	case float32:
		return int(typed)
	case int:
		return typed
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case string:
		return int(AsFloat64(typed))
	default:
		return 0
	}
}

// AsFloat64 coerces numeric values (including numeric strings) into float64.
// Unparseable input yields 0.
func AsFloat64(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		return leadingFloat(typed)
	}
	return 0
}

// AsBool reads checkbox-style values: "on", "true", "1" and real booleans.
func AsBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "on", "true", "1", "yes", "checked":
			return true
		}
	}
	return false
}

// leadingFloat parses the longest numeric prefix of raw, so "12.5kg" reads as 12.5.
func leadingFloat(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	}
	end := 0
	seenDot, seenDigit := false, false
scan:
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0
	}
	parsed, err := strconv.ParseFloat(trimmed[:end], 64)
	if err != nil {
		return 0
	}
	return parsed
}
