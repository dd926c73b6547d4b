package domain

import (
	"strconv"
	"time"

	customers "infiniteLeafWeb/internal/modules/customers/domain"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
)

// StartTimeLayout is the wire format used when a reservation is created from the
// booking wizard: local wall-clock time with seconds, no zone.
const StartTimeLayout = "2006-01-02T15:04:05"

// Reservation books a table for a customer. A reservation always references an
// existing customer; availability and double-booking rules live upstream.
type Reservation struct {
	ID             int                 `json:"id"`
	StartTime      Timestamp           `json:"startTime"`
	NumberOfGuests int                 `json:"numberOfGuests"`
	CafeTableID    int                 `json:"cafeTableId"`
	CafeTable      *tables.Table       `json:"cafeTable,omitempty"`
	CustomerID     int                 `json:"customerId"`
	Customer       *customers.Customer `json:"customer,omitempty"`
}

// ReservationInput is the create/update payload.
type ReservationInput struct {
	StartTime      string `json:"startTime"`
	NumberOfGuests int    `json:"numberOfGuests"`
	CafeTableID    int    `json:"cafeTableId"`
	CustomerID     int    `json:"customerId"`
}

// CustomerName falls back to the id when the customer was not expanded.
func (r Reservation) CustomerName() string {
	if r.Customer != nil && r.Customer.Name != "" {
		return r.Customer.Name
	}
	return "Customer #" + strconv.Itoa(r.CustomerID)
}

// TableLabel renders "Table N" using the expanded table when present.
func (r Reservation) TableLabel() string {
	if r.CafeTable != nil {
		return r.CafeTable.Label()
	}
	return "Table #" + strconv.Itoa(r.CafeTableID)
}

// GuestsLabel renders the dashboard column.
func (r Reservation) GuestsLabel() string {
	return strconv.Itoa(r.NumberOfGuests) + " guests"
}

// WhenLabel renders "Jun 1, 2025 at 6:30 PM".
func (r Reservation) WhenLabel() string {
	if r.StartTime.IsZero() {
		return ""
	}
	return r.StartTime.Format("Jan 2, 2006") + " at " + r.StartTime.Format("3:04 PM")
}

func (r Reservation) Fields() map[string]any {
	return map[string]any{
		"id":             r.ID,
		"startTime":      r.StartTime,
		"numberOfGuests": r.NumberOfGuests,
		"cafeTableId":    r.CafeTableID,
		"customerId":     r.CustomerID,
	}
}

// Timestamp accepts the upstream's zone-less datetimes as well as RFC 3339.
// Floating marks values that carried no zone; they are kept as wall-clock time.
type Timestamp struct {
	time.Time
	Floating bool
}

// In converts zoned values to loc and leaves floating wall-clock values alone.
func (t Timestamp) In(loc *time.Location) time.Time {
	if t.Floating || loc == nil {
		return t.Time
	}
	return t.Time.In(loc)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	StartTimeLayout,
	"2006-01-02T15:04",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw, err := strconv.Unquote(string(data))
	if err != nil || raw == "" {
		// null or non-string: leave zero
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	t.Floating = !hasZone(raw)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.Floating {
		return []byte(strconv.Quote(t.Format(StartTimeLayout))), nil
	}
	return []byte(strconv.Quote(t.Format(time.RFC3339))), nil
}

// ParseTimestamp reads any of the accepted layouts; zone-less values are read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func hasZone(raw string) bool {
	if len(raw) < 6 {
		return false
	}
	if raw[len(raw)-1] == 'Z' || raw[len(raw)-1] == 'z' {
		return true
	}
	tail := raw[len(raw)-6:]
	return (tail[0] == '+' || tail[0] == '-') && tail[3] == ':'
}
