package domain

import (
	"strconv"

	"infiniteLeafWeb/internal/shared/normalization"
)

// Table is a physical cafe table as exposed by the upstream API.
// Uniqueness of TableNumber is enforced upstream, never here.
type Table struct {
	ID          int `json:"id"`
	TableNumber int `json:"tableNumber"`
	Capacity    int `json:"capacity"`
}

// TableInput is the create/update payload.
type TableInput struct {
	TableNumber int `json:"tableNumber"`
	Capacity    int `json:"capacity"`
}

// Label renders "Table N".
func (t Table) Label() string {
	return "Table " + strconv.Itoa(t.TableNumber)
}

// CapacityLabel renders the dashboard column, always plural.
func (t Table) CapacityLabel() string {
	return strconv.Itoa(t.Capacity) + " people"
}

// SeatsLabel renders the booking card variant ("1 person", "4 people").
func (t Table) SeatsLabel() string {
	return normalization.Plural(t.Capacity, "person", "people")
}

// Fields exposes the record keyed by wire name, used to pre-fill edit forms.
func (t Table) Fields() map[string]any {
	return map[string]any{
		"id":          t.ID,
		"tableNumber": t.TableNumber,
		"capacity":    t.Capacity,
	}
}

// NormalizeTable builds a Table from a loosely typed payload such as a broker event.
func NormalizeTable(raw map[string]any) (Table, bool) {
	id := normalization.AsInt(raw["id"])
	if id == 0 {
		return Table{}, false
	}
	return Table{
		ID:          id,
		TableNumber: normalization.AsInt(raw["tableNumber"]),
		Capacity:    normalization.AsInt(raw["capacity"]),
	}, true
}
