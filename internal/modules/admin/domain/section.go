package domain

import (
	"errors"
	"fmt"

	"infiniteLeafWeb/internal/shared/normalization"
)

var ErrUnknownSection = errors.New("unknown section")

// Section is one of the four dashboard tabs. The set is closed: every switch over
// Section below is exhaustive and unknown names are rejected by ParseSection.
type Section int

const (
	SectionTables Section = iota
	SectionCustomers
	SectionReservations
	SectionMenu
)

// DefaultSection is shown when no section has been chosen yet.
const DefaultSection = SectionTables

// Sections lists every section in tab order.
var Sections = []Section{SectionTables, SectionCustomers, SectionReservations, SectionMenu}

func ParseSection(raw string) (Section, error) {
	switch normalization.NormalizeEntity(raw) {
	case "tables":
		return SectionTables, nil
	case "customers":
		return SectionCustomers, nil
	case "reservations":
		return SectionReservations, nil
	case "menu":
		return SectionMenu, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSection, raw)
}

// String is the canonical slug used in URLs, topics and cache keys.
func (s Section) String() string {
	switch s {
	case SectionTables:
		return "tables"
	case SectionCustomers:
		return "customers"
	case SectionReservations:
		return "reservations"
	case SectionMenu:
		return "menu"
	}
	return "unknown"
}

// Title is the singular record name used in modal headings.
func (s Section) Title() string {
	switch s {
	case SectionTables:
		return "Table"
	case SectionCustomers:
		return "Customer"
	case SectionReservations:
		return "Reservation"
	case SectionMenu:
		return "Menu Item"
	}
	return ""
}

// Heading is the tab label.
func (s Section) Heading() string {
	switch s {
	case SectionTables:
		return "Tables"
	case SectionCustomers:
		return "Customers"
	case SectionReservations:
		return "Reservations"
	case SectionMenu:
		return "Menu"
	}
	return ""
}

// EmptyMessage is rendered when the section has no records.
func (s Section) EmptyMessage() string {
	switch s {
	case SectionTables:
		return "No tables yet"
	case SectionCustomers:
		return "No customers yet"
	case SectionReservations:
		return "No reservations yet"
	case SectionMenu:
		return "No menu items yet"
	}
	return "Nothing here yet"
}

// Columns are the table headers of the section list.
func (s Section) Columns() []string {
	switch s {
	case SectionTables:
		return []string{"ID", "Table Number", "Capacity"}
	case SectionCustomers:
		return []string{"ID", "Name", "Phone"}
	case SectionReservations:
		return []string{"ID", "Customer", "Date & Time", "Guests", "Table"}
	case SectionMenu:
		return []string{"ID", "Name", "Price", "Description", "Popular"}
	}
	return nil
}

// Fields returns the modal form schema for the section.
func (s Section) Fields() []Field {
	switch s {
	case SectionTables:
		return []Field{
			{Name: "tableNumber", Label: "Table Number", Kind: KindNumber, Required: true, Placeholder: "e.g., 5"},
			{Name: "capacity", Label: "Capacity", Kind: KindNumber, Required: true, Placeholder: "e.g., 4"},
		}
	case SectionCustomers:
		return []Field{
			{Name: "name", Label: "Customer Name", Kind: KindText, Required: true, Placeholder: "Full name"},
			{Name: "phoneNumber", Label: "Phone Number", Kind: KindTel, Required: true, Placeholder: "e.g., 070-123 45 67"},
		}
	case SectionReservations:
		return []Field{
			{Name: "startTime", Label: "Date & Time", Kind: KindDateTime, Required: true},
			{Name: "numberOfGuests", Label: "Number of Guests", Kind: KindNumber, Required: true, Placeholder: "e.g., 2"},
			{Name: "cafeTableId", Label: "Table", Kind: KindSelect, Required: true},
			{Name: "customerId", Label: "Customer", Kind: KindSelect, Required: true},
		}
	case SectionMenu:
		return []Field{
			{Name: "name", Label: "Item Name", Kind: KindText, Required: true, Placeholder: "e.g., Matcha Latte"},
			{Name: "price", Label: "Price", Kind: KindNumber, Required: true, Placeholder: "0.00", Step: "0.01"},
			{Name: "description", Label: "Description", Kind: KindTextarea, Required: true, Placeholder: "Describe the item (markdown allowed)"},
			{Name: "isPopular", Label: "Mark as popular", Kind: KindCheckbox},
			{Name: "imageUrl", Label: "Image URL", Kind: KindURL, Placeholder: "https://"},
		}
	}
	return nil
}
