package usecase

import (
	"strconv"

	"infiniteLeafWeb/internal/modules/admin/domain"
	customers "infiniteLeafWeb/internal/modules/customers/domain"
	menu "infiniteLeafWeb/internal/modules/menu/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
)

// Snapshot holds the cached collections of every section.
type Snapshot struct {
	Tables       []tables.Table
	Customers    []customers.Customer
	Reservations []reservations.Reservation
	Menu         []menu.MenuItem
}

// Row is one rendered record of a section list.
type Row struct {
	ID    int
	Cells []string
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Tables:       append([]tables.Table(nil), s.Tables...),
		Customers:    append([]customers.Customer(nil), s.Customers...),
		Reservations: append([]reservations.Reservation(nil), s.Reservations...),
		Menu:         append([]menu.MenuItem(nil), s.Menu...),
	}
}

// Count returns how many records the section holds.
func (s Snapshot) Count(section domain.Section) int {
	switch section {
	case domain.SectionTables:
		return len(s.Tables)
	case domain.SectionCustomers:
		return len(s.Customers)
	case domain.SectionReservations:
		return len(s.Reservations)
	case domain.SectionMenu:
		return len(s.Menu)
	}
	return 0
}

// Rows renders the section's records with their entity-specific columns.
func (s Snapshot) Rows(section domain.Section) []Row {
	var rows []Row
	switch section {
	case domain.SectionTables:
		for _, t := range s.Tables {
			rows = append(rows, Row{ID: t.ID, Cells: []string{strconv.Itoa(t.ID), strconv.Itoa(t.TableNumber), t.CapacityLabel()}})
		}
	case domain.SectionCustomers:
		for _, c := range s.Customers {
			rows = append(rows, Row{ID: c.ID, Cells: []string{strconv.Itoa(c.ID), c.Name, c.PhoneNumber}})
		}
	case domain.SectionReservations:
		for _, r := range s.Reservations {
			rows = append(rows, Row{ID: r.ID, Cells: []string{strconv.Itoa(r.ID), r.CustomerName(), r.WhenLabel(), r.GuestsLabel(), r.TableLabel()}})
		}
	case domain.SectionMenu:
		for _, m := range s.Menu {
			popular := "-"
			if m.IsPopular {
				popular = "✓ Popular"
			}
			rows = append(rows, Row{ID: m.ID, Cells: []string{strconv.Itoa(m.ID), m.Name, m.PriceLabel(), m.Description, popular}})
		}
	}
	return rows
}

// Record returns the wire-keyed fields of one record, used for edit pre-fill
// and delete prompts.
func (s Snapshot) Record(section domain.Section, id int) (map[string]any, bool) {
	switch section {
	case domain.SectionTables:
		for _, t := range s.Tables {
			if t.ID == id {
				return t.Fields(), true
			}
		}
	case domain.SectionCustomers:
		for _, c := range s.Customers {
			if c.ID == id {
				return c.Fields(), true
			}
		}
	case domain.SectionReservations:
		for _, r := range s.Reservations {
			if r.ID == id {
				return r.Fields(), true
			}
		}
	case domain.SectionMenu:
		for _, m := range s.Menu {
			if m.ID == id {
				return m.Fields(), true
			}
		}
	}
	return nil, false
}

// SelectOptions feeds the reservation form's table and customer pickers.
func (s Snapshot) SelectOptions() map[string][]domain.Option {
	tableOpts := make([]domain.Option, 0, len(s.Tables))
	for _, t := range s.Tables {
		tableOpts = append(tableOpts, domain.Option{Value: strconv.Itoa(t.ID), Label: t.Label() + " (" + t.SeatsLabel() + ")"})
	}
	customerOpts := make([]domain.Option, 0, len(s.Customers))
	for _, c := range s.Customers {
		customerOpts = append(customerOpts, domain.Option{Value: strconv.Itoa(c.ID), Label: c.Name + " - " + c.PhoneNumber})
	}
	return map[string][]domain.Option{
		"cafeTableId": tableOpts,
		"customerId":  customerOpts,
	}
}
