package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"infiniteLeafWeb/internal/shared/normalization"
)

var (
	ErrInvalidTransition = errors.New("invalid modal transition")
	ErrValidation        = errors.New("form has missing required fields")
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), string(ModeEdit)) {
		return ModeEdit
	}
	return ModeCreate
}

type ModalState string

const (
	ModalClosed     ModalState = "closed"
	ModalOpen       ModalState = "open"
	ModalSubmitting ModalState = "submitting"
)

// Modal is the create/edit form: closed -> open(create|edit) -> submitting -> closed.
// A failed submission goes back to open with SubmitError set.
type Modal struct {
	State       ModalState
	Section     Section
	Mode        Mode
	RecordID    int
	Fields      []Field
	Values      map[string]string
	Errors      map[string]string
	SubmitError string
}

func NewModal() *Modal {
	return &Modal{State: ModalClosed}
}

// Open selects the schema for section and, in edit mode, pre-fills every field
// whose name matches a key of record. options populate select fields by name.
func (m *Modal) Open(section Section, mode Mode, id int, record map[string]any, options map[string][]Option, loc *time.Location) error {
	if m.State != ModalClosed {
		return fmt.Errorf("%w: open from %s", ErrInvalidTransition, m.State)
	}
	fields := section.Fields()
	for i := range fields {
		if opts, ok := options[fields[i].Name]; ok {
			fields[i].Options = opts
		}
	}

	m.Section = section
	m.Mode = mode
	m.RecordID = 0
	m.Fields = fields
	m.Values = make(map[string]string, len(fields))
	m.Errors = make(map[string]string)
	m.SubmitError = ""

	if mode == ModeEdit {
		m.RecordID = id
		for _, field := range fields {
			if value, ok := record[field.Name]; ok && value != nil {
				m.Values[field.Name] = field.formatValue(value, loc)
			}
		}
	}
	m.State = ModalOpen
	return nil
}

// Bind copies submitted values for the schema's fields. Unchecked checkboxes
// are simply absent from a form post and bind as "".
func (m *Modal) Bind(form map[string]string) {
	for _, field := range m.Fields {
		m.Values[field.Name] = form[field.Name]
	}
}

// Validate checks that every required, non-checkbox field is non-empty after trimming.
func (m *Modal) Validate() bool {
	m.Errors = make(map[string]string)
	for _, field := range m.Fields {
		if !field.Required || field.Kind == KindCheckbox {
			continue
		}
		if strings.TrimSpace(m.Values[field.Name]) == "" {
			m.Errors[field.Name] = field.Label + " is required"
		}
	}
	return len(m.Errors) == 0
}

// BeginSubmit moves open -> submitting. Invalid forms stay open with Errors set.
func (m *Modal) BeginSubmit() error {
	if m.State != ModalOpen {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, m.State)
	}
	if !m.Validate() {
		return ErrValidation
	}
	m.SubmitError = ""
	m.State = ModalSubmitting
	return nil
}

// Payload coerces the bound values into the JSON body for the upstream API.
func (m *Modal) Payload(loc *time.Location) (map[string]any, error) {
	payload := make(map[string]any, len(m.Fields))
	for _, field := range m.Fields {
		value, err := field.coerce(m.Values[field.Name], loc)
		if err != nil {
			return nil, err
		}
		payload[field.Name] = value
	}
	return payload, nil
}

// Fail returns a submitting modal to open, keeping the user's input.
func (m *Modal) Fail(message string) error {
	if m.State != ModalSubmitting {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, m.State)
	}
	m.SubmitError = message
	m.State = ModalOpen
	return nil
}

// Complete closes the modal after a successful submission.
func (m *Modal) Complete() error {
	if m.State != ModalSubmitting {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, m.State)
	}
	m.State = ModalClosed
	return nil
}

// Close dismisses the modal from any state except submitting.
func (m *Modal) Close() error {
	if m.State == ModalSubmitting {
		return fmt.Errorf("%w: close while submitting", ErrInvalidTransition)
	}
	m.State = ModalClosed
	return nil
}

func (m *Modal) IsOpen() bool { return m.State != ModalClosed }

func (m *Modal) Heading() string {
	if m.Mode == ModeEdit {
		return "Edit " + m.Section.Title()
	}
	return "Create " + m.Section.Title()
}

func (m *Modal) Subtitle() string {
	if m.Mode == ModeEdit {
		return "Update the information below"
	}
	return "Fill in the details below"
}

func (m *Modal) SubmitLabel() string {
	if m.Mode == ModeEdit {
		return "Update"
	}
	return "Create"
}

type DeleteState string

const (
	DeleteClosed   DeleteState = "closed"
	DeleteOpen     DeleteState = "open"
	DeleteDeleting DeleteState = "deleting"
)

// DeleteDialog is the confirmation flow: closed -> open -> deleting -> closed.
type DeleteDialog struct {
	State    DeleteState
	Section  Section
	RecordID int
	ItemName string
	Alert    string
}

func NewDeleteDialog() *DeleteDialog {
	return &DeleteDialog{State: DeleteClosed}
}

func (d *DeleteDialog) Open(section Section, id int, record map[string]any) error {
	if d.State != DeleteClosed {
		return fmt.Errorf("%w: open delete from %s", ErrInvalidTransition, d.State)
	}
	d.Section = section
	d.RecordID = id
	d.ItemName = ItemName(record, id)
	d.Alert = ""
	d.State = DeleteOpen
	return nil
}

// Message is the confirmation prompt.
func (d *DeleteDialog) Message() string {
	return `Are you sure you want to delete "` + d.ItemName + `"? This action cannot be undone.`
}

func (d *DeleteDialog) Begin() error {
	if d.State != DeleteOpen {
		return fmt.Errorf("%w: confirm delete from %s", ErrInvalidTransition, d.State)
	}
	d.State = DeleteDeleting
	return nil
}

func (d *DeleteDialog) Complete() error {
	if d.State != DeleteDeleting {
		return fmt.Errorf("%w: complete delete from %s", ErrInvalidTransition, d.State)
	}
	d.State = DeleteClosed
	return nil
}

// Fail closes the dialog and raises an alert carrying the error.
func (d *DeleteDialog) Fail(message string) error {
	if d.State != DeleteDeleting {
		return fmt.Errorf("%w: fail delete from %s", ErrInvalidTransition, d.State)
	}
	d.Alert = "Delete failed: " + message
	d.State = DeleteClosed
	return nil
}

func (d *DeleteDialog) Cancel() {
	if d.State == DeleteOpen {
		d.State = DeleteClosed
	}
}

// ItemName picks the label of a record for the confirmation prompt: its name,
// else its table number, else its id.
func ItemName(record map[string]any, id int) string {
	if name := normalization.AsString(record["name"]); name != "" {
		return name
	}
	if number := normalization.AsString(record["tableNumber"]); number != "" {
		return number
	}
	if rid := normalization.AsString(record["id"]); rid != "" {
		return rid
	}
	return fmt.Sprint(id)
}
