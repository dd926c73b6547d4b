package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"

	tables "infiniteLeafWeb/internal/modules/tables/domain"
	"infiniteLeafWeb/internal/shared/normalization"
)

// Step is a position in the booking flow.
type Step int

const (
	StepDateTime Step = iota + 1
	StepPartySize
	StepTableSelect
	StepContact
	StepConfirm
	StepSuccess
)

// TotalSteps counts the navigable steps; Success is terminal and not navigable.
const TotalSteps = 5

// ToastTTL is how long a toast stays on screen.
const ToastTTL = 5 * time.Second

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// PartySizes are the guest counts offered on step 2.
var PartySizes = []int{1, 2, 3, 4, 5, 6, 8}

const (
	MsgMissingDateTime = "Please select both date and time"
	MsgPastDate        = "Please select a date from today onwards"
	MsgMissingGuests   = "Please select the number of guests"
	MsgMissingTable    = "Please select a table"
	MsgInvalidName     = "Please enter your full name"
	MsgInvalidPhone    = "Please enter a valid phone number"
	MsgTablesFailed    = "Failed to load available tables. Please try again."
	MsgConfirmFailed   = "Failed to confirm booking. Please try again."
)

// ValidationError blocks a step transition.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Details is what the guest has entered so far.
type Details struct {
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Guests      int    `json:"guests,omitempty"`
	TableID     int    `json:"tableId,omitempty"`
	TableNumber int    `json:"tableNumber,omitempty"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Requests    string `json:"requests,omitempty"`
}

type Toast struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the toast should still be shown.
func (t *Toast) Active(now time.Time) bool {
	return t != nil && t.Message != "" && now.Before(t.ExpiresAt)
}

// Wizard is the state of one guest's booking, kept in their session.
// Reached is the furthest step whose predecessors all passed validation.
type Wizard struct {
	Step          Step           `json:"step"`
	Reached       Step           `json:"reached,omitempty"`
	Details       Details        `json:"details"`
	Tables        []tables.Table `json:"tables,omitempty"`
	TablesLoaded  bool           `json:"tablesLoaded,omitempty"`
	Toast         *Toast         `json:"toast,omitempty"`
	ReservationID int            `json:"reservationId,omitempty"`
}

func New() *Wizard {
	return &Wizard{Step: StepDateTime, Reached: StepDateTime}
}

// Done reports whether the booking was confirmed.
func (w *Wizard) Done() bool { return w.Step == StepSuccess }

// Bind copies the inputs of the current step that are present in form.
// Changing an answer makes the later steps unreachable until they are
// walked again.
func (w *Wizard) Bind(form map[string]string) {
	before := w.Details
	defer func() {
		if w.Details != before {
			w.Reached = w.Step
		}
	}()
	set := func(key string, dst *string) {
		if v, ok := form[key]; ok {
			*dst = strings.TrimSpace(v)
		}
	}
	switch w.Step {
	case StepDateTime:
		set("date", &w.Details.Date)
		set("time", &w.Details.Time)
	case StepPartySize:
		if v, ok := form["guests"]; ok {
			w.Details.Guests = normalization.AsInt(strings.TrimSpace(v))
		}
	case StepTableSelect:
		if v, ok := form["tableId"]; ok {
			w.Details.TableID = normalization.AsInt(strings.TrimSpace(v))
		}
	case StepContact:
		set("name", &w.Details.Name)
		set("phone", &w.Details.Phone)
		set("requests", &w.Details.Requests)
	}
}

// Validate checks the current step's inputs. now and loc decide what "today" is.
func (w *Wizard) Validate(now time.Time, loc *time.Location) error {
	return w.validateStep(w.Step, now, loc)
}

// ValidateAll re-checks every input step and returns the first one that fails.
func (w *Wizard) ValidateAll(now time.Time, loc *time.Location) (Step, error) {
	for step := StepDateTime; step < StepConfirm; step++ {
		if err := w.validateStep(step, now, loc); err != nil {
			return step, err
		}
	}
	return StepConfirm, nil
}

func (w *Wizard) validateStep(step Step, now time.Time, loc *time.Location) error {
	switch step {
	case StepDateTime:
		return w.validateDateTime(now, loc)
	case StepPartySize:
		if !slices.Contains(PartySizes, w.Details.Guests) {
			return invalid(MsgMissingGuests)
		}
	case StepTableSelect:
		table, ok := w.selectedTable()
		if !ok {
			return invalid(MsgMissingTable)
		}
		w.Details.TableNumber = table.TableNumber
	case StepContact:
		if len([]rune(strings.TrimSpace(w.Details.Name))) < 2 {
			return invalid(MsgInvalidName)
		}
		if len([]rune(strings.TrimSpace(w.Details.Phone))) < 10 {
			return invalid(MsgInvalidPhone)
		}
	}
	return nil
}

func (w *Wizard) validateDateTime(now time.Time, loc *time.Location) error {
	if w.Details.Date == "" || w.Details.Time == "" {
		return invalid(MsgMissingDateTime)
	}
	day, err := time.Parse(dateLayout, w.Details.Date)
	if err != nil {
		return invalid(MsgMissingDateTime)
	}
	if _, err := time.Parse(clockLayout, w.Details.Time); err != nil {
		return invalid(MsgMissingDateTime)
	}
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(dateLayout)
	if day.Format(dateLayout) < today {
		return invalid(MsgPastDate)
	}
	return nil
}

func (w *Wizard) selectedTable() (tables.Table, bool) {
	if w.Details.TableID == 0 {
		return tables.Table{}, false
	}
	for _, t := range w.Tables {
		if t.ID == w.Details.TableID {
			return t, true
		}
	}
	return tables.Table{}, false
}

// Advance moves one step forward. Callers validate first.
func (w *Wizard) Advance() {
	if w.Step < StepConfirm {
		w.Step++
	}
	w.Reached = max(w.Reached, w.Step)
}

// CanReach reports whether GoTo(step) would be accepted.
func (w *Wizard) CanReach(step Step) bool {
	return !w.Done() && step >= StepDateTime && step <= max(w.Reached, w.Step)
}

// Back moves one step backward; it does nothing on step 1 or after success.
func (w *Wizard) Back() bool {
	if w.Step <= StepDateTime || w.Done() {
		return false
	}
	w.Step--
	return true
}

// GoTo jumps to a step the guest has already reached. Success is final.
func (w *Wizard) GoTo(step Step) bool {
	if !w.CanReach(step) {
		return false
	}
	w.Step = step
	return true
}

// SetTables stores the availability result. A previously chosen table that is
// no longer offered is cleared.
func (w *Wizard) SetTables(list []tables.Table) {
	w.Tables = list
	w.TablesLoaded = true
	if _, ok := w.selectedTable(); !ok {
		w.Details.TableID = 0
		w.Details.TableNumber = 0
	}
}

// ClearTables forgets a failed or outdated availability result.
func (w *Wizard) ClearTables() {
	w.Tables = nil
	w.TablesLoaded = false
}

// Notify raises a toast that expires after ToastTTL.
func (w *Wizard) Notify(message string, now time.Time) {
	w.Toast = &Toast{Message: message, ExpiresAt: now.Add(ToastTTL)}
}

// DismissToast drops the toast once it has been shown.
func (w *Wizard) DismissToast() { w.Toast = nil }

// Rewind sends the guest back to step, forgetting progress past it.
func (w *Wizard) Rewind(step Step) {
	w.Step = step
	w.Reached = step
}

// Succeed records the created reservation and enters the terminal state.
func (w *Wizard) Succeed(reservationID int) {
	w.ReservationID = reservationID
	w.Toast = nil
	w.Step = StepSuccess
}

// StartTime is the reservation start sent upstream: local wall-clock, seconds zeroed.
func (w *Wizard) StartTime() string {
	return w.Details.Date + "T" + w.Details.Time + ":00"
}

// AvailabilityTime is the chosen slot as a UTC instant, read in loc.
func (w *Wizard) AvailabilityTime(loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	at, err := time.ParseInLocation(dateLayout+"T"+clockLayout, w.Details.Date+"T"+w.Details.Time, loc)
	if err != nil {
		return "", err
	}
	return at.UTC().Format("2006-01-02T15:04:05.000Z"), nil
}

// DateLabel renders "Monday, January 2, 2006".
func (w *Wizard) DateLabel() string {
	day, err := time.Parse(dateLayout, w.Details.Date)
	if err != nil {
		return w.Details.Date
	}
	return day.Format("Monday, January 2, 2006")
}

// TimeLabel renders the 12-hour clock ("18:30" -> "6:30 PM").
func (w *Wizard) TimeLabel() string {
	return FormatClock(w.Details.Time)
}

func (w *Wizard) WhenLabel() string {
	return w.DateLabel() + " at " + w.TimeLabel()
}

// GuestsLabel renders "1 Guest" / "4 Guests".
func (w *Wizard) GuestsLabel() string {
	return normalization.Plural(w.Details.Guests, "Guest", "Guests")
}

// PeopleLabel renders "1 person" / "4 people".
func (w *Wizard) PeopleLabel() string {
	return normalization.Plural(w.Details.Guests, "person", "people")
}

func (w *Wizard) TableLabel() string {
	if w.Details.TableNumber == 0 {
		return ""
	}
	return "Table " + strconv.Itoa(w.Details.TableNumber)
}

// MinDate is the earliest date the date picker offers.
func MinDate(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(dateLayout)
}

// FormatClock turns "HH:MM" into "h:MM AM/PM"; malformed input is returned as is.
func FormatClock(raw string) string {
	parsed, err := time.Parse(clockLayout, strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return parsed.Format("3:04 PM")
}
