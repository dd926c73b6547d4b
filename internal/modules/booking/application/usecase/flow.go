package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	adminport "infiniteLeafWeb/internal/modules/admin/application/port"
	"infiniteLeafWeb/internal/modules/booking/application/port"
	"infiniteLeafWeb/internal/modules/booking/domain"
	customers "infiniteLeafWeb/internal/modules/customers/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
)

var ErrNotConfirmable = errors.New("booking is not on the confirmation step")

// Flow runs the booking wizard's transitions that need the upstream API.
type Flow struct {
	finder   port.AvailabilityFinder
	gateway  port.BookingGateway
	notifier adminport.Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewFlow(finder port.AvailabilityFinder, gateway port.BookingGateway, notifier adminport.Notifier, loc *time.Location) *Flow {
	if loc == nil {
		loc = time.Local
	}
	return &Flow{finder: finder, gateway: gateway, notifier: notifier, loc: loc, now: time.Now}
}

// WithClock swaps the time source, used by tests.
func (f *Flow) WithClock(now func() time.Time) *Flow {
	if now != nil {
		f.now = now
	}
	return f
}

func (f *Flow) Now() time.Time { return f.now() }

func (f *Flow) Location() *time.Location { return f.loc }

// Next validates the current step and advances. Leaving step 2 fetches the
// available tables; a failed fetch raises a toast but still advances.
func (f *Flow) Next(ctx context.Context, w *domain.Wizard, form map[string]string) {
	if w.Done() {
		return
	}
	w.Bind(form)
	now := f.now()
	if err := w.Validate(now, f.loc); err != nil {
		w.Notify(err.Error(), now)
		return
	}
	if w.Step == domain.StepPartySize {
		f.loadTables(ctx, w)
	}
	w.Advance()
}

func (f *Flow) Previous(w *domain.Wizard) {
	w.Back()
}

// GoTo jumps to a step already reached. Landing on the table step re-fetches availability when
// date, time and party size are known.
func (f *Flow) GoTo(ctx context.Context, w *domain.Wizard, step domain.Step) {
	if !w.GoTo(step) {
		return
	}
	if step == domain.StepTableSelect && w.Details.Date != "" && w.Details.Guests > 0 {
		f.loadTables(ctx, w)
	}
}

// Confirm creates the customer and then the reservation. Incomplete details
// send the guest back to the first failing step; an upstream failure keeps the
// wizard on the confirmation step. Both raise a toast.
func (f *Flow) Confirm(ctx context.Context, w *domain.Wizard) error {
	if w.Step != domain.StepConfirm {
		return ErrNotConfirmable
	}
	now := f.now()
	if step, err := w.ValidateAll(now, f.loc); err != nil {
		w.Rewind(step)
		w.Notify(err.Error(), now)
		return err
	}

	customer, err := f.gateway.CreateCustomer(ctx, customers.CustomerInput{
		Name:        w.Details.Name,
		PhoneNumber: w.Details.Phone,
	})
	if err != nil {
		return f.confirmFailed(w, fmt.Errorf("create customer: %w", err))
	}
	f.notify(ctx, "customers", customer.ID)

	reservation, err := f.gateway.CreateReservation(ctx, reservations.ReservationInput{
		StartTime:      w.StartTime(),
		NumberOfGuests: w.Details.Guests,
		CafeTableID:    w.Details.TableID,
		CustomerID:     customer.ID,
	})
	if err != nil {
		return f.confirmFailed(w, fmt.Errorf("create reservation: %w", err))
	}
	f.notify(ctx, "reservations", reservation.ID)

	slog.Info("booking confirmed",
		slog.Int("reservationId", reservation.ID),
		slog.Int("customerId", customer.ID),
		slog.Int("tableId", w.Details.TableID),
		slog.String("startTime", w.StartTime()),
	)
	w.Succeed(reservation.ID)
	return nil
}

// Reset starts over from step 1.
func (f *Flow) Reset() *domain.Wizard {
	return domain.New()
}

func (f *Flow) loadTables(ctx context.Context, w *domain.Wizard) {
	startTime, err := w.AvailabilityTime(f.loc)
	if err == nil {
		var list []tables.Table
		list, err = f.finder.Available(ctx, startTime, w.Details.Guests)
		if err == nil {
			w.SetTables(list)
			return
		}
	}
	slog.Warn("available tables fetch failed", slog.String("date", w.Details.Date), slog.String("time", w.Details.Time), slog.Int("guests", w.Details.Guests), slog.Any("error", err))
	w.ClearTables()
	w.Notify(domain.MsgTablesFailed, f.now())
}

func (f *Flow) confirmFailed(w *domain.Wizard, err error) error {
	slog.Warn("booking confirmation failed", slog.Any("error", err))
	w.Notify(domain.MsgConfirmFailed, f.now())
	return err
}

func (f *Flow) notify(ctx context.Context, section string, id int) {
	if f.notifier == nil {
		return
	}
	f.notifier.Notify(ctx, adminport.Change{Section: section, Action: adminport.ActionCreated, ResourceID: id, Origin: "booking"})
}
