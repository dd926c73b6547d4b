package port

import (
	"context"

	customers "infiniteLeafWeb/internal/modules/customers/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
)

// AvailabilityFinder looks up free tables through the public endpoint.
type AvailabilityFinder interface {
	Available(ctx context.Context, startTime string, guests int) ([]tables.Table, error)
}

// BookingGateway creates the records a confirmed booking needs. Both calls are
// made without a token.
type BookingGateway interface {
	CreateCustomer(ctx context.Context, input customers.CustomerInput) (*customers.Customer, error)
	CreateReservation(ctx context.Context, input reservations.ReservationInput) (*reservations.Reservation, error)
}
