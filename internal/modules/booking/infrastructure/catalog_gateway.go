package infrastructure

import (
	"context"

	"infiniteLeafWeb/internal/modules/booking/application/port"
	catalog "infiniteLeafWeb/internal/modules/catalog/application/usecase"
	customers "infiniteLeafWeb/internal/modules/customers/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
)

// CatalogGateway books through the entity services as an anonymous caller.
type CatalogGateway struct {
	services *catalog.Services
}

func NewCatalogGateway(services *catalog.Services) *CatalogGateway {
	return &CatalogGateway{services: services}
}

func (g *CatalogGateway) CreateCustomer(ctx context.Context, input customers.CustomerInput) (*customers.Customer, error) {
	return g.services.Customers.Create(ctx, "", input)
}

func (g *CatalogGateway) CreateReservation(ctx context.Context, input reservations.ReservationInput) (*reservations.Reservation, error) {
	return g.services.Reservations.Create(ctx, "", input)
}

var _ port.BookingGateway = (*CatalogGateway)(nil)
