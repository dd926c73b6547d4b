package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"infiniteLeafWeb/internal/modules/catalog/application/port"
	customers "infiniteLeafWeb/internal/modules/customers/domain"
	menu "infiniteLeafWeb/internal/modules/menu/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
)

const (
	TablesResource       = "api/cafetables"
	CustomersResource    = "api/customers"
	ReservationsResource = "api/reservations"
	MenuItemsResource    = "api/menuitems"
)

// TableService adds the public availability lookup.
type TableService struct {
	*Service[tables.Table]
}

// Available lists tables free at startTime for the party size. The call is made
// without a token: the endpoint is public on the upstream side too.
func (s *TableService) Available(ctx context.Context, startTime string, guests int) ([]tables.Table, error) {
	query := url.Values{}
	query.Set("startTime", startTime)
	query.Set("numberOfGuests", strconv.Itoa(guests))

	var items []tables.Table
	if err := s.requester.Get(ctx, "", s.resource+"/available?"+query.Encode()).Decode(&items); err != nil {
		return nil, fmt.Errorf("available tables: %w", err)
	}
	if items == nil {
		items = []tables.Table{}
	}
	return items, nil
}

// MenuService adds the public popular-items listing.
type MenuService struct {
	*Service[menu.MenuItem]
}

func (s *MenuService) Popular(ctx context.Context) ([]menu.MenuItem, error) {
	var items []menu.MenuItem
	if err := s.requester.Get(ctx, "", s.resource+"/popular").Decode(&items); err != nil {
		return nil, fmt.Errorf("popular menu items: %w", err)
	}
	if items == nil {
		items = []menu.MenuItem{}
	}
	return items, nil
}

// Services groups the four entity services.
type Services struct {
	Tables       *TableService
	Customers    *Service[customers.Customer]
	Reservations *Service[reservations.Reservation]
	Menu         *MenuService
}

func NewServices(requester port.Requester) *Services {
	return &Services{
		Tables:       &TableService{Service: NewService[tables.Table](requester, TablesResource, "table")},
		Customers:    NewService[customers.Customer](requester, CustomersResource, "customer"),
		Reservations: NewService[reservations.Reservation](requester, ReservationsResource, "reservation"),
		Menu:         &MenuService{Service: NewService[menu.MenuItem](requester, MenuItemsResource, "menu item")},
	}
}
