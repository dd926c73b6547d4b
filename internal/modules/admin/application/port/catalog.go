package port

import (
	"context"

	customers "infiniteLeafWeb/internal/modules/customers/domain"
	menu "infiniteLeafWeb/internal/modules/menu/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
)

// EntityStore is the CRUD surface the dashboard needs from an entity service.
type EntityStore[T any] interface {
	GetAll(ctx context.Context, token string) ([]T, error)
	Create(ctx context.Context, token string, input any) (*T, error)
	Update(ctx context.Context, token string, id int, input any) (*T, error)
	Delete(ctx context.Context, token string, id int) error
}

// Catalog bundles the four entity stores.
type Catalog struct {
	Tables       EntityStore[tables.Table]
	Customers    EntityStore[customers.Customer]
	Reservations EntityStore[reservations.Reservation]
	Menu         EntityStore[menu.MenuItem]
}

// Notifier announces a successful mutation to other dashboards.
type Notifier interface {
	Notify(ctx context.Context, change Change)
}

// Change describes one mutation. Origin is the session that made it.
type Change struct {
	Section    string
	Action     string
	ResourceID int
	Origin     string
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
