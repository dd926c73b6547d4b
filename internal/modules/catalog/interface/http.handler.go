package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"infiniteLeafWeb/internal/modules/catalog/application/usecase"
	customers "infiniteLeafWeb/internal/modules/customers/domain"
	menu "infiniteLeafWeb/internal/modules/menu/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/shared/httputil"
)

var errInvalidID = errors.New("invalid id")

// EntityService is the CRUD surface exposed as JSON.
type EntityService[T any] interface {
	GetAll(ctx context.Context, token string) ([]T, error)
	GetByID(ctx context.Context, token string, id int) (*T, error)
	Create(ctx context.Context, token string, input any) (*T, error)
	Update(ctx context.Context, token string, id int, input any) (*T, error)
	Delete(ctx context.Context, token string, id int) error
}

// EntityHandler serves GetAll/GetById/Create/Update/Delete for one entity.
type EntityHandler[T any] struct {
	svc    EntityService[T]
	title  string
	reads  *httputil.ErrorMapper
	writes *httputil.ErrorMapper
	create *httputil.ErrorMapper
}

// NewEntityHandler builds the handler; title is the capitalised entity name used
// in messages ("Table", "Menu item").
func NewEntityHandler[T any](svc EntityService[T], title string) *EntityHandler[T] {
	lower := strings.ToLower(title)
	return &EntityHandler[T]{
		svc:   svc,
		title: title,
		reads: httputil.NewErrorMapper().
			WithMapping(errInvalidID, http.StatusBadRequest, "Invalid id").
			WithMapping(upstream.ErrNotFound, http.StatusNotFound, title+" not found").
			WithResolver(upstreamResolver).
			WithDefault(http.StatusInternalServerError, "An unexpected error occurred"),
		writes: httputil.NewErrorMapper().
			WithMapping(errInvalidID, http.StatusBadRequest, "Invalid id").
			WithMapping(upstream.ErrNotFound, http.StatusNotFound, title+" not found").
			WithResolver(upstreamResolver).
			WithDefault(http.StatusBadRequest, "Failed to update "+lower),
		create: httputil.NewErrorMapper().
			WithResolver(createResolver).
			WithDefault(http.StatusBadRequest, "Failed to create "+lower),
	}
}

// Register mounts the five actions on g.
func (h *EntityHandler[T]) Register(g *echo.Group) {
	g.GET("/GetAll", h.GetAll)
	g.GET("/GetById", h.GetByID)
	g.POST("/Create", h.Create)
	g.PUT("/Update", h.Update)
	g.DELETE("/Delete", h.Delete)
}

func (h *EntityHandler[T]) GetAll(c echo.Context) error {
	items, err := h.svc.GetAll(c.Request().Context(), sessiontransport.Token(c))
	if err != nil {
		return h.fail(c, h.reads, "get all", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *EntityHandler[T]) GetByID(c echo.Context) error {
	id, err := queryID(c)
	if err != nil {
		return h.reads.JSONError(c, err)
	}
	item, err := h.svc.GetByID(c.Request().Context(), sessiontransport.Token(c), id)
	if err != nil {
		return h.fail(c, h.reads, "get by id", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *EntityHandler[T]) Create(c echo.Context) error {
	payload, err := bindPayload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, httputil.MessageBody{Message: "Invalid request body"})
	}
	item, err := h.svc.Create(c.Request().Context(), sessiontransport.Token(c), payload)
	if err != nil {
		return h.fail(c, h.create, "create", err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *EntityHandler[T]) Update(c echo.Context) error {
	id, err := queryID(c)
	if err != nil {
		return h.writes.JSONError(c, err)
	}
	payload, err := bindPayload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, httputil.MessageBody{Message: "Invalid request body"})
	}
	item, err := h.svc.Update(c.Request().Context(), sessiontransport.Token(c), id, payload)
	if err != nil {
		return h.fail(c, h.writes, "update", err)
	}
	if item == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *EntityHandler[T]) Delete(c echo.Context) error {
	id, err := queryID(c)
	if err != nil {
		return h.writes.JSONError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), sessiontransport.Token(c), id); err != nil {
		return h.fail(c, h.writes, "delete", err)
	}
	return c.JSON(http.StatusOK, httputil.MessageBody{Message: h.title + " deleted successfully"})
}

// fail logs err and answers with mapper. A token the upstream refuses ends the
// login the same way an expired session does.
func (h *EntityHandler[T]) fail(c echo.Context, mapper *httputil.ErrorMapper, action string, err error) error {
	h.logFailure(c, action, err)
	if errors.Is(err, upstream.ErrUnauthorized) {
		return sessiontransport.Reauthenticate(c)
	}
	return mapper.JSONError(c, err)
}

func (h *EntityHandler[T]) logFailure(c echo.Context, action string, err error) {
	slog.Warn("entity request failed",
		slog.String("entity", h.title),
		slog.String("action", action),
		slog.String("requestId", c.Response().Header().Get(echo.HeaderXRequestID)),
		slog.Any("error", err),
	)
}

// AvailabilityHandler answers GET /Tables/GetAvailable without a session.
func AvailabilityHandler(svc *usecase.TableService) echo.HandlerFunc {
	mapper := httputil.NewErrorMapper().
		WithResolver(upstreamResolver).
		WithDefault(http.StatusInternalServerError, "An unexpected error occurred")

	return func(c echo.Context) error {
		startTime := strings.TrimSpace(c.QueryParam("startTime"))
		guests, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("numberOfGuests")))
		if startTime == "" || err != nil || guests <= 0 {
			return c.JSON(http.StatusBadRequest, httputil.MessageBody{Message: "startTime and numberOfGuests are required"})
		}
		items, err := svc.Available(c.Request().Context(), startTime, guests)
		if err != nil {
			slog.Warn("available tables lookup failed", slog.String("startTime", startTime), slog.Int("guests", guests), slog.Any("error", err))
			return mapper.JSONError(c, err)
		}
		return c.JSON(http.StatusOK, items)
	}
}

// RegisterRoutes mounts the JSON endpoints of every entity behind gate, plus the
// public availability lookup.
func RegisterRoutes(e *echo.Echo, services *usecase.Services, gate echo.MiddlewareFunc) {
	e.GET("/Tables/GetAvailable", AvailabilityHandler(services.Tables))

	NewEntityHandler[tables.Table](services.Tables, "Table").Register(e.Group("/Tables", gate))
	NewEntityHandler[customers.Customer](services.Customers, "Customer").Register(e.Group("/Customers", gate))
	NewEntityHandler[reservations.Reservation](services.Reservations, "Reservation").Register(e.Group("/Reservations", gate))
	NewEntityHandler[menu.MenuItem](services.Menu, "Menu item").Register(e.Group("/MenuItems", gate))
}

// upstreamResolver passes an upstream failure through with its status and
// message. Transport failures (status 0) become 502.
func upstreamResolver(err error) (httputil.HTTPErrorInfo, bool) {
	apiErr, ok := upstream.AsAPIError(err)
	if !ok {
		return httputil.HTTPErrorInfo{}, false
	}
	status := apiErr.Status
	if status == 0 {
		status = http.StatusBadGateway
	}
	return httputil.HTTPErrorInfo{Status: status, Message: apiErr.Error()}, true
}

// createResolver keeps the upstream's own message for a rejected create; every
// create failure is reported as 400.
func createResolver(err error) (httputil.HTTPErrorInfo, bool) {
	apiErr, ok := upstream.AsAPIError(err)
	if !ok || apiErr.Status < http.StatusBadRequest || apiErr.Status >= http.StatusInternalServerError {
		return httputil.HTTPErrorInfo{}, false
	}
	return httputil.HTTPErrorInfo{Status: http.StatusBadRequest, Message: apiErr.Error()}, true
}

func queryID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("id")))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func bindPayload(c echo.Context) (map[string]any, error) {
	payload := map[string]any{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
