package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infiniteLeafWeb/internal/modules/booking/application/usecase"
	"infiniteLeafWeb/internal/modules/booking/domain"
	customers "infiniteLeafWeb/internal/modules/customers/domain"
	reservations "infiniteLeafWeb/internal/modules/reservations/domain"
	sessionusecase "infiniteLeafWeb/internal/modules/session/application/usecase"
	"infiniteLeafWeb/internal/modules/session/infrastructure"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
	tables "infiniteLeafWeb/internal/modules/tables/domain"
	"infiniteLeafWeb/internal/platform/web"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type stubFinder struct{ tables []tables.Table }

func (s *stubFinder) Available(ctx context.Context, startTime string, guests int) ([]tables.Table, error) {
	return s.tables, nil
}

type stubGateway struct{}

func (stubGateway) CreateCustomer(ctx context.Context, input customers.CustomerInput) (*customers.Customer, error) {
	return &customers.Customer{ID: 1, Name: input.Name}, nil
}

func (stubGateway) CreateReservation(ctx context.Context, input reservations.ReservationInput) (*reservations.Reservation, error) {
	return &reservations.Reservation{ID: 9}, nil
}

type captureRenderer struct{ page web.Page }

func (r *captureRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	r.page, _ = data.(web.Page)
	_, err := io.WriteString(w, name)
	return err
}

func (r *captureRenderer) content(t *testing.T) BookingContent {
	t.Helper()
	content, ok := r.page.Content.(BookingContent)
	require.True(t, ok, "expected BookingContent, got %T", r.page.Content)
	return content
}

type bookingClient struct {
	e      *echo.Echo
	cookie *http.Cookie
}

func (b *bookingClient) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			b.cookie = c
		}
	}
	return rec
}

func newBookingClient(t *testing.T) (*bookingClient, *captureRenderer) {
	t.Helper()
	manager := sessionusecase.NewManager(infrastructure.NewMemoryStore(), 30*time.Minute)
	finder := &stubFinder{tables: []tables.Table{{ID: 3, TableNumber: 7, Capacity: 4}}}
	flow := usecase.NewFlow(finder, stubGateway{}, nil, time.UTC).WithClock(func() time.Time { return fixedNow })

	renderer := &captureRenderer{}
	e := echo.New()
	e.Renderer = renderer
	e.Use(sessiontransport.Middleware(manager, sessiontransport.CookieConfig{Name: "sid"}))
	NewHandler(flow).Register(e.Group(bookingPath))
	return &bookingClient{e: e}, renderer
}

func TestBookingValidationToastShowsOnce(t *testing.T) {
	client, renderer := newBookingClient(t)

	rec := client.do(http.MethodPost, "/Booking/Next", url.Values{"time": {"18:30"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, bookingPath, rec.Header().Get(echo.HeaderLocation))

	client.do(http.MethodGet, "/Booking", nil)
	content := renderer.content(t)
	require.NotNil(t, content.Toast)
	assert.Equal(t, domain.MsgMissingDateTime, content.Toast.Message)
	assert.Equal(t, domain.StepDateTime, content.Wizard.Step)

	client.do(http.MethodGet, "/Booking", nil)
	assert.Nil(t, renderer.content(t).Toast)
}

func TestBookingWalksToTablesAndBack(t *testing.T) {
	client, renderer := newBookingClient(t)

	client.do(http.MethodPost, "/Booking/Next", url.Values{"date": {"2025-06-02"}, "time": {"18:30"}})
	client.do(http.MethodPost, "/Booking/Next", url.Values{"guests": {"4"}})
	client.do(http.MethodGet, "/Booking", nil)

	content := renderer.content(t)
	assert.Equal(t, domain.StepTableSelect, content.Wizard.Step)
	require.Len(t, content.Wizard.Tables, 1)
	assert.Equal(t, 7, content.Wizard.Tables[0].TableNumber)
	assert.Equal(t, "completed", content.Steps[0].State)
	assert.Equal(t, "active", content.Steps[2].State)

	assert.True(t, content.Steps[0].Reachable)
	assert.False(t, content.Steps[2].Reachable, "the current step is not a link")
	assert.False(t, content.Steps[4].Reachable)

	client.do(http.MethodPost, "/Booking/GoTo", url.Values{"step": {"5"}})
	client.do(http.MethodGet, "/Booking", nil)
	assert.Equal(t, domain.StepTableSelect, renderer.content(t).Wizard.Step)

	client.do(http.MethodPost, "/Booking/Previous", url.Values{})
	client.do(http.MethodGet, "/Booking", nil)
	assert.Equal(t, domain.StepPartySize, renderer.content(t).Wizard.Step)

	client.do(http.MethodPost, "/Booking/Reset", url.Values{})
	client.do(http.MethodGet, "/Booking", nil)
	assert.Equal(t, domain.StepDateTime, renderer.content(t).Wizard.Step)
	assert.Equal(t, "2025-06-01", renderer.content(t).MinDate)
}
