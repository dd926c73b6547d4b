package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infiniteLeafWeb/internal/modules/catalog/application/usecase"
	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/shared/httputil"
)

func newTestEcho(t *testing.T, api http.HandlerFunc) *echo.Echo {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	services := usecase.NewServices(upstream.NewProxy(upstream.NewRESTClient(srv.URL, time.Second, nil), nil))
	e := echo.New()
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	RegisterRoutes(e, services, pass)
	return e
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httputil.MessageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestGetByIDMissIs404(t *testing.T) {
	e := newTestEcho(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Customers/GetById?id=4", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer not found", decodeMessage(t, rec))
}

func TestGetByIDRejectsBadID(t *testing.T) {
	e := newTestEcho(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Tables/GetById?id=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateFailureMessages(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "upstream message", status: http.StatusBadRequest, body: `{"message":"Capacity must be positive"}`, message: "Capacity must be positive"},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, message: "Failed to create table"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			req := httptest.NewRequest(http.MethodPost, "/Tables/Create", strings.NewReader(`{"tableNumber":1,"capacity":0}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decodeMessage(t, rec))
		})
	}
}

func TestCreatePassesBodyThrough(t *testing.T) {
	var got map[string]any
	e := newTestEcho(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"name":"Chai","price":3.5}`))
	})
	req := httptest.NewRequest(http.MethodPost, "/MenuItems/Create", strings.NewReader(`{"name":"Chai","price":3.5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Chai", got["name"])
	assert.Contains(t, rec.Body.String(), `"id":9`)
}

func TestUpdateAndDelete(t *testing.T) {
	e := newTestEcho(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/404"):
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	req := httptest.NewRequest(http.MethodPut, "/Reservations/Update?id=2", strings.NewReader(`{"numberOfGuests":3}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/Reservations/Update?id=404", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Reservation not found", decodeMessage(t, rec))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/Tables/Delete?id=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Table deleted successfully", decodeMessage(t, rec))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/Tables/Delete?id=404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Table not found", decodeMessage(t, rec))
}

func TestGetAvailableValidatesQuery(t *testing.T) {
	e := newTestEcho(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":1,"tableNumber":4,"capacity":4}]`))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Tables/GetAvailable?startTime=2025-06-01T18:30:00", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Tables/GetAvailable?startTime=2025-06-01T18:30:00&numberOfGuests=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tableNumber":4`)
}

func TestGatedRoutesUseGate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	services := usecase.NewServices(upstream.NewProxy(upstream.NewRESTClient(srv.URL, time.Second, nil), nil))

	e := echo.New()
	deny := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error { return c.Redirect(http.StatusFound, "/Auth") }
	}
	RegisterRoutes(e, services, deny)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Customers/GetAll", nil))
	assert.Equal(t, http.StatusFound, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Tables/GetAvailable?startTime=x&numberOfGuests=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRejectedTokenRedirectsToLogin(t *testing.T) {
	e := newTestEcho(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	for _, target := range []string{"/Reservations/GetAll", "/Reservations/GetById?id=2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/Auth", rec.Header().Get(echo.HeaderLocation), target)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/Reservations/Delete?id=2", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
}
