package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tables "infiniteLeafWeb/internal/modules/tables/domain"
	"infiniteLeafWeb/internal/platform/upstream"
)

// fakeTablesAPI is a minimal in-memory stand-in for the upstream cafetables API.
type fakeTablesAPI struct {
	mu        sync.Mutex
	nextID    int
	rows      map[int]tables.Table
	lastQuery string
	lastAuth  string
}

func newFakeTablesAPI() *fakeTablesAPI {
	return &fakeTablesAPI{nextID: 1, rows: make(map[int]tables.Table)}
}

func (f *fakeTablesAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuth = r.Header.Get("Authorization")

	rest := strings.TrimPrefix(r.URL.Path, "/api/cafetables")
	rest = strings.Trim(rest, "/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case rest == "available" && r.Method == http.MethodGet:
		f.lastQuery = r.URL.RawQuery
		guests, _ := strconv.Atoi(r.URL.Query().Get("numberOfGuests"))
		out := []tables.Table{}
		for _, row := range f.rows {
			if row.Capacity >= guests {
				out = append(out, row)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case rest == "" && r.Method == http.MethodGet:
		out := []tables.Table{}
		for _, row := range f.rows {
			out = append(out, row)
		}
		_ = json.NewEncoder(w).Encode(out)
	case rest == "" && r.Method == http.MethodPost:
		var in tables.TableInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		row := tables.Table{ID: f.nextID, TableNumber: in.TableNumber, Capacity: in.Capacity}
		f.nextID++
		f.rows[row.ID] = row
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(row)
	default:
		id, err := strconv.Atoi(rest)
		row, ok := f.rows[id]
		if err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(row)
		case http.MethodPut:
			var in tables.TableInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			row.TableNumber, row.Capacity = in.TableNumber, in.Capacity
			f.rows[id] = row
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			delete(f.rows, id)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func newTestServices(t *testing.T, h http.Handler) *Services {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewServices(upstream.NewProxy(upstream.NewRESTClient(srv.URL, time.Second, nil), nil))
}

func TestCreateThenGetByIDReturnsMatchingRecord(t *testing.T) {
	api := newFakeTablesAPI()
	svc := newTestServices(t, api)
	ctx := context.Background()

	created, err := svc.Tables.Create(ctx, "tok", tables.TableInput{TableNumber: 12, Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", api.lastAuth)

	fetched, err := svc.Tables.GetByID(ctx, "tok", created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *fetched)
	assert.Equal(t, 12, fetched.TableNumber)
}

func TestDeleteThenGetByIDIsNotFound(t *testing.T) {
	api := newFakeTablesAPI()
	svc := newTestServices(t, api)
	ctx := context.Background()

	created, err := svc.Tables.Create(ctx, "tok", tables.TableInput{TableNumber: 1, Capacity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Tables.Delete(ctx, "tok", created.ID))

	_, err = svc.Tables.GetByID(ctx, "tok", created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrNotFound)

	err = svc.Tables.Delete(ctx, "tok", created.ID)
	assert.ErrorIs(t, err, upstream.ErrNotFound)
}

func TestUpdateWithNoContent(t *testing.T) {
	api := newFakeTablesAPI()
	svc := newTestServices(t, api)
	ctx := context.Background()

	created, err := svc.Tables.Create(ctx, "tok", tables.TableInput{TableNumber: 3, Capacity: 2})
	require.NoError(t, err)

	updated, err := svc.Tables.Update(ctx, "tok", created.ID, tables.TableInput{TableNumber: 3, Capacity: 6})
	require.NoError(t, err)
	assert.Nil(t, updated)

	all, err := svc.Tables.GetAll(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 6, all[0].Capacity)
}

func TestAvailableIsPublicAndEncodesQuery(t *testing.T) {
	api := newFakeTablesAPI()
	svc := newTestServices(t, api)
	ctx := context.Background()

	_, err := svc.Tables.Create(ctx, "tok", tables.TableInput{TableNumber: 1, Capacity: 2})
	require.NoError(t, err)
	_, err = svc.Tables.Create(ctx, "tok", tables.TableInput{TableNumber: 2, Capacity: 6})
	require.NoError(t, err)

	free, err := svc.Tables.Available(ctx, "2025-06-01T18:30:00", 4)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, 2, free[0].TableNumber)
	assert.Empty(t, api.lastAuth)
	assert.Contains(t, api.lastQuery, "numberOfGuests=4")
	assert.Contains(t, api.lastQuery, "startTime=2025-06-01T18%3A30%3A00")
}

func TestGetAllEmptyCollection(t *testing.T) {
	svc := newTestServices(t, newFakeTablesAPI())
	all, err := svc.Tables.GetAll(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestServiceSurfacesUpstreamMessage(t *testing.T) {
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Phone number is required"}`))
	}))
	_, err := svc.Customers.Create(context.Background(), "tok", map[string]any{"name": "Ada"})
	require.Error(t, err)
	assert.Equal(t, "Phone number is required", upstream.Message(err))
	assert.Equal(t, "customer", svc.Customers.Entity())
}
