package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

type statusErr struct{ status int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d", e.status) }

func TestErrorMapperMap(t *testing.T) {
	mapper := NewErrorMapper().
		WithMapping(errMissing, http.StatusNotFound, "not here").
		WithResolver(func(err error) (HTTPErrorInfo, bool) {
			var se *statusErr
			if errors.As(err, &se) {
				return HTTPErrorInfo{Status: se.status, Message: se.Error()}, true
			}
			return HTTPErrorInfo{}, false
		}).
		WithDefault(http.StatusBadGateway, "upstream failure")

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"nil", nil, http.StatusOK, ""},
		{"deadline", fmt.Errorf("wrap: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "request timeout"},
		{"cancel", context.Canceled, http.StatusServiceUnavailable, "request cancelled"},
		{"mapping", fmt.Errorf("get: %w", errMissing), http.StatusNotFound, "not here"},
		{"resolver", fmt.Errorf("call: %w", &statusErr{status: 409}), 409, "status 409"},
		{"default", errors.New("boom"), http.StatusBadGateway, "upstream failure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := mapper.Map(tc.err)
			assert.Equal(t, tc.status, info.Status)
			assert.Equal(t, tc.msg, info.Message)
		})
	}
}

func TestJSONErrorWritesMessageEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	mapper := NewErrorMapper().WithMapping(errMissing, http.StatusNotFound, "Table not found")
	require.NoError(t, mapper.JSONError(c, errMissing))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Table not found"}`, rec.Body.String())
}
