package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/shared/auth"
)

type stubRequester struct {
	result upstream.Result
	path   string
	body   any
}

func (s *stubRequester) Post(ctx context.Context, token, path string, body any) upstream.Result {
	s.path = path
	s.body = body
	return s.result
}

func okResult(t *testing.T, v any) upstream.Result {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return upstream.Result{Success: true, Status: 200, Data: raw}
}

func TestLoginSuccess(t *testing.T) {
	req := &stubRequester{result: okResult(t, map[string]string{
		"token":     "opaque-token",
		"username":  "admin",
		"expiresAt": "2025-06-01T14:00:00",
	})}
	uc := NewLoginUseCase(req, auth.NewJWTInspector(""))

	login, err := uc.Execute(context.Background(), Credentials{Username: " admin ", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.path != "api/auth/login" {
		t.Fatalf("unexpected path %q", req.path)
	}
	if creds, ok := req.body.(Credentials); !ok || creds.Username != "admin" {
		t.Fatalf("unexpected body %#v", req.body)
	}
	if login.Token != "opaque-token" || login.Username != "admin" {
		t.Fatalf("unexpected login %+v", login)
	}
	if !login.ExpiresAt.Equal(time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected expiry %v", login.ExpiresAt)
	}
}

func TestLoginRejected(t *testing.T) {
	cases := map[string]upstream.Result{
		"unauthorized": {Success: false, Status: 401, Error: "Unauthorized"},
		"bad request":  {Success: false, Status: 400, Error: "Error: 400"},
		"empty token":  {Success: true, Status: 200, Data: json.RawMessage(`{"token":""}`)},
	}
	for name, result := range cases {
		t.Run(name, func(t *testing.T) {
			uc := NewLoginUseCase(&stubRequester{result: result}, auth.NewJWTInspector(""))
			_, err := uc.Execute(context.Background(), Credentials{Username: "admin", Password: "wrong"})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected invalid credentials, got %v", err)
			}
			if DisplayMessage(err) != "Invalid username or password" {
				t.Fatalf("unexpected message %q", DisplayMessage(err))
			}
		})
	}
}

func TestLoginMissingFieldsSkipsUpstream(t *testing.T) {
	req := &stubRequester{}
	uc := NewLoginUseCase(req, auth.NewJWTInspector(""))
	if _, err := uc.Execute(context.Background(), Credentials{Username: "admin"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if req.path != "" {
		t.Fatalf("upstream should not be called")
	}
}

func TestLoginTransportFailure(t *testing.T) {
	req := &stubRequester{result: upstream.Result{Success: false, Error: "dial tcp: connection refused"}}
	uc := NewLoginUseCase(req, auth.NewJWTInspector(""))

	_, err := uc.Execute(context.Background(), Credentials{Username: "admin", Password: "pw"})
	if !errors.Is(err, ErrLoginUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if got := DisplayMessage(err); got != "An error occurred: dial tcp: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
}
