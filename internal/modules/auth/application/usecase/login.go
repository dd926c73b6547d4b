package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"infiniteLeafWeb/internal/modules/auth/application/port"
	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/shared/auth"
)

const loginPath = "api/auth/login"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrLoginUnavailable wraps failures that never reached a verdict on the credentials.
	ErrLoginUnavailable = errors.New("login unavailable")
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login is the outcome stored into the session.
type Login struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

type loginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expiresAt"`
}

// parseExpiry accepts RFC 3339 and the zone-less form the API emits (read as UTC).
func parseExpiry(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// LoginUseCase exchanges credentials for an upstream bearer token.
type LoginUseCase struct {
	requester port.LoginRequester
	inspector auth.TokenInspector
}

func NewLoginUseCase(requester port.LoginRequester, inspector auth.TokenInspector) *LoginUseCase {
	return &LoginUseCase{requester: requester, inspector: inspector}
}

func (uc *LoginUseCase) Execute(ctx context.Context, creds Credentials) (*Login, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	res := uc.requester.Post(ctx, "", loginPath, creds)
	if !res.Success {
		if res.Status == 0 {
			return nil, fmt.Errorf("%w: %s", ErrLoginUnavailable, res.Error)
		}
		slog.Info("login rejected", slog.String("username", creds.Username), slog.Int("status", res.Status))
		return nil, ErrInvalidCredentials
	}

	var payload loginResponse
	if err := res.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginUnavailable, err)
	}
	if strings.TrimSpace(payload.Token) == "" {
		return nil, ErrInvalidCredentials
	}

	claims, err := uc.inspector.Inspect(payload.Token)
	if err != nil {
		slog.Warn("login token rejected", slog.String("username", creds.Username), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	login := &Login{
		Token:     payload.Token,
		Username:  firstNonEmpty(payload.Username, claims.Name, creds.Username),
		ExpiresAt: parseExpiry(payload.ExpiresAt),
	}
	if exp := claims.Expiry(); !exp.IsZero() && (login.ExpiresAt.IsZero() || exp.Before(login.ExpiresAt)) {
		login.ExpiresAt = exp
	}
	return login, nil
}

// DisplayMessage is the text shown on the login form for err.
func DisplayMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, ErrLoginUnavailable):
		return "An error occurred: " + strings.TrimSpace(strings.TrimPrefix(err.Error(), ErrLoginUnavailable.Error()+":"))
	}
	return "An error occurred: " + upstream.Message(err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
