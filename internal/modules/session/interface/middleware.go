package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"infiniteLeafWeb/internal/modules/session/application/usecase"
	"infiniteLeafWeb/internal/modules/session/domain"
)

const (
	contextKey   = "session"
	destroyedKey = "session.destroyed"

	// LoginPath is where the gate sends unauthenticated visitors.
	LoginPath = "/Auth"
)

// CookieConfig controls the session cookie. It is always HttpOnly.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return "infiniteleaf_session"
	}
	return c.Name
}

// Middleware loads (or lazily creates) the session for every request, exposes it
// through FromContext and persists it once the handler returns.
func Middleware(mgr *usecase.Manager, cookie CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if existing, err := c.Cookie(cookie.name()); err == nil {
				id = existing.Value
			}

			ctx := c.Request().Context()
			s, created, err := mgr.Start(ctx, id)
			if err != nil {
				slog.Error("session start failed", slog.Any("error", err))
				return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
			}
			if created {
				writeCookie(c, cookie, s.ID)
			}
			c.Set(contextKey, s)

			handlerErr := next(c)

			if destroyed, _ := c.Get(destroyedKey).(bool); destroyed {
				return handlerErr
			}
			current := FromContext(c)
			if current == nil {
				return handlerErr
			}
			if err := mgr.Save(ctx, current); err != nil {
				slog.Error("session save failed", slog.String("sessionId", current.ID), slog.Any("error", err))
			}
			return handlerErr
		}
	}
}

// FromContext returns the request's session or nil outside the middleware.
func FromContext(c echo.Context) *domain.Session {
	s, _ := c.Get(contextKey).(*domain.Session)
	return s
}

// Token returns the upstream bearer token of the request's session, or "".
func Token(c echo.Context) string {
	if s := FromContext(c); s != nil && s.Authenticated {
		return s.Token
	}
	return ""
}

// Username returns the signed-in user's name, or "".
func Username(c echo.Context) string {
	if s := FromContext(c); s != nil && s.Authenticated {
		return s.Username
	}
	return ""
}

// SessionID returns the request's session id, or "".
func SessionID(c echo.Context) string {
	if s := FromContext(c); s != nil {
		return s.ID
	}
	return ""
}

// SignIn marks the session authenticated and rotates its id, re-issuing the cookie.
func SignIn(c echo.Context, mgr *usecase.Manager, cookie CookieConfig, token, username string, expiresAt time.Time) error {
	s := FromContext(c)
	if s == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	if err := mgr.Rotate(c.Request().Context(), s); err != nil {
		return err
	}
	s.SignIn(token, username, expiresAt)
	writeCookie(c, cookie, s.ID)
	return nil
}

// Destroy removes the session and expires the cookie.
func Destroy(c echo.Context, mgr *usecase.Manager, cookie CookieConfig) error {
	s := FromContext(c)
	if s == nil {
		return nil
	}
	c.Set(destroyedKey, true)
	c.SetCookie(&http.Cookie{
		Name:     cookie.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return mgr.Destroy(c.Request().Context(), s)
}

// Reauthenticate signs the session out and redirects to LoginPath. It is used
// when the upstream rejects a token the session still considered valid.
func Reauthenticate(c echo.Context) error {
	if s := FromContext(c); s != nil {
		slog.Info("upstream rejected session token", slog.String("sessionId", s.ID))
		s.SignOut()
	}
	return c.Redirect(http.StatusFound, LoginPath)
}

// RequireAuth gates protected routes: without a valid login the request is
// answered with 302 to LoginPath and the handler never runs.
func RequireAuth(mgr *usecase.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := FromContext(c)
			if !s.IsAuthenticated(mgr.Now()) {
				slog.Debug("session gate redirect", slog.String("path", c.Request().URL.Path))
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}

func writeCookie(c echo.Context, cookie CookieConfig, id string) {
	c.SetCookie(&http.Cookie{
		Name:     cookie.name(),
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
