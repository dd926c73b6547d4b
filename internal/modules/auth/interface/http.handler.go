package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"infiniteLeafWeb/internal/modules/auth/application/usecase"
	sessionusecase "infiniteLeafWeb/internal/modules/session/application/usecase"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
	"infiniteLeafWeb/internal/platform/web"
)

const adminPath = "/Admin"

type LoginContent struct {
	Username string
	Error    string
}

// SessionForgetter drops per-session state held outside the session store.
type SessionForgetter interface {
	Forget(sessionID string)
}

type Handler struct {
	login   *usecase.LoginUseCase
	manager *sessionusecase.Manager
	cookie  sessiontransport.CookieConfig
	forget  SessionForgetter
}

func NewHandler(login *usecase.LoginUseCase, manager *sessionusecase.Manager, cookie sessiontransport.CookieConfig, forget SessionForgetter) *Handler {
	return &Handler{login: login, manager: manager, cookie: cookie, forget: forget}
}

// Register mounts /Auth. POST /Auth and POST /Auth/Login are the same action.
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.Index)
	g.POST("", h.Login)
	g.POST("/Login", h.Login)
	g.GET("/Logout", h.Logout)
}

// Index shows the login form; a signed-in user goes straight to the dashboard.
func (h *Handler) Index(c echo.Context) error {
	if s := sessiontransport.FromContext(c); s.IsAuthenticated(h.manager.Now()) {
		return c.Redirect(http.StatusFound, adminPath)
	}
	return h.render(c, http.StatusOK, LoginContent{})
}

func (h *Handler) Login(c echo.Context) error {
	creds := usecase.Credentials{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}
	result, err := h.login.Execute(c.Request().Context(), creds)
	if err != nil {
		slog.Info("login failed", slog.String("username", creds.Username), slog.Any("error", err))
		return h.render(c, http.StatusOK, LoginContent{Username: creds.Username, Error: usecase.DisplayMessage(err)})
	}
	if err := sessiontransport.SignIn(c, h.manager, h.cookie, result.Token, result.Username, result.ExpiresAt); err != nil {
		slog.Error("session sign-in failed", slog.Any("error", err))
		return h.render(c, http.StatusOK, LoginContent{Username: creds.Username, Error: usecase.DisplayMessage(err)})
	}
	slog.Info("login succeeded", slog.String("username", result.Username))
	return c.Redirect(http.StatusFound, adminPath)
}

// Logout discards the session and returns to the home page.
func (h *Handler) Logout(c echo.Context) error {
	sessionID := sessiontransport.SessionID(c)
	if err := sessiontransport.Destroy(c, h.manager, h.cookie); err != nil {
		slog.Warn("session destroy failed", slog.String("sessionId", sessionID), slog.Any("error", err))
	}
	if h.forget != nil && sessionID != "" {
		h.forget.Forget(sessionID)
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) render(c echo.Context, status int, content LoginContent) error {
	return c.Render(status, "login", web.Page{
		Title:     "Login",
		Nav:       "auth",
		Username:  sessiontransport.Username(c),
		CSRFToken: web.CSRFToken(c),
		Content:   content,
	})
}
