package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"infiniteLeafWeb/internal/modules/realtime/domain"
	"infiniteLeafWeb/internal/modules/realtime/infrastructure"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
)

// Origin checking is left to the upgrader default (same host only): the
// socket rides on the session cookie.
var upgrader = websocket.Upgrader{}

// NewWebsocketHandler serves /Admin/ws. The route sits behind the session gate,
// so the session is already authenticated here.
func NewWebsocketHandler(hub *infrastructure.Hub, buffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID := sessiontransport.SessionID(c)
		if sessionID == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "session required")
		}
		username := sessiontransport.Username(c)

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Warn("ws handler upgrade failed", slog.String("sessionId", sessionID), slog.Any("error", err))
			return nil
		}

		client := infrastructure.NewClient(hub, conn, sessionID, username, buffer)
		hub.AttachClient(client)

		go client.WritePump()
		go client.ReadPump()

		client.SendMessage(domain.Connected(time.Now()))
		slog.Debug("ws handler sent system.connected", slog.String("sessionId", sessionID), slog.String("ip", c.RealIP()))
		return nil
	}
}
