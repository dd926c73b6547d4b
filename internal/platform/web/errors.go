package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type ErrorContent struct {
	Status  int
	Message string
}

// ErrorHandler renders the error page for browser requests and falls back to
// echo's JSON errors for everything else.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if !wantsHTML(c.Request()) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		content := ErrorContent{Status: http.StatusInternalServerError, Message: "An unexpected error occurred"}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			content.Status = he.Code
			if msg, ok := he.Message.(string); ok && msg != "" {
				content.Message = msg
			} else {
				content.Message = http.StatusText(he.Code)
			}
		}
		if content.Status >= http.StatusInternalServerError {
			slog.Error("request failed", slog.String("path", c.Request().URL.Path), slog.Any("error", err))
		}

		page := Page{Title: http.StatusText(content.Status), CSRFToken: CSRFToken(c), Content: content}
		if renderErr := c.Render(content.Status, "error", page); renderErr != nil {
			slog.Error("error page render failed", slog.Any("error", renderErr))
			_ = c.String(content.Status, content.Message)
		}
	}
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get(echo.HeaderXRequestedWith) != "" {
		return false
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
