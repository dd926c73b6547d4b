package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	menu "infiniteLeafWeb/internal/modules/menu/domain"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/platform/web"
)

// Catalog is the public menu lookup.
type Catalog interface {
	GetAll(ctx context.Context, token string) ([]menu.MenuItem, error)
	Popular(ctx context.Context) ([]menu.MenuItem, error)
}

type HomeContent struct {
	Popular []menu.MenuItem
}

type MenuContent struct {
	Items []menu.MenuItem
	Error string
}

// HomeHandler renders the landing page with the popular items. A failed lookup
// renders the page without them.
func HomeHandler(catalog Catalog) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := catalog.Popular(c.Request().Context())
		if err != nil {
			slog.Warn("popular menu items unavailable", slog.Any("error", err))
			items = nil
		}
		return c.Render(http.StatusOK, "home", page(c, "Home", "home", HomeContent{Popular: items}))
	}
}

// MenuHandler renders every menu item with its markdown description.
func MenuHandler(catalog Catalog) echo.HandlerFunc {
	return func(c echo.Context) error {
		content := MenuContent{}
		items, err := catalog.GetAll(c.Request().Context(), "")
		if err != nil {
			slog.Warn("menu unavailable", slog.Any("error", err))
			content.Error = upstream.Message(err)
		} else {
			content.Items = items
		}
		return c.Render(http.StatusOK, "menu", page(c, "Menu", "menu", content))
	}
}

func page(c echo.Context, title, nav string, content any) web.Page {
	return web.Page{
		Title:     title,
		Nav:       nav,
		Username:  sessiontransport.Username(c),
		CSRFToken: web.CSRFToken(c),
		Content:   content,
	}
}
