package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"infiniteLeafWeb/internal/modules/admin/application/usecase"
	"infiniteLeafWeb/internal/modules/admin/domain"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/platform/web"
)

const adminPath = "/Admin"

var reservedFields = map[string]bool{"_csrf": true, "mode": true, "id": true}

type Tab struct {
	Section domain.Section
	Count   int
	Active  bool
}

type DashboardContent struct {
	View *usecase.View
	Tabs []Tab
	Live bool
}

type Handler struct {
	dashboard *usecase.Dashboard
	live      bool
}

// NewHandler builds the dashboard handler. live turns on the change banner
// script that listens on /Admin/ws.
func NewHandler(dashboard *usecase.Dashboard, live bool) *Handler {
	return &Handler{dashboard: dashboard, live: live}
}

// Register mounts the dashboard on a group already behind the session gate.
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.Index)
	g.GET("/Section/:section", h.Section)
	g.POST("/Refresh", h.Refresh)
	g.POST("/:section/Save", h.Save)
	g.POST("/:section/Delete", h.Delete)
}

// Index renders the dashboard. Without a section parameter every collection is
// reloaded; with one the cached data is reused. modal and delete open the
// matching dialog on top.
func (h *Handler) Index(c echo.Context) error {
	ctx := c.Request().Context()
	sid, token := sessiontransport.SessionID(c), sessiontransport.Token(c)

	raw := c.QueryParam("section")
	if raw == "" {
		view := h.dashboard.Load(ctx, sid, token, domain.DefaultSection)
		if h.rejected(view, nil) {
			return h.reauthenticate(c)
		}
		return h.render(c, http.StatusOK, view)
	}
	section, err := domain.ParseSection(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown section")
	}

	var view *usecase.View
	switch {
	case c.QueryParam("modal") != "":
		mode := domain.ParseMode(c.QueryParam("modal"))
		id, _ := strconv.Atoi(c.QueryParam("id"))
		view, err = h.dashboard.OpenModal(ctx, sid, token, section, mode, id)
	case c.QueryParam("delete") != "":
		id, convErr := strconv.Atoi(c.QueryParam("delete"))
		if convErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
		}
		view, err = h.dashboard.ConfirmDelete(ctx, sid, token, section, id)
	default:
		view = h.dashboard.Show(ctx, sid, token, section)
	}
	if h.rejected(view, err) {
		return h.reauthenticate(c)
	}
	if errors.Is(err, usecase.ErrRecordNotFound) {
		view.Alert = section.Title() + " not found"
	} else if err != nil {
		slog.Warn("dashboard dialog not opened", slog.String("section", section.String()), slog.Any("error", err))
	}

	switch c.QueryParam("done") {
	case "saved", "deleted":
		view.Notice = section.Title() + " " + c.QueryParam("done")
	}
	return h.render(c, http.StatusOK, view)
}

// Section renders just the table fragment for the given section.
func (h *Handler) Section(c echo.Context) error {
	section, err := domain.ParseSection(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown section")
	}
	view := h.dashboard.Show(c.Request().Context(), sessiontransport.SessionID(c), sessiontransport.Token(c), section)
	if h.rejected(view, nil) {
		return h.reauthenticate(c)
	}
	return c.Render(http.StatusOK, web.PartialPrefix+"admin_section", h.page(c, view))
}

func (h *Handler) Refresh(c echo.Context) error {
	view := h.dashboard.Refresh(c.Request().Context(), sessiontransport.SessionID(c), sessiontransport.Token(c))
	if h.rejected(view, nil) {
		return h.reauthenticate(c)
	}
	return c.Redirect(http.StatusSeeOther, sectionURL(view.Active, ""))
}

// Save submits the modal form. A rejected form is re-rendered with the modal
// still open; success redirects to the refreshed section.
func (h *Handler) Save(c echo.Context) error {
	section, err := domain.ParseSection(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown section")
	}
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form")
	}
	form := make(map[string]string, len(values))
	for key, v := range values {
		if reservedFields[key] || len(v) == 0 {
			continue
		}
		form[key] = v[0]
	}
	mode := domain.ParseMode(values.Get("mode"))
	id, _ := strconv.Atoi(values.Get("id"))

	view, err := h.dashboard.Save(c.Request().Context(), sessiontransport.SessionID(c), sessiontransport.Token(c), section, mode, id, form)
	if h.rejected(view, err) {
		return h.reauthenticate(c)
	}
	if err != nil {
		if view == nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.render(c, http.StatusUnprocessableEntity, view)
	}
	return c.Redirect(http.StatusSeeOther, sectionURL(section, "saved"))
}

func (h *Handler) Delete(c echo.Context) error {
	section, err := domain.ParseSection(c.Param("section"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown section")
	}
	id, err := strconv.Atoi(c.FormValue("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	view, err := h.dashboard.Delete(c.Request().Context(), sessiontransport.SessionID(c), sessiontransport.Token(c), section, id)
	if h.rejected(view, err) {
		return h.reauthenticate(c)
	}
	if err != nil {
		if view == nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.render(c, http.StatusOK, view)
	}
	return c.Redirect(http.StatusSeeOther, sectionURL(section, "deleted"))
}

// rejected reports whether the upstream refused the session's token, either
// for the call itself or for any section behind view.
func (h *Handler) rejected(view *usecase.View, err error) bool {
	return errors.Is(err, upstream.ErrUnauthorized) || (view != nil && view.Unauthorized)
}

func (h *Handler) reauthenticate(c echo.Context) error {
	h.dashboard.Forget(sessiontransport.SessionID(c))
	return sessiontransport.Reauthenticate(c)
}

func (h *Handler) render(c echo.Context, status int, view *usecase.View) error {
	return c.Render(status, "admin", h.page(c, view))
}

func (h *Handler) page(c echo.Context, view *usecase.View) web.Page {
	tabs := make([]Tab, 0, len(domain.Sections))
	for _, section := range domain.Sections {
		tabs = append(tabs, Tab{
			Section: section,
			Count:   view.Snapshot.Count(section),
			Active:  section == view.Active,
		})
	}
	return web.Page{
		Title:     "Dashboard",
		Nav:       "admin",
		Username:  sessiontransport.Username(c),
		CSRFToken: web.CSRFToken(c),
		Content:   DashboardContent{View: view, Tabs: tabs, Live: h.live},
	}
}

func sectionURL(section domain.Section, done string) string {
	q := url.Values{}
	q.Set("section", section.String())
	if done != "" {
		q.Set("done", done)
	}
	return adminPath + "?" + q.Encode()
}
