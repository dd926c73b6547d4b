package transport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"infiniteLeafWeb/internal/modules/booking/application/usecase"
	"infiniteLeafWeb/internal/modules/booking/domain"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
	"infiniteLeafWeb/internal/platform/web"
)

const (
	sessionKey  = "booking"
	bookingPath = "/Booking"
)

var stepLabels = [domain.TotalSteps]string{"Date & Time", "Party Size", "Table", "Your Details", "Confirm"}

type StepInfo struct {
	Number    int
	Label     string
	State     string
	Reachable bool
}

type BookingContent struct {
	Wizard     *domain.Wizard
	Toast      *domain.Toast
	MinDate    string
	PartySizes []int
	Steps      []StepInfo
}

type Handler struct {
	flow *usecase.Flow
}

func NewHandler(flow *usecase.Flow) *Handler {
	return &Handler{flow: flow}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.Index)
	g.POST("/Next", h.Next)
	g.POST("/Previous", h.Previous)
	g.POST("/GoTo", h.GoTo)
	g.POST("/Confirm", h.Confirm)
	g.POST("/Reset", h.Reset)
}

// Index renders the current step. A toast is shown once and then dropped.
func (h *Handler) Index(c echo.Context) error {
	w := h.load(c)
	now := h.flow.Now()

	content := BookingContent{
		Wizard:     w,
		MinDate:    domain.MinDate(now, h.flow.Location()),
		PartySizes: domain.PartySizes,
		Steps:      steps(w),
	}
	if w.Toast.Active(now) {
		content.Toast = w.Toast
	}
	if w.Toast != nil {
		w.DismissToast()
		h.store(c, w)
	}

	return c.Render(http.StatusOK, "booking", web.Page{
		Title:     "Book a Table",
		Nav:       "booking",
		Username:  sessiontransport.Username(c),
		CSRFToken: web.CSRFToken(c),
		Content:   content,
	})
}

func (h *Handler) Next(c echo.Context) error {
	w := h.load(c)
	form := map[string]string{}
	posted := formValues(c)
	for _, key := range []string{"date", "time", "guests", "tableId", "name", "phone", "requests"} {
		if values, ok := posted[key]; ok && len(values) > 0 {
			form[key] = values[0]
		}
	}
	h.flow.Next(c.Request().Context(), w, form)
	return h.save(c, w)
}

func (h *Handler) Previous(c echo.Context) error {
	w := h.load(c)
	h.flow.Previous(w)
	return h.save(c, w)
}

func (h *Handler) GoTo(c echo.Context) error {
	w := h.load(c)
	step, err := strconv.Atoi(c.FormValue("step"))
	if err == nil {
		h.flow.GoTo(c.Request().Context(), w, domain.Step(step))
	}
	return h.save(c, w)
}

func (h *Handler) Confirm(c echo.Context) error {
	w := h.load(c)
	if err := h.flow.Confirm(c.Request().Context(), w); err != nil {
		slog.Info("booking not confirmed", slog.Int("step", int(w.Step)), slog.Any("error", err))
	}
	return h.save(c, w)
}

func (h *Handler) Reset(c echo.Context) error {
	return h.save(c, h.flow.Reset())
}

func (h *Handler) load(c echo.Context) *domain.Wizard {
	w := domain.New()
	s := sessiontransport.FromContext(c)
	if s == nil {
		return w
	}
	if ok, err := s.Get(sessionKey, w); err != nil || !ok {
		if err != nil {
			slog.Warn("booking state unreadable, starting over", slog.String("sessionId", s.ID), slog.Any("error", err))
		}
		return domain.New()
	}
	return w
}

func (h *Handler) store(c echo.Context, w *domain.Wizard) {
	s := sessiontransport.FromContext(c)
	if s == nil {
		return
	}
	if err := s.Put(sessionKey, w); err != nil {
		slog.Error("booking state not saved", slog.String("sessionId", s.ID), slog.Any("error", err))
	}
}

// save persists the wizard and redirects back to the page (post/redirect/get).
func (h *Handler) save(c echo.Context, w *domain.Wizard) error {
	h.store(c, w)
	return c.Redirect(http.StatusSeeOther, bookingPath)
}

func formValues(c echo.Context) map[string][]string {
	values, err := c.FormParams()
	if err != nil {
		return nil
	}
	return values
}

func steps(w *domain.Wizard) []StepInfo {
	out := make([]StepInfo, 0, domain.TotalSteps)
	for i, label := range stepLabels {
		number := i + 1
		state := ""
		switch {
		case w.Done() || number < int(w.Step):
			state = "completed"
		case number == int(w.Step):
			state = "active"
		}
		out = append(out, StepInfo{
			Number:    number,
			Label:     label,
			State:     state,
			Reachable: number != int(w.Step) && w.CanReach(domain.Step(number)),
		})
	}
	return out
}
