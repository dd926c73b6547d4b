package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"infiniteLeafWeb/internal/shared/normalization"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PartialPrefix selects a partial instead of a full page in Render.
const PartialPrefix = "partial/"

// Page is the data every full page is rendered with.
type Page struct {
	Title     string
	Nav       string
	Username  string
	CSRFToken string
	Content   any
}

// Renderer implements echo.Renderer over the embedded templates. Each page is
// parsed together with the layout and all partials.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
}

var pageNames = []string{"home", "menu", "booking", "login", "admin", "error"}

func NewRenderer() (*Renderer, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	funcs := Funcs(md)

	partials, err := template.New("partials").Funcs(funcs).ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials/*.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, partials: partials}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	if partial, ok := strings.CutPrefix(name, PartialPrefix); ok {
		return r.partials.ExecuteTemplate(w, partial, data)
	}
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	// render into a buffer so a template error never leaves half a page behind
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Funcs are the helpers available to every template.
func Funcs(md goldmark.Markdown) template.FuncMap {
	return template.FuncMap{
		"markdown": func(src string) template.HTML {
			var buf bytes.Buffer
			if err := md.Convert([]byte(src), &buf); err != nil {
				slog.Warn("markdown render failed", slog.Any("error", err))
				return template.HTML(template.HTMLEscapeString(src))
			}
			return template.HTML(buf.String())
		},
		"plural": normalization.Plural,
	}
}

// CSRFToken returns the token the CSRF middleware stored for this request.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// CSRF protects form posts with a cookie token checked against the "_csrf"
// form field or the X-CSRF-Token header.
func CSRF(secure bool, skipper middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        skipper,
		TokenLookup:    "form:_csrf,header:" + echo.HeaderXCSRFToken,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// Static serves the embedded stylesheet under /static.
func Static(e *echo.Echo) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	e.StaticFS("/static", sub)
}
