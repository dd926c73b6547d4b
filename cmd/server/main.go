package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infiniteLeafWeb/internal/config"
	adminport "infiniteLeafWeb/internal/modules/admin/application/port"
	adminusecase "infiniteLeafWeb/internal/modules/admin/application/usecase"
	admindomain "infiniteLeafWeb/internal/modules/admin/domain"
	admintransport "infiniteLeafWeb/internal/modules/admin/interface"
	authusecase "infiniteLeafWeb/internal/modules/auth/application/usecase"
	authtransport "infiniteLeafWeb/internal/modules/auth/interface"
	bookingusecase "infiniteLeafWeb/internal/modules/booking/application/usecase"
	bookinginfra "infiniteLeafWeb/internal/modules/booking/infrastructure"
	bookingtransport "infiniteLeafWeb/internal/modules/booking/interface"
	catalogusecase "infiniteLeafWeb/internal/modules/catalog/application/usecase"
	catalogtransport "infiniteLeafWeb/internal/modules/catalog/interface"
	menutransport "infiniteLeafWeb/internal/modules/menu/interface"
	"infiniteLeafWeb/internal/modules/realtime/application/handler"
	realtimeport "infiniteLeafWeb/internal/modules/realtime/application/port"
	realtimeusecase "infiniteLeafWeb/internal/modules/realtime/application/usecase"
	realtimedomain "infiniteLeafWeb/internal/modules/realtime/domain"
	"infiniteLeafWeb/internal/modules/realtime/infrastructure"
	realtimetransport "infiniteLeafWeb/internal/modules/realtime/interface"
	sessionport "infiniteLeafWeb/internal/modules/session/application/port"
	sessionusecase "infiniteLeafWeb/internal/modules/session/application/usecase"
	sessioninfra "infiniteLeafWeb/internal/modules/session/infrastructure"
	sessiontransport "infiniteLeafWeb/internal/modules/session/interface"
	"infiniteLeafWeb/internal/platform/broker"
	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/platform/web"
	"infiniteLeafWeb/internal/shared/auth"
	"infiniteLeafWeb/internal/shared/httputil"
	"infiniteLeafWeb/internal/shared/logging"
)

const (
	janitorInterval = 5 * time.Minute
	wsClientBuffer  = 8
)

// forgetFunc adapts a function to authtransport.SessionForgetter.
type forgetFunc func(sessionID string)

func (f forgetFunc) Forget(sessionID string) { f(sessionID) }

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("upstream api", slog.String("baseUrl", cfg.API.BaseURL), slog.Duration("timeout", cfg.API.Timeout))

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("timezone", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics
	var registerer prometheus.Registerer
	if cfg.Metrics.Enabled {
		registerer = prometheus.DefaultRegisterer
	}
	httpMetrics := httputil.NewHTTPMetrics(registerer)

	// Sessions
	store, closeStore, err := openSessionStore(cfg.Session)
	if err != nil {
		slog.Error("session store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()
	manager := sessionusecase.NewManager(store, cfg.Session.IdleTimeout)
	cookie := sessiontransport.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	go manager.RunJanitor(ctx, janitorInterval)

	// Upstream + entity services
	proxy := upstream.NewProxy(upstream.NewRESTClient(cfg.API.BaseURL, cfg.API.Timeout, nil), upstream.NewMetrics(registerer))
	services := catalogusecase.NewServices(proxy)

	// Dashboard + live updates
	dashboard := adminusecase.NewDashboard(adminport.Catalog{
		Tables:       services.Tables,
		Customers:    services.Customers,
		Reservations: services.Reservations,
		Menu:         services.Menu,
	}, nil, loc)
	hub := infrastructure.NewHub()
	fanout := realtimeusecase.NewFanoutUseCase(hub, dashboard)

	var publisher realtimeport.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher := broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		registry := infrastructure.NewHandlerRegistry()
		for _, section := range admindomain.Sections {
			stream := realtimedomain.StreamName(cfg.Kafka.TopicPrefix, section.String())
			registry.Register(handler.NewEntityStreamHandler(section.String(), stream, realtimedomain.ChangeActions, fanout))
		}
		// every instance needs every change, so each one joins with its own group
		groupID := cfg.Kafka.GroupID + "-" + uuid.NewString()
		consumers := broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, groupID, cfg.Kafka.TopicPrefix)
		defer consumers.Wait()
		slog.Info("kafka enabled", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("group", groupID), slog.Any("topics", registry.Topics()))
	}
	announcer := realtimeusecase.NewAnnouncer(publisher, fanout)
	dashboard.WithNotifier(announcer)

	if registerer != nil {
		registerer.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "infiniteleaf",
			Subsystem: "realtime",
			Name:      "ws_clients",
			Help:      "Connected dashboard websockets.",
		}, func() float64 { return float64(hub.Count()) }))
	}

	go pruneDashboards(ctx, dashboard, cfg.Session.IdleTimeout)

	// Booking + login
	flow := bookingusecase.NewFlow(services.Tables, bookinginfra.NewCatalogGateway(services), announcer, loc)
	login := authusecase.NewLoginUseCase(proxy, auth.NewJWTInspector(cfg.Security.JWTSecret))

	renderer, err := web.NewRenderer()
	if err != nil {
		slog.Error("templates", slog.Any("error", err))
		os.Exit(1)
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Renderer = renderer
	e.HTTPErrorHandler = web.ErrorHandler(e)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(httpMetrics.Middleware())
	e.Use(sessiontransport.Middleware(manager, cookie))
	e.Use(web.CSRF(cfg.Session.CookieSecure, nil))

	web.Static(e)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	e.GET("/", menutransport.HomeHandler(services.Menu))
	e.GET("/Menu", menutransport.MenuHandler(services.Menu))
	bookingtransport.NewHandler(flow).Register(e.Group("/Booking"))

	forget := forgetFunc(func(sessionID string) {
		dashboard.Forget(sessionID)
		hub.DisconnectSession(sessionID)
	})
	authtransport.NewHandler(login, manager, cookie, forget).Register(e.Group(sessiontransport.LoginPath))

	gate := sessiontransport.RequireAuth(manager)
	adminGroup := e.Group("/Admin", gate)
	admintransport.NewHandler(dashboard, true).Register(adminGroup)
	adminGroup.GET("/ws", realtimetransport.NewWebsocketHandler(hub, wsClientBuffer))

	catalogtransport.RegisterRoutes(e, services, gate)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", slog.Any("error", err))
	}
}

func openSessionStore(cfg config.SessionConfig) (sessionport.Store, func(), error) {
	switch cfg.Store {
	case config.SessionStoreSQLite:
		store, err := sessioninfra.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("session store", slog.String("kind", cfg.Store), slog.String("path", cfg.SQLitePath))
		return store, func() { _ = store.Close() }, nil
	default:
		slog.Info("session store", slog.String("kind", config.SessionStoreMemory))
		return sessioninfra.NewMemoryStore(), func() {}, nil
	}
}

// pruneDashboards drops cached dashboards of sessions idle past the timeout.
func pruneDashboards(ctx context.Context, dashboard *adminusecase.Dashboard, idle time.Duration) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := dashboard.Prune(now.Add(-idle)); n > 0 {
				slog.Debug("dashboards pruned", slog.Int("count", n))
			}
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("requestId", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.Any("error", v.Error))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.NewTee(os.Stdout, file, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
