// Package api is the operator-facing HTTP front controller. It exposes the
// hub's list/start/pick-up/continue operations as JSON endpoints and mounts
// the DWP worker endpoint on the same server.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/xraph/dialog/engine"
)

// DWPPath is where workers dial in.
const DWPPath = "/dwp"

// API wires the echo handlers for a dialog hub.
type API struct {
	eng    *engine.Engine
	logger *slog.Logger
}

// New creates an API from a dialog Engine.
func New(eng *engine.Engine) *API {
	return &API{eng: eng, logger: eng.Logger()}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = a.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Skipper:   isDWP,
		Generator: uuid.NewString,
	}))
	e.Use(a.requestLogger())

	otelOpts := []otelecho.Option{otelecho.WithSkipper(isDWP)}
	if tp := a.eng.TracerProvider(); tp != nil {
		otelOpts = append(otelOpts, otelecho.WithTracerProvider(tp))
	}
	e.Use(otelecho.Middleware("dialog", otelOpts...))

	a.RegisterRoutes(e)
	return e
}

// RegisterRoutes registers all dialog routes on e.
func (a *API) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", a.healthz)
	e.GET(DWPPath, echo.WrapHandler(a.eng.DWP()))

	g := e.Group("/v1")
	g.GET("/workflow-types", a.listWorkflowTypes)
	g.POST("/workflows", a.startWorkflow)
	g.GET("/workflows/:id", a.pickUpWorkflow)
	g.POST("/workflows/:id/continue", a.continueWorkflow)
	g.GET("/connections", a.listConnections)
}

func (a *API) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:      isDWP,
		LogMethod:    true,
		LogRequestID: true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			a.logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "http request", attrs...)
			return nil
		},
	})
}

func isDWP(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, DWPPath)
}
