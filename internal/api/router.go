package api

import (
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/api/controllers"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/app"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

type requestLogger interface {
	Info(f string, v ...any)
}

func RegisterRoutes(e *echo.Echo, app *app.Context) {
	registerRoutes(e, &controllers.OperationsController{
		Ops:      app.Service,
		Defaults: app.Config.Session(),
	}, app.Logger)
}

func registerRoutes(e *echo.Echo, ctrl *controllers.OperationsController, log requestLogger) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	api := e.Group("/api")

	api.POST("/auth", ctrl.Authenticate)
	api.GET("/groups", ctrl.ListGroups)
	api.GET("/groups/:name/articles", ctrl.ListArticles)
	api.GET("/articles/:id/head", ctrl.GetHeaders)
	api.GET("/articles/:id", ctrl.GetArticle)

	// Operation history
	api.GET("/history", ctrl.History)
	api.GET("/history/:id", ctrl.HistoryItem)
}
