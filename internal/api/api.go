// Package api exposes the analysis engine over HTTP for the external
// dashboard. The API serves computed numbers; the dashboard renders them.
package api

import (
	"log"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/epivet/epivet-go/internal/advisory"
	"github.com/epivet/epivet-go/internal/analysis"
	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/logging"
)

// Package-level logger specific to the API service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "api.log")
	serviceLevelVar.Set(slog.LevelInfo)

	logger, _, err = logging.NewFileLogger(logFilePath, "api", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize api file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("api", serviceLevelVar)
	}
}

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Settings *conf.Settings
	Analyzer *analysis.Analyzer
	Advisory *advisory.Client // nil when the advisory service is disabled
}

// New creates the API controller and registers all routes.
func New(settings *conf.Settings, analyzer *analysis.Analyzer, advisoryClient *advisory.Client) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	c := &Controller{
		Echo:     e,
		Settings: settings,
		Analyzer: analyzer,
		Advisory: advisoryClient,
	}

	c.Group = e.Group("/api/v1")
	c.initRoutes()

	return c
}

func (c *Controller) initRoutes() {
	c.Echo.GET("/healthz", c.HealthCheck)

	c.Group.GET("/species", c.GetSpecies)
	c.Group.POST("/simulate", c.Simulate)
	c.Group.POST("/interventions", c.EvaluateInterventions)
	c.Group.GET("/interventions", c.GetInterventionCatalog)
	c.Group.POST("/analyses", c.AnalyzeSample)
	c.Group.GET("/analyses", c.GetAnalyses)
	c.Group.GET("/analyses/export", c.ExportAnalyses)
	c.Group.POST("/advisory", c.GetAdvisory)
}

// Start runs the HTTP server on the given address; it blocks until the
// server stops.
func (c *Controller) Start(address string) error {
	logger.Info("starting API server", "address", address)
	return c.Echo.Start(address)
}

// HealthCheck reports service liveness.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ErrorResponse is the JSON shape of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HandleError logs the error and responds with a structured JSON error.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	logger.Error("API request failed",
		"path", ctx.Path(),
		"message", message,
		"error", err)

	return ctx.JSON(code, &ErrorResponse{
		Error:   err.Error(),
		Message: message,
		Code:    code,
	})
}
