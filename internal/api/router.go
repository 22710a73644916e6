package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/portogeoloc/entregas/docs"
	"github.com/portogeoloc/entregas/internal/api/handler"
	"github.com/portogeoloc/entregas/internal/api/middleware"
	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
	"github.com/portogeoloc/entregas/internal/core/share"
)

// Deps carries everything the HTTP layer needs. Wiring of the concrete
// adapters happens in cmd/server.
type Deps struct {
	Dashboard    ports.DashboardService
	Confirmation ports.ConfirmationService
	Auth         ports.AuthService
	History      handler.EventHistory
	Photos       ports.PhotoStore
	QR           handler.QREncoder
	Checks       map[string]handler.DependencyCheck

	PhotoBucket   string
	MaxPhotoBytes int64
	PublicOrigin  string
	JWTSecret     string
	Logger        zerolog.Logger

	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	metricsMiddleware, metricsHandler := httpMetrics(deps.Registry)
	e.Use(metricsMiddleware)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	deliveryHandler := handler.NewDeliveryHandler(deps.Dashboard, deps.QR, deps.PublicOrigin)
	confirmationHandler := handler.NewConfirmationHandler(deps.Confirmation, deps.MaxPhotoBytes)
	eventHandler := handler.NewEventHandler(deps.History)
	photoHandler := handler.NewPhotoHandler(deps.Photos, deps.PhotoBucket)

	// --- Auth routes ---
	// Accounts are created by an admin; the first admin is seeded at startup.
	e.POST("/auth/register", authHandler.Register,
		middleware.Auth(deps.JWTSecret),
		middleware.RBAC(domain.RoleAdmin),
	)
	e.POST("/auth/login", authHandler.Login)

	// --- Ops (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Customer confirmation flow (public, guarded by the access code) ---
	e.GET(share.ConfirmationPath, confirmationHandler.Start)
	confirmations := e.Group("/v1/confirmations")
	confirmations.GET("/:session", confirmationHandler.Get)
	confirmations.POST("/:session/verify", confirmationHandler.Verify)
	confirmations.POST("/:session/location", confirmationHandler.SubmitLocation)

	// Photo URLs are stored on the record and opened by anyone holding them.
	e.GET("/storage/:bucket/*", photoHandler.Serve)

	// --- Seller dashboard ---
	v1 := e.Group("/v1",
		middleware.Auth(deps.JWTSecret),
		middleware.RBAC(domain.RoleAdmin, domain.RoleSeller),
	)
	v1.GET("/deliveries", deliveryHandler.Dashboard)
	v1.POST("/deliveries", deliveryHandler.Create)
	v1.GET("/deliveries/:id", deliveryHandler.Get)
	v1.GET("/deliveries/:id/details", deliveryHandler.Details)
	v1.GET("/deliveries/:id/options", deliveryHandler.Options)
	v1.GET("/deliveries/:id/share", deliveryHandler.Share)
	v1.POST("/deliveries/:id/share/copy", deliveryHandler.CopyLink)
	v1.GET("/deliveries/:id/qrcode.png", deliveryHandler.QRCode)
	v1.GET("/deliveries/:id/events", eventHandler.History)
	v1.GET("/share/universal/qrcode.png", deliveryHandler.UniversalQRCode)

	return e
}

func httpMetrics(reg *prometheus.Registry) (echo.MiddlewareFunc, echo.HandlerFunc) {
	if reg == nil {
		return echoprometheus.NewMiddleware("entregas"), echoprometheus.NewHandler()
	}
	mw := echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "entregas",
		Registerer: reg,
	})
	h := echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
	return mw, h
}
