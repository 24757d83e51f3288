package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/sportify/camp-server/internal/api/handler"
	"github.com/sportify/camp-server/internal/api/middleware"
	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// Dependencies is everything the router wires into handlers. main owns the
// construction of each piece.
type Dependencies struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Classes       ports.ClassService
	Selections    ports.SelectionService
	Enrollments   ports.EnrollmentService
	Authenticator ports.Authenticator
	Authorizer    ports.RoleAuthorizer
	RateLimiter   *middleware.RateLimiter
	HealthChecks  map[string]handler.DependencyCheck
	Log           zerolog.Logger
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "camp",
		Registerer: d.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users, d.Authorizer)
	classHandler := handler.NewClassHandler(d.Classes, d.Authorizer)
	enrollHandler := handler.NewEnrollmentHandler(d.Selections, d.Enrollments, d.Authorizer)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.HealthChecks)

	auth := middleware.Auth(d.Authenticator)
	admin := middleware.RequireRole(d.Authorizer, domain.RoleAdmin)
	instructor := middleware.RequireRole(d.Authorizer, domain.RoleInstructor)
	limited := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if d.RateLimiter != nil {
		limited = d.RateLimiter.Middleware()
	}

	// --- Public ---
	e.GET("/", healthHandler.Banner)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.POST("/jwt", authHandler.IssueToken, limited)
	e.POST("/users", authHandler.Register)
	e.GET("/class/approved", classHandler.ListApproved)

	// --- Users ---
	users := e.Group("/users", auth)
	users.GET("", userHandler.List, admin)
	users.GET("/role/:email", userHandler.Role)
	users.PATCH("/admin/:id", userHandler.PromoteAdmin, admin)
	users.PATCH("/instructor/:id", userHandler.PromoteInstructor, admin)

	// --- Classes ---
	classes := e.Group("/class", auth)
	classes.GET("", classHandler.ListAll, admin)
	classes.GET("/instructor/:email", classHandler.ListByInstructor)
	classes.GET("/:id", classHandler.Get)
	classes.POST("", classHandler.Create, instructor)
	classes.PUT("/:id", classHandler.Update, instructor)
	classes.PATCH("/approve/:id", classHandler.Approve, admin)
	classes.PATCH("/deny/:id", classHandler.Deny, admin)

	// --- Enrollment ---
	student := e.Group("/student/class/select", auth)
	student.POST("", enrollHandler.Select)
	student.GET("/:email", enrollHandler.ListSelections)
	student.DELETE("/:id", enrollHandler.CancelSelection)

	e.POST("/create-payment-intent", enrollHandler.CreatePaymentIntent, auth, limited)
	e.POST("/payment", enrollHandler.Commit, auth)
	e.GET("/payment/:email", enrollHandler.ListPayments, auth)

	return e
}

// requestLogger feeds echo's access log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
