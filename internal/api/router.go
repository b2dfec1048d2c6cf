package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pawmart/support-system/internal/api/handler"
	"github.com/pawmart/support-system/internal/api/middleware"
	"github.com/pawmart/support-system/internal/core/ports"
)

// RouterDeps carries the assembled services the router wires into handlers.
type RouterDeps struct {
	Auth     ports.AuthService
	Chat     ports.ChatService
	Verifier ports.TokenVerifier
	Health   *handler.HealthHandler
	DevMode  bool
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("support"))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.DevMode)
	chatHandler := handler.NewChatHandler(deps.Chat)
	authMiddleware := middleware.Auth(deps.Verifier)

	// --- Account routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/token", authHandler.Refresh)
	e.DELETE("/logout", authHandler.Logout)
	e.POST("/request-password-reset", authHandler.RequestPasswordReset)
	e.POST("/reset-password", authHandler.ResetPassword)

	// --- Chat (access token required) ---
	e.POST("/chat", chatHandler.Ask, authMiddleware)

	// --- Operational endpoints ---
	e.GET("/health", deps.Health.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", deps.Health.Readiness)     // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
