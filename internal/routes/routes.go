package routes

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/yourorg/identgate/internal/debug"
	"github.com/yourorg/identgate/internal/handlers"
	"github.com/yourorg/identgate/internal/middleware"
)

func Register(app *fiber.App, db *sql.DB) {
	// ============================================================================
	// API PÚBLICA (Endpoints para la app móvil)
	// ============================================================================
	api := app.Group("/api")

	// Health check (sin rate limiting)
	api.Get("/health", handlers.Health)

	// ============================================================================
	// AUTENTICACIÓN (con rate limiting estricto)
	// ============================================================================
	api.Post("/login", middleware.AuthRateLimiter(), handlers.Login)
	api.Post("/register", middleware.AuthRateLimiter(), handlers.Register)

	// Flag biométrico: la app lo consulta tras el challenge del dispositivo
	api.Get("/biometric-status/:email", handlers.BiometricStatus)
	api.Patch("/biometric-enable/:email", middleware.AuthRateLimiter(), handlers.BiometricEnable)

	// Selfie registrada para validación facial
	api.Get("/face-sample/:email", handlers.GetFaceSample)
	api.Patch("/face-sample/:email", middleware.AuthRateLimiter(), handlers.UpdateFaceSample)

	// ============================================================================
	// MAGIC LINK (emite correos: rate limiting más agresivo en el envío)
	// ============================================================================
	api.Post("/magic-link/send", middleware.MagicLinkRateLimiter(), handlers.SendMagicLink)
	api.Get("/magic-link/verify", middleware.AuthRateLimiter(), handlers.VerifyMagicLink)

	// ============================================================================
	// AUTH EVENTS DASHBOARD WEBSOCKET
	// ============================================================================
	// Dashboard web que observa logins, magic links y eventos faciales en vivo
	app.Use("/ws/auth-events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/auth-events", websocket.New(func(c *websocket.Conn) {
		debug.HandleWebSocketFiber(c)
	}))
}
