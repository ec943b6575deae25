package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ============================================================================
// RATE LIMITING MIDDLEWARE
// ============================================================================
// Protege el backend contra abuso y ataques de fuerza bruta
// Implementa diferentes niveles según criticidad del endpoint

// GlobalRateLimiter - Limitador general para todos los endpoints
// 1000 requests por minuto por IP
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": 60,
				"message":     "demasiadas solicitudes, intenta de nuevo en un minuto",
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
		LimiterMiddleware:      limiter.SlidingWindow{},
	})
}

// AuthRateLimiter - Limitador para endpoints de autenticación
// 10 requests por minuto (protege contra fuerza bruta)
func AuthRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			// Rate limit por IP + endpoint para mejor granularidad
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "authentication rate limit exceeded",
				"retry_after": 60,
				"message":     "demasiados intentos de autenticación, intenta de nuevo en un minuto",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// MagicLinkRateLimiter - Para la emisión de magic links (envía correos)
// 5 requests cada 5 minutos; el cooldown de 30s del cliente es solo UX,
// este límite es el que protege al servidor de spam de reenvíos
func MagicLinkRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 5 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "magic link rate limit exceeded",
				"retry_after": 300,
				"message":     "demasiadas solicitudes de enlace, intenta de nuevo en 5 minutos",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
