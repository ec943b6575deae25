package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/identgate/internal/cache"
	appdb "github.com/yourorg/identgate/internal/db"
	"github.com/yourorg/identgate/internal/handlers"
	"github.com/yourorg/identgate/internal/middleware"
	"github.com/yourorg/identgate/internal/routes"
)

func main() {
	_ = godotenv.Load()

	app := fiber.New()
	app.Use(logger.New())
	app.Use(middleware.GlobalRateLimiter())

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	var dbReady bool

	go func() {
		for {
			db, err := appdb.Connect()
			if err != nil {
				log.Printf("db connect error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if err := appdb.EnsureSchema(db); err != nil {
				log.Printf("ensure schema error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			handlers.Setup(db)
			routes.Register(app, db)
			dbReady = true
			log.Printf("✅ Database ready and routes registered")
			return
		}
	}()

	// Wait briefly for DB to be ready
	for i := 0; i < 10 && !dbReady; i++ {
		time.Sleep(500 * time.Millisecond)
	}

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Señal de terminación recibida, cerrando servidor...")

		cache.StopCaches()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}

		log.Println("✅ Servidor cerrado correctamente")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Servidor de identidad escuchando en :%s", port)
	log.Println("📍 Endpoints disponibles:")
	log.Println("   POST  /api/login                    - Login con credenciales")
	log.Println("   POST  /api/register                 - Alta de usuario")
	log.Println("   GET   /api/biometric-status/:email  - Flag biométrico remoto")
	log.Println("   PATCH /api/biometric-enable/:email  - Habilitar login biométrico")
	log.Println("   GET   /api/face-sample/:email       - Selfie registrada")
	log.Println("   PATCH /api/face-sample/:email       - Actualizar selfie")
	log.Println("   POST  /api/magic-link/send          - Emitir magic link por correo")
	log.Println("   GET   /api/magic-link/verify        - Verificar magic link")
	log.Println("   WS    /ws/auth-events               - Dashboard de eventos de auth")
	log.Println("💡 Presiona Ctrl+C para detener")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
