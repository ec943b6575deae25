package handlers

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yourorg/identgate/internal/cache"
	"github.com/yourorg/identgate/internal/debug"
	"github.com/yourorg/identgate/internal/mailer"
	"github.com/yourorg/identgate/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// package-level dependencies
var (
	setupOnce    sync.Once    // Garantiza inicialización única
	setupMu      sync.RWMutex // Protege acceso a variables globales
	dbConn       *sql.DB
	jwtSecret    []byte
	tokenTTL     = 24 * time.Hour
	magicLinkTTL = 15 * time.Minute
	linkMailer   mailer.Mailer
	magicBaseURL = "identgate://magic-link"
)

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(db *sql.DB) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()

		dbConn = db
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			// Verificar si estamos en producción
			if os.Getenv("ENV") == "production" || os.Getenv("ENVIRONMENT") == "production" {
				log.Fatal("❌ CRITICAL: JWT_SECRET must be set in production environment")
			}
			log.Println("⚠️ WARNING: Using default JWT secret (development only)")
			secret = "dev-secret-change-me-0123456789ab"
		}

		// Validar longitud mínima del secret
		if len(secret) < 32 {
			log.Fatalf("❌ CRITICAL: JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
		}

		jwtSecret = []byte(secret)

		if ttl := os.Getenv("JWT_TTL"); ttl != "" {
			dur, err := time.ParseDuration(ttl)
			if err != nil || dur <= 0 {
				log.Printf("invalid JWT_TTL=%q, using default %s", ttl, tokenTTL)
			} else {
				tokenTTL = dur
			}
		}

		if ttl := os.Getenv("MAGIC_LINK_TTL"); ttl != "" {
			dur, err := time.ParseDuration(ttl)
			if err != nil || dur <= 0 {
				log.Printf("invalid MAGIC_LINK_TTL=%q, using default %s", ttl, magicLinkTTL)
			} else {
				magicLinkTTL = dur
			}
		}

		if base := strings.TrimSpace(os.Getenv("MAGIC_LINK_BASE")); base != "" {
			magicBaseURL = strings.TrimSuffix(base, "/")
		}

		linkMailer = mailer.NewFromEnv()
		cache.InitCaches()
	})
}

// getDBConn retorna la conexión de base de datos de forma segura
func getDBConn() *sql.DB {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return dbConn
}

// getJWTSecret retorna el secret JWT de forma segura
func getJWTSecret() []byte {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return jwtSecret
}

func getMailer() mailer.Mailer {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return linkMailer
}

type userClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func issueToken(userID int64, email string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(tokenTTL)
	claims := userClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(getJWTSecret())
	return signed, expires, err
}

// touchLastLogin actualiza last_login; un fallo aquí no aborta el flujo
func touchLastLogin(db *sql.DB, id int64) {
	if _, err := db.Exec(`UPDATE users SET last_login = NOW() WHERE id = ?`, id); err != nil {
		log.Printf("⚠️ Warning: failed to update last_login for user %d: %v", id, err)
	}
}

// Register handles POST /api/register.
func Register(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = models.CanonicalEmail(req.Email)

	if req.Name == "" || req.Email == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "name and email required"})
	}
	if !models.ValidEmail(req.Email) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "invalid email"})
	}
	if req.Password == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "password required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to secure password"})
	}

	res, err := db.Exec(`
		INSERT INTO users (name, email, password_hash, address, phone, photo, face_sample)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.Name, req.Email, string(hash),
		sql.NullString{String: req.Address, Valid: req.Address != ""},
		sql.NullString{String: req.Phone, Valid: req.Phone != ""},
		sql.NullString{String: req.Photo, Valid: req.Photo != ""},
		sql.NullString{String: req.FaceSample, Valid: req.FaceSample != ""})

	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{Error: "email already exists"})
		}
		log.Printf("❌ Error insertando usuario: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	userID, _ := res.LastInsertId()
	log.Printf("✅ Usuario registrado: id=%d, email=%s", userID, req.Email)
	debug.SendAuthEvent("register", "ok", req.Email, "")

	token, expiresAt, err := issueToken(userID, req.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}
	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusCreated).JSON(models.LoginResponse{
		Token:     token,
		User:      models.UserDTO{ID: userID, Name: req.Name, Email: req.Email},
		ExpiresAt: expiresAt,
	})
}

// Login handles POST /api/login.
func Login(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = models.CanonicalEmail(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "email and password required"})
	}

	var (
		id               int64
		name, email      string
		passwordHash     string
		biometricEnabled bool
	)
	err := db.QueryRow(`SELECT id, name, email, password_hash, biometric_enabled FROM users WHERE email = ?`, req.Email).
		Scan(&id, &name, &email, &passwordHash, &biometricEnabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			debug.SendAuthEvent("login", "rejected", req.Email, "unknown user")
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid credentials"})
		}
		log.Printf("❌ Error consultando usuario: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		debug.SendAuthEvent("login", "rejected", req.Email, "bad password")
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid credentials"})
	}
	token, expiresAt, err := issueToken(id, email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}
	touchLastLogin(db, id)
	log.Printf("✅ Login correcto: id=%d, email=%s", id, email)
	debug.SendAuthEvent("login", "ok", email, "")

	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusOK).JSON(models.LoginResponse{
		Token:     token,
		User:      models.UserDTO{ID: id, Name: name, Email: email, BiometricEnabled: biometricEnabled},
		ExpiresAt: expiresAt,
	})
}

// BiometricStatus handles GET /api/biometric-status/:email
// La app lo consulta tras superar el challenge biométrico del dispositivo
func BiometricStatus(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	email := models.CanonicalEmail(c.Params("email"))
	if email == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "email required"})
	}

	if cached, found := cache.StatusCache.Get(email); found {
		if resp, ok := cached.(models.BiometricStatusResponse); ok {
			return c.Status(fiber.StatusOK).JSON(resp)
		}
	}

	var (
		name             string
		biometricEnabled bool
	)
	err := db.QueryRow(`SELECT name, biometric_enabled FROM users WHERE email = ?`, email).
		Scan(&name, &biometricEnabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "user not found"})
		}
		log.Printf("❌ Error consultando biometric_enabled: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	resp := models.BiometricStatusResponse{Email: email, Name: name, BiometricEnabled: biometricEnabled}
	cache.StatusCache.Set(email, resp)
	return c.Status(fiber.StatusOK).JSON(resp)
}

// BiometricEnable handles PATCH /api/biometric-enable/:email
// Marca la cuenta para permitir login biométrico en próximos arranques
func BiometricEnable(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	email := models.CanonicalEmail(c.Params("email"))
	if email == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "email required"})
	}

	res, err := db.Exec(`UPDATE users SET biometric_enabled = 1 WHERE email = ?`, email)
	if err != nil {
		log.Printf("❌ Error habilitando biometría: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		// UPDATE sin filas puede ser "no existe" o "ya estaba en 1"
		var exists int
		if err := db.QueryRow(`SELECT 1 FROM users WHERE email = ?`, email).Scan(&exists); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "user not found"})
		}
	}

	cache.StatusCache.Delete(email)
	log.Printf("✅ Biometría habilitada para %s", email)
	debug.SendAuthEvent("biometric", "ok", email, "enabled")

	var name string
	var enabled bool
	if err := db.QueryRow(`SELECT name, biometric_enabled FROM users WHERE email = ?`, email).Scan(&name, &enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	return c.Status(fiber.StatusOK).JSON(models.BiometricStatusResponse{Email: email, Name: name, BiometricEnabled: enabled})
}
