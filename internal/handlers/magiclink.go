package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yourorg/identgate/internal/debug"
	"github.com/yourorg/identgate/internal/models"
)

// magicClaims es el contenido firmado del token de magic link.
// jti queda registrado en DB para garantizar un solo uso.
type magicClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// issueMagicToken firma un token de un solo uso ligado a un correo.
func issueMagicToken(email string, ttl time.Duration) (token string, jti string, expires time.Time, err error) {
	now := time.Now()
	expires = now.Add(ttl)
	jti = uuid.NewString()
	claims := magicClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(getJWTSecret())
	return token, jti, expires, err
}

// parseMagicToken valida firma y expiración, y retorna los claims.
func parseMagicToken(token string) (*magicClaims, error) {
	claims := &magicClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return getJWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Email == "" || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// buildMagicLink arma el deep link que abre la app móvil.
func buildMagicLink(token string) string {
	return magicBaseURL + "?token=" + url.QueryEscape(token)
}

// SendMagicLink handles POST /api/magic-link/send
// Emite un token de 15 minutos y lo entrega por correo como deep link
func SendMagicLink(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	var req models.MagicLinkSendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Email = models.CanonicalEmail(req.Email)
	if req.Email == "" || !models.ValidEmail(req.Email) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "invalid email"})
	}

	// El correo debe pertenecer a un usuario registrado
	var userID int64
	err := db.QueryRow(`SELECT id FROM users WHERE email = ?`, req.Email).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			debug.SendAuthEvent("magic_link", "rejected", req.Email, "unknown user")
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "no account for that email"})
		}
		log.Printf("❌ Error consultando usuario para magic link: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	token, jti, expiresAt, err := issueMagicToken(req.Email, magicLinkTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}

	if _, err := db.Exec(
		`INSERT INTO magic_link_tokens (jti, email, expires_at) VALUES (?, ?, ?)`,
		jti, req.Email, expiresAt,
	); err != nil {
		log.Printf("❌ Error registrando magic link token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	if err := getMailer().SendMagicLink(req.Email, buildMagicLink(token)); err != nil {
		log.Printf("❌ Error enviando correo de magic link: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "could not send email"})
	}

	log.Printf("📨 Magic link emitido para %s (expira %s)", req.Email, expiresAt.Format(time.RFC3339))
	debug.SendAuthEvent("magic_link", "ok", req.Email, "link sent")

	return c.Status(fiber.StatusOK).JSON(models.MagicLinkSendResponse{
		Message:   "revisa tu correo para iniciar sesión",
		ExpiresAt: expiresAt,
	})
}

// VerifyMagicLink handles GET /api/magic-link/verify?token=...
// Un token verifica una sola vez: el jti se marca consumido en la misma query
func VerifyMagicLink(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	token := c.Query("token")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "token required"})
	}

	claims, err := parseMagicToken(token)
	if err != nil {
		debug.SendAuthEvent("magic_link", "rejected", "", "invalid or expired token")
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "invalid or expired link"})
	}

	// UPDATE condicional: consume el token solo si sigue vigente y sin usar
	res, err := db.Exec(
		`UPDATE magic_link_tokens SET consumed_at = NOW()
		 WHERE jti = ? AND consumed_at IS NULL AND expires_at > NOW()`,
		claims.ID,
	)
	if err != nil {
		log.Printf("❌ Error consumiendo magic link token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		debug.SendAuthEvent("magic_link", "rejected", claims.Email, "token already used or expired")
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "link already used or expired"})
	}

	var (
		id               int64
		name             string
		biometricEnabled bool
	)
	err = db.QueryRow(`SELECT id, name, biometric_enabled FROM users WHERE email = ?`, claims.Email).
		Scan(&id, &name, &biometricEnabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: "no account for that email"})
		}
		log.Printf("❌ Error consultando usuario de magic link: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	sessionToken, expiresAt, err := issueToken(id, claims.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "failed to sign token"})
	}
	touchLastLogin(db, id)
	log.Printf("✅ Magic link verificado: id=%d, email=%s", id, claims.Email)
	debug.SendAuthEvent("magic_link", "ok", claims.Email, "verified")

	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusOK).JSON(models.LoginResponse{
		Token:     sessionToken,
		User:      models.UserDTO{ID: id, Name: name, Email: claims.Email, BiometricEnabled: biometricEnabled},
		ExpiresAt: expiresAt,
		Message:   fmt.Sprintf("Bienvenido de nuevo, %s!", name),
	})
}
