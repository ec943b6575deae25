package handlers

import (
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/identgate/internal/cache"
	"github.com/yourorg/identgate/internal/debug"
	"github.com/yourorg/identgate/internal/models"
)

// GetFaceSample handles GET /api/face-sample/:email
// Retorna la selfie registrada; 404 distingue "sin muestra" de "sin usuario"
func GetFaceSample(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	email := models.CanonicalEmail(c.Params("email"))
	if email == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "email required"})
	}

	if cached, found := cache.FaceSampleCache.Get(email); found {
		if resp, ok := cached.(models.FaceSampleResponse); ok {
			return c.Status(fiber.StatusOK).JSON(resp)
		}
	}

	var sample sql.NullString
	err := db.QueryRow(`SELECT face_sample FROM users WHERE email = ?`, email).Scan(&sample)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "user not found"})
		}
		log.Printf("❌ Error consultando face_sample: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	if !sample.Valid || strings.TrimSpace(sample.String) == "" {
		// Usuario existe pero nunca registró selfie: estado válido
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "no face sample registered"})
	}

	resp := models.FaceSampleResponse{Email: email, FaceSample: sample.String}
	cache.FaceSampleCache.Set(email, resp)
	return c.Status(fiber.StatusOK).JSON(resp)
}

// UpdateFaceSample handles PATCH /api/face-sample/:email
func UpdateFaceSample(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	email := models.CanonicalEmail(c.Params("email"))
	if email == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "email required"})
	}

	var req models.FaceSampleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	if strings.TrimSpace(req.FaceSample) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "face_sample required"})
	}

	res, err := db.Exec(`UPDATE users SET face_sample = ? WHERE email = ?`, req.FaceSample, email)
	if err != nil {
		log.Printf("❌ Error guardando face_sample: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		var exists int
		if err := db.QueryRow(`SELECT 1 FROM users WHERE email = ?`, email).Scan(&exists); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "user not found"})
		}
	}

	cache.FaceSampleCache.Delete(email)
	log.Printf("✅ Selfie actualizada para %s", email)
	debug.SendAuthEvent("face", "ok", email, "sample updated")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "face sample updated"})
}
