package models

import "time"

// User represents a user record in DB (internal use only).
type User struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Address          string    `json:"address,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Photo            string    `json:"-"` // base64, puede ser grande
	FaceSample       string    `json:"-"` // selfie base64 registrada en el alta
	BiometricEnabled bool      `json:"biometric_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// RegisterRequest holds the data for creating a new user.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Photo      string `json:"photo,omitempty"`
	FaceSample string `json:"face_sample,omitempty"`
}
