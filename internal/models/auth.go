package models

import "time"

// LoginRequest represents credentials provided by the client.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO is a minimal user representation for responses.
type UserDTO struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	BiometricEnabled bool   `json:"biometric_enabled"`
}

// LoginResponse is returned upon successful authentication.
type LoginResponse struct {
	Token     string    `json:"token"`
	User      UserDTO   `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message,omitempty"`
}

// BiometricStatusResponse describes the server-side biometric flag for a user.
type BiometricStatusResponse struct {
	Email            string `json:"email"`
	Name             string `json:"name"`
	BiometricEnabled bool   `json:"biometric_enabled"`
}

// MagicLinkSendRequest asks the server to email a login link.
type MagicLinkSendRequest struct {
	Email string `json:"email"`
}

// MagicLinkSendResponse confirms the link was issued.
type MagicLinkSendResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FaceSampleResponse carries the stored selfie for a user.
type FaceSampleResponse struct {
	Email      string `json:"email"`
	FaceSample string `json:"face_sample"`
}

// FaceSampleUpdateRequest replaces the stored selfie for a user.
type FaceSampleUpdateRequest struct {
	FaceSample string `json:"face_sample"`
}

// ErrorResponse is a simple error shape for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
