// Package device define los adaptadores de hardware del dispositivo:
// sensor biométrico y cámara. Las implementaciones reales viven fuera del
// core; el orquestador solo depende de estas interfaces.
package device

import (
	"context"
	"errors"
)

// Tipos de sensor reportados por Available.
const (
	SensorFingerprint = "fingerprint"
	SensorFace        = "face"
)

// ErrCaptureCancelled indica que el usuario canceló la captura de cámara.
var ErrCaptureCancelled = errors.New("device: capture cancelled")

// BiometricSensor es el adaptador del sensor biométrico del dispositivo.
type BiometricSensor interface {
	// Available reporta si hay sensor utilizable y de qué tipo.
	Available(ctx context.Context) (bool, string, error)

	// Prompt lanza un único challenge biométrico con el mensaje dado.
	// Retorna false tanto para fallo como para cancelación del usuario.
	Prompt(ctx context.Context, message string) (bool, error)
}

// Photo es una captura única de cámara con su payload embebido.
type Photo struct {
	Base64 string // puede traer prefijo data:image/...;base64,
}

// CameraCapture es el adaptador de cámara para la validación facial.
type CameraCapture interface {
	// CapturePhoto toma una única foto frontal.
	// Cancelación del usuario se reporta como ErrCaptureCancelled.
	CapturePhoto(ctx context.Context) (*Photo, error)
}
