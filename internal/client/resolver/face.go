package resolver

import (
	"context"
	"errors"
	"log"

	"github.com/yourorg/identgate/internal/client/api"
	"github.com/yourorg/identgate/internal/client/device"
	"github.com/yourorg/identgate/internal/client/session"
)

// ValidateFace ejecuta la vía facial iniciada por el usuario: captura una
// selfie, baja la muestra registrada y delega en el matcher. "Sin muestra
// registrada" y "no coincide" son fallos distintos con mensajes distintos.
func (r *Resolver) ValidateFace(ctx context.Context) error {
	rec, err := session.LoadRecord(ctx, r.store)
	if err != nil {
		return ErrNoPriorSession
	}

	if r.camera == nil {
		return ErrCaptureCancelled
	}

	photo, err := r.camera.CapturePhoto(ctx)
	if err != nil {
		if errors.Is(err, device.ErrCaptureCancelled) {
			return ErrCaptureCancelled
		}
		// Excepción del adaptador: fail closed
		log.Printf("❌ Error en captura de cámara: %v", err)
		return ErrCaptureCancelled
	}
	if photo == nil || photo.Base64 == "" {
		return ErrCaptureCancelled
	}

	res := r.api.FaceSample(ctx, rec.Email)
	switch res.Status {
	case api.StatusOK:
		// sigue abajo
	case api.StatusNotFound:
		return ErrNoFaceSample
	case api.StatusUnreachable:
		return ErrServiceUnreachable
	default:
		return ErrMalformedResponse
	}

	match := r.matcher.Match(photo.Base64, res.Sample)
	log.Printf("📊 Similitud de imágenes: %.2f%%", match.Score)
	if !match.IsMatch {
		return ErrFaceMismatch
	}

	r.apply(Decision{
		State:    StateAuthenticated,
		Identity: api.Identity{Name: rec.Name, Email: rec.Email},
	})
	return nil
}
