package resolver

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourorg/identgate/internal/client/api"
	"github.com/yourorg/identgate/internal/client/session"
	"github.com/yourorg/identgate/internal/models"
)

// Máquina de estados del envío de magic link:
//
//	Idle → Sending → Sent(cooldown) → (Idle | Resend)
//
// Un envío fallido vuelve a Idle sin armar el cooldown; dentro del cooldown
// el reenvío se rechaza localmente sin tocar la red.

// SendMagicLink pide al servicio emitir un enlace para email. Retorna un
// error de la taxonomía; el mensaje del servicio va envuelto cuando existe.
func (r *Resolver) SendMagicLink(ctx context.Context, email string) error {
	email = models.CanonicalEmail(email)
	if email == "" || !models.ValidEmail(email) {
		return ErrInvalidEmail
	}

	r.mu.Lock()
	if r.sending {
		r.mu.Unlock()
		return ErrResendCooldown
	}
	if remaining := r.cooldownRemainingLocked(); remaining > 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s restantes", ErrResendCooldown, remaining.Round(time.Second))
	}
	r.sending = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.sending = false
		r.mu.Unlock()
	}()

	// El correo pendiente se recuerda solo para la UX de reenvío
	if err := r.store.Set(ctx, session.KeyMagicLinkEmail, []byte(email)); err != nil {
		log.Printf("⚠️ no se pudo recordar el correo pendiente: %v", err)
	}

	res := r.api.SendMagicLink(ctx, email)
	switch res.Status {
	case api.StatusOK:
		r.mu.Lock()
		r.sentOnce = true
		r.lastSend = r.now()
		r.mu.Unlock()
		return nil
	case api.StatusUnreachable, api.StatusMalformed:
		return ErrServiceUnreachable
	default:
		if res.Message != "" {
			return fmt.Errorf("%w: %s", ErrTokenRejected, res.Message)
		}
		return ErrTokenRejected
	}
}

func (r *Resolver) cooldownRemainingLocked() time.Duration {
	if r.lastSend.IsZero() {
		return 0
	}
	remaining := r.cooldown - r.now().Sub(r.lastSend)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CooldownRemaining retorna cuánto falta para poder reenviar.
func (r *Resolver) CooldownRemaining() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cooldownRemainingLocked()
}

// LinkSent indica si ya hubo al menos un envío exitoso esta sesión.
// El indicador de "correo enviado" de la UI no se limpia al expirar el cooldown.
func (r *Resolver) LinkSent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sentOnce
}

// PendingEmail recupera el correo del último envío para precargar la UI.
func (r *Resolver) PendingEmail(ctx context.Context) string {
	raw, err := r.store.Get(ctx, session.KeyMagicLinkEmail)
	if err != nil {
		return ""
	}
	return string(raw)
}
