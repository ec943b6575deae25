package resolver

import "errors"

// Taxonomía de fallos del orquestador. Cada uno resuelve localmente a
// Unauthenticated o a un mensaje para el usuario; ninguno es fatal: el
// login manual con credenciales siempre queda como camino de respaldo.
var (
	ErrNoPriorSession           = errors.New("no prior session")
	ErrSensorUnavailable        = errors.New("biometric sensor unavailable")
	ErrBiometricChallengeFailed = errors.New("biometric challenge failed")
	ErrServiceUnreachable       = errors.New("identity service unreachable")
	ErrMalformedResponse        = errors.New("malformed service response")
	ErrBiometricNotEnabled      = errors.New("biometric login not enabled remotely")
	ErrInvalidDeepLink          = errors.New("invalid or foreign deep link")
	ErrMissingToken             = errors.New("deep link missing token")
	ErrTokenRejected            = errors.New("magic link token rejected")
	ErrNoFaceSample             = errors.New("no face sample on file")
	ErrFaceMismatch             = errors.New("face does not match stored sample")
	ErrCaptureCancelled         = errors.New("camera capture cancelled")
	ErrResendCooldown           = errors.New("magic link resend still cooling down")
	ErrInvalidEmail             = errors.New("invalid email")
)

// UserMessage traduce un fallo a un mensaje legible para el usuario.
// Red caída y respuesta malformada colapsan en el mismo mensaje genérico
// para no filtrar detalles internos.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoPriorSession):
		return "No hay una sesión guardada en este dispositivo."
	case errors.Is(err, ErrSensorUnavailable):
		return "Tu dispositivo no tiene autenticación biométrica disponible."
	case errors.Is(err, ErrBiometricChallengeFailed):
		return "Autenticación cancelada por el usuario."
	case errors.Is(err, ErrBiometricNotEnabled):
		return "El login biométrico no está habilitado para esta cuenta."
	case errors.Is(err, ErrMissingToken):
		return "El enlace no contiene un token de acceso."
	case errors.Is(err, ErrTokenRejected):
		return "El enlace no es válido o ya expiró."
	case errors.Is(err, ErrNoFaceSample):
		return "No hay rostro registrado para este usuario."
	case errors.Is(err, ErrFaceMismatch):
		return "Rostro no coincide con el registrado."
	case errors.Is(err, ErrCaptureCancelled):
		return "Captura cancelada."
	case errors.Is(err, ErrResendCooldown):
		return "Espera unos segundos antes de reenviar el enlace."
	case errors.Is(err, ErrInvalidEmail):
		return "Por favor ingresa un correo válido."
	case errors.Is(err, ErrServiceUnreachable), errors.Is(err, ErrMalformedResponse):
		return "No se pudo conectar con el servidor."
	default:
		return "No se pudo conectar con el servidor."
	}
}
