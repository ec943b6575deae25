// Package resolver implementa el orquestador de resolución de identidad:
// decide, al arranque y ante deep links posteriores, qué identidad
// autenticada tiene el usuario, compitiendo las vías biométrica, magic link
// y facial sobre una única celda de decisión upgrade-only.
package resolver

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/yourorg/identgate/internal/client/api"
	"github.com/yourorg/identgate/internal/client/device"
	"github.com/yourorg/identgate/internal/client/facematch"
	"github.com/yourorg/identgate/internal/client/session"
	"github.com/yourorg/identgate/internal/models"
)

// State es el estado terminal de la resolución.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

// Decision es la única salida terminal del orquestador por sesión de app.
type Decision struct {
	State    State
	Identity api.Identity
	Reason   error // taxonomía del fallo cuando State es Unauthenticated
}

// IdentityAPI es el subconjunto del cliente del servicio que usa el
// orquestador. *api.Client lo satisface; los tests inyectan fakes.
type IdentityAPI interface {
	BiometricStatus(ctx context.Context, email string) api.StatusResult
	VerifyMagicLink(ctx context.Context, token string) api.AuthResult
	SendMagicLink(ctx context.Context, email string) api.SendResult
	FaceSample(ctx context.Context, email string) api.FaceSampleResult
}

// DefaultResendCooldown es la espera mínima entre reenvíos de magic link.
// Es throttling de UX en el cliente; la corrección la garantiza el servicio.
const DefaultResendCooldown = 30 * time.Second

// Options configura un Resolver. Store, API y Sensor son obligatorios;
// el resto tiene defaults.
type Options struct {
	Store   session.Store
	API     IdentityAPI
	Sensor  device.BiometricSensor
	Camera  device.CameraCapture
	Matcher facematch.Matcher

	// Deep links esperados: Scheme://Host?token=...
	// Cualquier otra URL se ignora en silencio.
	Scheme string
	Host   string

	ResendCooldown time.Duration

	// Notify recibe mensajes para el usuario (fallos de deep link, etc.).
	Notify func(msg string)
}

// Resolver posee el estado mutable compartido del core: la celda de
// decisión y el latch de deep link. Nadie más los escribe.
type Resolver struct {
	store   session.Store
	api     IdentityAPI
	sensor  device.BiometricSensor
	camera  device.CameraCapture
	matcher facematch.Matcher

	scheme   string
	host     string
	cooldown time.Duration
	notify   func(string)
	now      func() time.Time

	mu       sync.Mutex
	decided  bool
	decision Decision
	linkUsed bool // latch one-shot: a lo sumo un canje de deep link por sesión

	sending  bool
	sentOnce bool
	lastSend time.Time

	updates chan Decision
}

// New construye el orquestador con sus capacidades inyectadas.
func New(opts Options) *Resolver {
	r := &Resolver{
		store:    opts.Store,
		api:      opts.API,
		sensor:   opts.Sensor,
		camera:   opts.Camera,
		matcher:  opts.Matcher,
		scheme:   opts.Scheme,
		host:     opts.Host,
		cooldown: opts.ResendCooldown,
		notify:   opts.Notify,
		now:      time.Now,
		updates:  make(chan Decision, 8),
	}
	if r.matcher.MaxCompare == 0 {
		r.matcher = facematch.New()
	}
	if r.scheme == "" {
		r.scheme = "identgate"
	}
	if r.host == "" {
		r.host = "magic-link"
	}
	if r.cooldown == 0 {
		r.cooldown = DefaultResendCooldown
	}
	if r.notify == nil {
		r.notify = func(msg string) { log.Printf("🔔 %s", msg) }
	}
	return r
}

// Decision retorna la decisión vigente (StateUnknown si aún no hay).
func (r *Resolver) Decision() Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decision
}

// Updates expone la celda de decisión como canal observable: cada cambio
// de estado (incluido un upgrade posterior) se publica aquí.
func (r *Resolver) Updates() <-chan Decision {
	return r.updates
}

// apply aplica una decisión candidata respetando la regla upgrade-only:
// la primera decisión gana; después solo se admite pasar de
// Unauthenticated a Authenticated. Retorna la decisión vigente.
func (r *Resolver) apply(d Decision) Decision {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case !r.decided:
		r.decided = true
		r.decision = d
	case r.decision.State == StateUnauthenticated && d.State == StateAuthenticated:
		r.decision = d
	default:
		// Camino perdedor: su resultado se descarta
		return r.decision
	}

	select {
	case r.updates <- r.decision:
	default:
	}
	return r.decision
}

// Resolve ejecuta la resolución de arranque en frío. Se invoca una sola
// vez por sesión; siempre retorna una decisión, nunca propaga errores de
// adaptadores (fail closed).
func (r *Resolver) Resolve(ctx context.Context) Decision {
	rec, err := session.LoadRecord(ctx, r.store)
	if err != nil {
		// Sin sesión previa no se toca red ni sensor
		return r.apply(Decision{State: StateUnauthenticated, Reason: ErrNoPriorSession})
	}

	available, sensorType, err := r.sensor.Available(ctx)
	if err != nil || !available {
		return r.apply(Decision{State: StateUnauthenticated, Reason: ErrSensorUnavailable})
	}

	message := "Escanea tu huella para continuar"
	if sensorType == device.SensorFace {
		message = "Escanea tu rostro para continuar"
	}

	ok, err := r.sensor.Prompt(ctx, message)
	if err != nil || !ok {
		// Cancelación y excepción del adaptador cuentan igual: fallo
		return r.apply(Decision{State: StateUnauthenticated, Reason: ErrBiometricChallengeFailed})
	}

	email := models.CanonicalEmail(rec.Email)
	res := r.api.BiometricStatus(ctx, email)
	switch res.Status {
	case api.StatusOK:
		if !res.Identity.BiometricEnabled {
			return r.apply(Decision{State: StateUnauthenticated, Reason: ErrBiometricNotEnabled})
		}
		return r.apply(Decision{State: StateAuthenticated, Identity: res.Identity})
	case api.StatusMalformed:
		return r.apply(Decision{State: StateUnauthenticated, Reason: ErrMalformedResponse})
	case api.StatusUnreachable:
		return r.apply(Decision{State: StateUnauthenticated, Reason: ErrServiceUnreachable})
	default:
		return r.apply(Decision{State: StateUnauthenticated, Reason: ErrBiometricNotEnabled})
	}
}

// OnDeepLink procesa un candidato a magic link. Puede llegar antes,
// durante o después de Resolve; corre las veces que el sistema lo dispare.
func (r *Resolver) OnDeepLink(ctx context.Context, rawURL string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != r.scheme || u.Host != r.host {
		// URL ajena: se ignora sin decisión ni efectos
		return
	}

	// Latch one-shot: el mismo enlace puede llegar por get-initial-url y
	// por el listener vivo; solo el primero canjea el token
	r.mu.Lock()
	if r.linkUsed {
		r.mu.Unlock()
		return
	}
	r.linkUsed = true
	r.mu.Unlock()

	token := u.Query().Get("token")
	if token == "" {
		r.notify(UserMessage(ErrMissingToken))
		r.apply(Decision{State: StateUnauthenticated, Reason: ErrMissingToken})
		return
	}

	res := r.api.VerifyMagicLink(ctx, token)
	switch res.Status {
	case api.StatusOK:
		rec := session.Record{Name: res.Identity.Name, Email: res.Identity.Email}
		if err := session.SaveRecord(ctx, r.store, rec); err != nil {
			log.Printf("⚠️ no se pudo persistir la sesión: %v", err)
		}
		r.apply(Decision{State: StateAuthenticated, Identity: res.Identity})
	case api.StatusUnreachable, api.StatusMalformed:
		r.notify(UserMessage(ErrServiceUnreachable))
		r.apply(Decision{State: StateUnauthenticated, Reason: ErrServiceUnreachable})
	default:
		// Token vencido o adulterado: mensaje del servicio si lo hay
		msg := res.Message
		if msg == "" {
			msg = UserMessage(ErrTokenRejected)
		}
		r.notify(msg)
		r.apply(Decision{State: StateUnauthenticated, Reason: fmt.Errorf("%w: %s", ErrTokenRejected, msg)})
	}
}

// Logout borra la sesión local y fuerza Unauthenticated. Es el único
// downgrade permitido de la celda de decisión.
func (r *Resolver) Logout(ctx context.Context) error {
	if err := session.ClearRecord(ctx, r.store); err != nil {
		return err
	}

	r.mu.Lock()
	r.decided = true
	r.decision = Decision{State: StateUnauthenticated, Reason: ErrNoPriorSession}
	d := r.decision
	r.mu.Unlock()

	select {
	case r.updates <- d:
	default:
	}
	return nil
}

var _ IdentityAPI = (*api.Client)(nil)
