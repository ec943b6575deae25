// Package api es el cliente HTTP tipado del servicio de identidad.
// Cada respuesta se decodifica a un resultado etiquetado: un cuerpo que no
// parsea como JSON es su propia variante (StatusMalformed), nunca un éxito.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/yourorg/identgate/internal/models"
)

// Status etiqueta el resultado de una llamada al servicio.
type Status int

const (
	StatusOK Status = iota
	StatusRejected    // el servicio respondió con rechazo explícito (401/409/422...)
	StatusNotFound    // 404: usuario o muestra inexistente
	StatusUnreachable // error de red/transporte
	StatusMalformed   // el cuerpo no es JSON bien formado
)

// Identity es la identidad que retorna el servicio.
type Identity struct {
	Name             string
	Email            string
	BiometricEnabled bool
}

// AuthResult es el resultado de login, register y verificación de magic link.
type AuthResult struct {
	Status   Status
	Identity Identity
	Token    string
	Message  string // mensaje del servicio cuando Status != StatusOK
}

// StatusResult es el resultado de biometric-status y biometric-enable.
type StatusResult struct {
	Status   Status
	Identity Identity
	Message  string
}

// FaceSampleResult es el resultado de la consulta de selfie registrada.
type FaceSampleResult struct {
	Status  Status
	Sample  string
	Message string
}

// SendResult es el resultado de la emisión de un magic link.
type SendResult struct {
	Status  Status
	Message string
}

// Cliente para el servicio de identidad
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient crea un cliente apuntando a IDENTITY_SERVICE_URL (o localhost).
func NewClient() *Client {
	baseURL := os.Getenv("IDENTITY_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return NewClientWithBase(baseURL)
}

// NewClientWithBase crea un cliente con base URL explícita.
func NewClientWithBase(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// decode lee el cuerpo completo y lo parsea en out.
// Retorna false si el cuerpo no es JSON válido (fail closed).
func decode(resp *http.Response, out interface{}) bool {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	return json.Unmarshal(body, out) == nil
}

// serviceMessage extrae el mensaje de error del servicio, si lo hay.
func serviceMessage(resp *http.Response) (string, bool) {
	var er models.ErrorResponse
	if !decode(resp, &er) {
		return "", false
	}
	return er.Error, true
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

// authResult decodifica una respuesta de login/verify a AuthResult.
func authResult(resp *http.Response, okStatus int) AuthResult {
	if resp.StatusCode == okStatus {
		var lr models.LoginResponse
		if !decode(resp, &lr) {
			return AuthResult{Status: StatusMalformed}
		}
		return AuthResult{
			Status: StatusOK,
			Identity: Identity{
				Name:             lr.User.Name,
				Email:            models.CanonicalEmail(lr.User.Email),
				BiometricEnabled: lr.User.BiometricEnabled,
			},
			Token: lr.Token,
		}
	}

	msg, ok := serviceMessage(resp)
	if !ok {
		return AuthResult{Status: StatusMalformed}
	}
	if resp.StatusCode == http.StatusNotFound {
		return AuthResult{Status: StatusNotFound, Message: msg}
	}
	return AuthResult{Status: StatusRejected, Message: msg}
}

// Login autentica con credenciales.
func (c *Client) Login(ctx context.Context, email, password string) AuthResult {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/login", models.LoginRequest{
		Email:    models.CanonicalEmail(email),
		Password: password,
	})
	if err != nil {
		return AuthResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()
	return authResult(resp, http.StatusOK)
}

// Register da de alta un usuario nuevo.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) AuthResult {
	req.Email = models.CanonicalEmail(req.Email)
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/register", req)
	if err != nil {
		return AuthResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()
	return authResult(resp, http.StatusCreated)
}

// BiometricStatus consulta el flag biométrico remoto de un correo canónico.
func (c *Client) BiometricStatus(ctx context.Context, email string) StatusResult {
	path := "/api/biometric-status/" + url.PathEscape(models.CanonicalEmail(email))
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return StatusResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()
	return statusResult(resp)
}

// EnableBiometric marca la cuenta para login biométrico.
func (c *Client) EnableBiometric(ctx context.Context, email string) StatusResult {
	path := "/api/biometric-enable/" + url.PathEscape(models.CanonicalEmail(email))
	resp, err := c.doJSON(ctx, http.MethodPatch, path, nil)
	if err != nil {
		return StatusResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()
	return statusResult(resp)
}

func statusResult(resp *http.Response) StatusResult {
	if resp.StatusCode == http.StatusOK {
		var sr models.BiometricStatusResponse
		if !decode(resp, &sr) {
			return StatusResult{Status: StatusMalformed}
		}
		return StatusResult{
			Status: StatusOK,
			Identity: Identity{
				Name:             sr.Name,
				Email:            models.CanonicalEmail(sr.Email),
				BiometricEnabled: sr.BiometricEnabled,
			},
		}
	}

	msg, ok := serviceMessage(resp)
	if !ok {
		return StatusResult{Status: StatusMalformed}
	}
	if resp.StatusCode == http.StatusNotFound {
		return StatusResult{Status: StatusNotFound, Message: msg}
	}
	return StatusResult{Status: StatusRejected, Message: msg}
}

// FaceSample recupera la selfie registrada de un usuario.
func (c *Client) FaceSample(ctx context.Context, email string) FaceSampleResult {
	path := "/api/face-sample/" + url.PathEscape(models.CanonicalEmail(email))
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return FaceSampleResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var fr models.FaceSampleResponse
		if !decode(resp, &fr) {
			return FaceSampleResult{Status: StatusMalformed}
		}
		if fr.FaceSample == "" {
			// 200 sin payload no cuenta como muestra válida
			return FaceSampleResult{Status: StatusMalformed}
		}
		return FaceSampleResult{Status: StatusOK, Sample: fr.FaceSample}
	}

	msg, ok := serviceMessage(resp)
	if !ok {
		return FaceSampleResult{Status: StatusMalformed}
	}
	if resp.StatusCode == http.StatusNotFound {
		return FaceSampleResult{Status: StatusNotFound, Message: msg}
	}
	return FaceSampleResult{Status: StatusRejected, Message: msg}
}

// UpdateFaceSample reemplaza la selfie registrada.
func (c *Client) UpdateFaceSample(ctx context.Context, email, sample string) SendResult {
	path := "/api/face-sample/" + url.PathEscape(models.CanonicalEmail(email))
	resp, err := c.doJSON(ctx, http.MethodPatch, path, models.FaceSampleUpdateRequest{FaceSample: sample})
	if err != nil {
		return SendResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()
	return sendResult(resp)
}

// SendMagicLink pide al servicio emitir un enlace de acceso por correo.
func (c *Client) SendMagicLink(ctx context.Context, email string) SendResult {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/magic-link/send", models.MagicLinkSendRequest{
		Email: models.CanonicalEmail(email),
	})
	if err != nil {
		return SendResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()
	return sendResult(resp)
}

func sendResult(resp *http.Response) SendResult {
	if resp.StatusCode == http.StatusOK {
		var raw map[string]interface{}
		if !decode(resp, &raw) {
			return SendResult{Status: StatusMalformed}
		}
		return SendResult{Status: StatusOK}
	}

	msg, ok := serviceMessage(resp)
	if !ok {
		return SendResult{Status: StatusMalformed}
	}
	if resp.StatusCode == http.StatusNotFound {
		return SendResult{Status: StatusNotFound, Message: msg}
	}
	return SendResult{Status: StatusRejected, Message: msg}
}

// VerifyMagicLink canjea el token del deep link por una identidad.
func (c *Client) VerifyMagicLink(ctx context.Context, token string) AuthResult {
	path := "/api/magic-link/verify?token=" + url.QueryEscape(token)
	resp, err := c.doJSON(ctx, http.MethodGet, path, nil)
	if err != nil {
		return AuthResult{Status: StatusUnreachable}
	}
	defer resp.Body.Close()
	return authResult(resp, http.StatusOK)
}
