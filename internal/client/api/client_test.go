package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClientWithBase(srv.URL), srv
}

func TestLoginOK(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"token":"tok","user":{"id":1,"name":"Ana","email":"ANA@mail.com","biometric_enabled":true},"expires_at":"2026-01-01T00:00:00Z"}`))
	})
	defer srv.Close()

	res := c.Login(context.Background(), "Ana@Mail.com ", "secret")

	require.Equal(t, StatusOK, res.Status)
	require.Equal(t, "Ana", res.Identity.Name)
	// El correo vuelve canonicalizado
	require.Equal(t, "ana@mail.com", res.Identity.Email)
	require.True(t, res.Identity.BiometricEnabled)
	require.Equal(t, "tok", res.Token)
}

func TestLoginRejectedCarriesServiceMessage(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	})
	defer srv.Close()

	res := c.Login(context.Background(), "ana@mail.com", "wrong")

	require.Equal(t, StatusRejected, res.Status)
	require.Equal(t, "invalid credentials", res.Message)
}

func TestMalformedBodyIsNeverSuccess(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html>proxy error</html>`))
	})
	defer srv.Close()

	require.Equal(t, StatusMalformed, c.Login(context.Background(), "a@b.c", "x").Status)
	require.Equal(t, StatusMalformed, c.BiometricStatus(context.Background(), "a@b.c").Status)
	require.Equal(t, StatusMalformed, c.FaceSample(context.Background(), "a@b.c").Status)
	require.Equal(t, StatusMalformed, c.VerifyMagicLink(context.Background(), "tok").Status)
}

func TestUnreachableServer(t *testing.T) {
	c := NewClientWithBase("http://127.0.0.1:1") // nada escucha ahí

	require.Equal(t, StatusUnreachable, c.Login(context.Background(), "a@b.c", "x").Status)
	require.Equal(t, StatusUnreachable, c.SendMagicLink(context.Background(), "a@b.c").Status)
}

func TestBiometricStatusOK(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/biometric-status/ana@mail.com", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"email":"ana@mail.com","name":"Ana","biometric_enabled":true}`))
	})
	defer srv.Close()

	res := c.BiometricStatus(context.Background(), " ANA@mail.com")

	require.Equal(t, StatusOK, res.Status)
	require.True(t, res.Identity.BiometricEnabled)
}

func TestFaceSampleNotFound(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no face sample registered"}`))
	})
	defer srv.Close()

	res := c.FaceSample(context.Background(), "ana@mail.com")

	require.Equal(t, StatusNotFound, res.Status)
	require.Equal(t, "no face sample registered", res.Message)
}

func TestVerifyMagicLinkSendsTokenAsQuery(t *testing.T) {
	var gotToken string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/magic-link/verify", r.URL.Path)
		gotToken = r.URL.Query().Get("token")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"token":"sess","user":{"id":1,"name":"Ana","email":"ana@mail.com"},"expires_at":"2026-01-01T00:00:00Z"}`))
	})
	defer srv.Close()

	res := c.VerifyMagicLink(context.Background(), "abc+def")

	require.Equal(t, StatusOK, res.Status)
	require.Equal(t, "abc+def", gotToken)
}

func TestSendMagicLinkRejected(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no account for that email"}`))
	})
	defer srv.Close()

	res := c.SendMagicLink(context.Background(), "nadie@mail.com")

	require.Equal(t, StatusNotFound, res.Status)
	require.Equal(t, "no account for that email", res.Message)
}
