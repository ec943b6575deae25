package handlers

import (
	"strings"
	"testing"
	"time"
)

func setTestSecret(t *testing.T) {
	t.Helper()
	setupMu.Lock()
	jwtSecret = []byte("test-secret-0123456789abcdef0123")
	setupMu.Unlock()
}

func TestMagicTokenRoundTrip(t *testing.T) {
	setTestSecret(t)

	token, jti, expires, err := issueMagicToken("ana@mail.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("issueMagicToken: %v", err)
	}
	if jti == "" {
		t.Error("Expected non-empty jti")
	}
	if time.Until(expires) < 14*time.Minute {
		t.Errorf("Expected ~15m validity, got %s", time.Until(expires))
	}

	claims, err := parseMagicToken(token)
	if err != nil {
		t.Fatalf("parseMagicToken: %v", err)
	}
	if claims.Email != "ana@mail.com" {
		t.Errorf("Expected email ana@mail.com, got %s", claims.Email)
	}
	if claims.ID != jti {
		t.Errorf("Expected jti %s, got %s", jti, claims.ID)
	}
}

func TestMagicTokenExpired(t *testing.T) {
	setTestSecret(t)

	token, _, _, err := issueMagicToken("ana@mail.com", -1*time.Minute)
	if err != nil {
		t.Fatalf("issueMagicToken: %v", err)
	}

	if _, err := parseMagicToken(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}

func TestMagicTokenTampered(t *testing.T) {
	setTestSecret(t)

	token, _, _, err := issueMagicToken("ana@mail.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("issueMagicToken: %v", err)
	}

	// Alterar la firma invalida el token
	tampered := token[:len(token)-2] + "xx"
	if _, err := parseMagicToken(tampered); err == nil {
		t.Error("Expected tampered token to be rejected")
	}
}

func TestMagicTokenGarbage(t *testing.T) {
	setTestSecret(t)

	if _, err := parseMagicToken("not-a-jwt"); err == nil {
		t.Error("Expected garbage token to be rejected")
	}
}

func TestBuildMagicLink(t *testing.T) {
	setupMu.Lock()
	magicBaseURL = "identgate://magic-link"
	setupMu.Unlock()

	link := buildMagicLink("abc+def/ghi")
	if !strings.HasPrefix(link, "identgate://magic-link?token=") {
		t.Errorf("Unexpected link prefix: %s", link)
	}
	// El token va query-escaped
	escaped := link[strings.Index(link, "token=")+len("token="):]
	if strings.Contains(escaped, "+") || strings.Contains(escaped, "/") {
		t.Errorf("Expected escaped token in link: %s", link)
	}
}
