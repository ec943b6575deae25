package models

import "strings"

// CanonicalEmail normaliza un correo a su forma canónica: sin espacios y en
// minúsculas. Todas las búsquedas y comparaciones de identidad usan esta forma.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail aplica la validación mínima que usa el backend (igual que el
// registro: debe contener "@").
func ValidEmail(email string) bool {
	return strings.Contains(email, "@")
}
