// Package facematch compara una selfie recién capturada contra la muestra
// registrada del usuario y decide si pertenecen a la misma persona.
//
// El algoritmo es una heurística posicional sobre el payload base64: el
// contrato estable es la interfaz (dos payloads entran, decisión + score
// determinista 0..100 sale, sin I/O). Una implementación real debería
// sustituir la comparación por un hash perceptual manteniendo el contrato.
package facematch

import (
	"regexp"
	"strings"
)

const (
	// DefaultThreshold es el score mínimo (en %) para declarar match.
	DefaultThreshold = 90.0

	// DefaultMaxCompare limita cuántas posiciones se comparan.
	DefaultMaxCompare = 5000
)

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Result es la salida de una comparación.
type Result struct {
	IsMatch bool
	Score   float64 // 0..100
}

// Matcher compara payloads de imagen con umbral configurable.
type Matcher struct {
	Threshold  float64
	MaxCompare int
}

// New retorna un Matcher con la política por defecto (umbral 90, tope 5000).
func New() Matcher {
	return Matcher{Threshold: DefaultThreshold, MaxCompare: DefaultMaxCompare}
}

// normalize retorna el payload sin el prefijo de formato data-URI.
func normalize(payload string) string {
	return dataURIPrefix.ReplaceAllString(strings.TrimSpace(payload), "")
}

// Match compara candidate contra reference posición por posición sobre el
// tramo común (acotado por MaxCompare) y calcula el porcentaje de posiciones
// idénticas. IsMatch es true si el score alcanza el umbral.
func (m Matcher) Match(candidate, reference string) Result {
	b1 := normalize(candidate)
	b2 := normalize(reference)

	if b1 == "" || b2 == "" {
		return Result{IsMatch: false, Score: 0}
	}

	length := len(b1)
	if len(b2) < length {
		length = len(b2)
	}
	if m.MaxCompare > 0 && length > m.MaxCompare {
		length = m.MaxCompare
	}

	equal := 0
	for i := 0; i < length; i++ {
		if b1[i] == b2[i] {
			equal++
		}
	}

	score := float64(equal) / float64(length) * 100
	return Result{IsMatch: score >= m.Threshold, Score: score}
}
