// Package session persiste el registro de sesión local del cliente:
// la identidad del último login y la foto de perfil cacheada. El mecanismo
// de almacenamiento seguro del dispositivo es un colaborador externo, aquí
// solo se conoce como un key-value opaco.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Claves usadas por el orquestador. Solo el orquestador escribe el store.
const (
	KeyRecord         = "usuario"
	KeyPhotoURI       = "foto_perfil_uri"
	KeyMagicLinkEmail = "correo_magiclink"
)

// ErrNotFound indica que la clave no existe en el store.
var ErrNotFound = errors.New("session: key not found")

// Store es el key-value opaco donde vive el registro de sesión.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Record es el subconjunto de identidad que se persiste localmente.
// No se guarda ningún otro material de credenciales.
type Record struct {
	Name  string `json:"nombre"`
	Email string `json:"correo"`
}

// LoadRecord lee el registro de sesión. Retorna ErrNotFound si no hay
// sesión previa; cualquier registro corrupto también cuenta como ausente.
func LoadRecord(ctx context.Context, s Store) (*Record, error) {
	raw, err := s.Get(ctx, KeyRecord)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: corrupt record", ErrNotFound)
	}
	if rec.Email == "" {
		return nil, fmt.Errorf("%w: empty record", ErrNotFound)
	}
	return &rec, nil
}

// SaveRecord escribe el registro de sesión tras una autenticación exitosa.
func SaveRecord(ctx context.Context, s Store, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyRecord, raw)
}

// ClearRecord borra sesión y foto cacheada (logout explícito).
func ClearRecord(ctx context.Context, s Store) error {
	if err := s.Delete(ctx, KeyRecord); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := s.Delete(ctx, KeyPhotoURI); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
