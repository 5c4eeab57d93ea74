package repository

import "context"

// SettingsRepository lee parámetros de negocio por categoría y clave.
// ok es false si la clave no está definida.
type SettingsRepository interface {
	Get(ctx context.Context, category, key string) (value string, ok bool, err error)
}
