package postgres

import (
	"context"

	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo parámetros de negocio en la tabla settings(category, key, value).
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// Get devuelve el valor; ok=false si la clave no existe.
func (r *SettingsRepo) Get(ctx context.Context, category, key string) (string, bool, error) {
	var value string
	err := r.q.QueryRow(ctx, `SELECT value FROM settings WHERE category = $1 AND key = $2`, category, key).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, storageErr("get setting", err)
	}
	return value, true, nil
}
