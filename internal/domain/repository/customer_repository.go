package repository

import (
	"context"

	"github.com/jhoicas/rma-api/internal/domain/entity"
)

// CustomerRepository puerto de lectura de clientes (datos de contacto para notificaciones).
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
