package repository

import (
	"context"

	"github.com/jhoicas/rma-api/internal/domain/entity"
)

// VendorRepository puerto de lectura de proveedores.
type VendorRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Vendor, error)
}
