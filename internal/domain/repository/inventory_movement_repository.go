package repository

import (
	"context"

	"github.com/jhoicas/rma-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListBySource(ctx context.Context, sourceType, sourceID string) ([]*entity.InventoryMovement, error)
}
