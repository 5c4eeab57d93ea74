package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por bodega+producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve el stock; cantidad cero si no hay registro.
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// Increment suma delta de forma atómica (crea la fila si no existe) y devuelve el stock resultante.
	// La fila queda bloqueada hasta el fin de la tx.
	Increment(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) (*entity.Stock, error)
}
