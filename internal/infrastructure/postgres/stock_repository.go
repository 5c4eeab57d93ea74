package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una bodega; cero si no hay fila.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock WHERE product_id = $1 AND warehouse_id = $2`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, storageErr("get stock", err)
	}
	return &s, nil
}

// Increment suma delta en una sola sentencia. ON CONFLICT DO UPDATE toma el lock de fila,
// así dos reingresos concurrentes del mismo producto no pierden unidades aunque la fila no exista.
func (r *StockRepo) Increment(ctx context.Context, productID, warehouseID string, delta decimal.Decimal) (*entity.Stock, error) {
	query := `
		INSERT INTO stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING product_id, warehouse_id, quantity, updated_at`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID, warehouseID, delta).Scan(
		&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, storageErr("increment stock", err)
	}
	return &s, nil
}
