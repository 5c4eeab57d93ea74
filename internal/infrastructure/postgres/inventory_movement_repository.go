package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, transaction_id, source_type, product_id, warehouse_id, type, quantity, date, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.TransactionID, movement.SourceType, movement.ProductID, movement.WarehouseID,
		movement.Type, movement.Quantity, movement.Date, movement.CreatedAt, nullable(movement.CreatedBy),
	)
	if err != nil {
		return storageErr("create inventory movement", err)
	}
	return nil
}

// ListBySource lista los movimientos generados por un documento (p.ej. source_type "rma" + id de la RMA).
func (r *InventoryMovementRepo) ListBySource(ctx context.Context, sourceType, sourceID string) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, transaction_id, source_type, product_id, warehouse_id, type, quantity, date, created_at, created_by
		FROM inventory_movements WHERE source_type = $1 AND transaction_id = $2
		ORDER BY date, id`
	rows, err := r.q.Query(ctx, query, sourceType, sourceID)
	if err != nil {
		return nil, storageErr("list movements by source", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.SourceType, &m.ProductID, &m.WarehouseID, &m.Type,
			&m.Quantity, &m.Date, &m.CreatedAt, &createdBy); err != nil {
			return nil, storageErr("scan movement", err)
		}
		m.CreatedBy = deref(createdBy)
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list movements by source", err)
	}
	return list, nil
}
