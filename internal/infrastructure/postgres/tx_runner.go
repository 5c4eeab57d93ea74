package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/rma-api/internal/application/rma"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ rma.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunRMA inicia una transacción, ejecuta fn con los repos de RMA, stock y movimientos atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) RunRMA(ctx context.Context, fn func(
	rmaRepo repository.RMARepository,
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRMARepository(tx), NewStockRepository(tx), NewInventoryMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}
