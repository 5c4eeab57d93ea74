package rma

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

// Catalog operaciones del catálogo externo que usa el reabastecimiento.
type Catalog interface {
	IncreaseStock(ctx context.Context, productID string, quantity int) error
	AppendInventoryTransaction(ctx context.Context, productID string, quantity int, sourceType, sourceID string) error
}

// stockCatalog implementa Catalog sobre los repos de stock y movimientos de la tx en curso.
type stockCatalog struct {
	stockRepo   repository.StockRepository
	movRepo     repository.InventoryMovementRepository
	warehouseID string
	actor       string
	now         time.Time
}

// IncreaseStock suma la cantidad en la bodega de reingreso (incremento atómico con lock de fila).
func (c *stockCatalog) IncreaseStock(ctx context.Context, productID string, quantity int) error {
	_, err := c.stockRepo.Increment(ctx, productID, c.warehouseID, decimal.NewFromInt(int64(quantity)))
	return err
}

// AppendInventoryTransaction guarda el movimiento RETURN referenciando el documento origen.
func (c *stockCatalog) AppendInventoryTransaction(ctx context.Context, productID string, quantity int, sourceType, sourceID string) error {
	return c.movRepo.Create(ctx, &entity.InventoryMovement{
		ID:            uuid.New().String(),
		TransactionID: sourceID,
		SourceType:    sourceType,
		ProductID:     productID,
		WarehouseID:   c.warehouseID,
		Type:          entity.MovementTypeRETURN,
		Quantity:      decimal.NewFromInt(int64(quantity)),
		Date:          c.now,
		CreatedAt:     c.now,
		CreatedBy:     c.actor,
	})
}

// Restocker reingresa al catálogo los ítems con disposición RESTOCK, una sola vez por ítem.
// La marca restocked se lee y escribe con las filas bloqueadas en la misma transacción,
// así una llamada concurrente o reintentada no vuelve a sumar stock.
type Restocker struct {
	txRunner    TxRunner
	warehouseID string
	now         func() time.Time
	metrics     Recorder
}

// NewRestocker construye el servicio. warehouseID es la bodega donde reingresa la mercancía.
func NewRestocker(txRunner TxRunner, warehouseID string) *Restocker {
	return &Restocker{
		txRunner:    txRunner,
		warehouseID: warehouseID,
		now:         time.Now,
		metrics:     nopRecorder{},
	}
}

// WithClock reemplaza el reloj (tests).
func (r *Restocker) WithClock(now func() time.Time) *Restocker {
	r.now = now
	return r
}

// WithMetrics asigna el Recorder.
func (r *Restocker) WithMetrics(rec Recorder) *Restocker {
	if rec != nil {
		r.metrics = rec
	}
	return r
}

// Restock ejecuta el reabastecimiento de la RMA en su propia transacción.
// Devuelve las unidades reingresadas en esta llamada (0 si ya estaba todo aplicado).
func (r *Restocker) Restock(ctx context.Context, rmaID, actor string) (int, error) {
	var units int
	err := r.txRunner.RunRMA(ctx, func(
		rmaRepo repository.RMARepository,
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		var err error
		units, err = r.RestockInTx(ctx, rmaRepo, stockRepo, movRepo, rmaID, actor, r.now())
		return err
	})
	if err != nil {
		return 0, err
	}
	r.metrics.Restocked(units)
	return units, nil
}

// RestockInTx aplica el reabastecimiento usando los repos del caller (misma transacción).
// Si retorna error, el caller debe hacer rollback. No registra métricas: lo hace quien confirma la tx.
func (r *Restocker) RestockInTx(
	ctx context.Context,
	rmaRepo repository.RMARepository,
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	rmaID, actor string,
	now time.Time,
) (int, error) {
	req, err := rmaRepo.GetForUpdate(ctx, rmaID)
	if err != nil {
		return 0, err
	}
	if req == nil {
		return 0, fmt.Errorf("%w: rma %s", domain.ErrNotFound, rmaID)
	}

	items, err := rmaRepo.ListRestockableForUpdate(ctx, rmaID)
	if err != nil {
		return 0, err
	}

	catalog := &stockCatalog{
		stockRepo:   stockRepo,
		movRepo:     movRepo,
		warehouseID: r.warehouseID,
		actor:       actor,
		now:         now,
	}
	units := 0
	for _, item := range items {
		if item.Restocked || item.Disposition != entity.DispositionRestock {
			continue
		}
		if err := catalog.IncreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			return 0, err
		}
		if err := catalog.AppendInventoryTransaction(ctx, item.ProductID, item.Quantity, entity.MovementSourceRMA, rmaID); err != nil {
			return 0, err
		}
		restockedAt := now
		item.Restocked = true
		item.RestockedAt = &restockedAt
		if err := rmaRepo.UpdateItem(ctx, item); err != nil {
			return 0, err
		}
		units += item.Quantity
	}
	return units, nil
}
