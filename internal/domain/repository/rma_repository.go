package repository

import (
	"context"

	"github.com/jhoicas/rma-api/internal/domain/entity"
)

// RMAFilter filtros para listar solicitudes. Campos vacíos no filtran.
type RMAFilter struct {
	Status     entity.RMAStatus
	Kind       entity.RMAKind
	CustomerID string
	Limit      int
	Offset     int
}

// RMARepository define el puerto de persistencia para RMARequest, sus ítems y su historial.
// Las implementaciones devuelven (nil, nil) cuando el registro no existe.
type RMARepository interface {
	Create(ctx context.Context, req *entity.RMARequest) error
	Update(ctx context.Context, req *entity.RMARequest) error
	GetByID(ctx context.Context, id string) (*entity.RMARequest, error)
	// GetForUpdate bloquea la fila de la solicitud (SELECT FOR UPDATE) hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.RMARequest, error)
	ExistsByReference(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter RMAFilter) ([]*entity.RMARequest, int, error)

	CreateItem(ctx context.Context, item *entity.RMAItem) error
	UpdateItem(ctx context.Context, item *entity.RMAItem) error
	ListItems(ctx context.Context, rmaID string) ([]*entity.RMAItem, error)
	// ListRestockableForUpdate devuelve y bloquea los ítems con disposición RESTOCK aún no reingresados.
	ListRestockableForUpdate(ctx context.Context, rmaID string) ([]*entity.RMAItem, error)

	AppendHistory(ctx context.Context, entry *entity.StatusHistoryEntry) error
	ListHistory(ctx context.Context, rmaID string) ([]*entity.StatusHistoryEntry, error)
}
