package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ repository.RMARepository = (*RMARepo)(nil)

// RMARepo implementación de RMARepository sobre PostgreSQL (usable con pool o tx).
type RMARepo struct {
	q Querier
}

// NewRMARepository construye el adaptador. Pasar pool o tx (Querier).
func NewRMARepository(q Querier) *RMARepo {
	return &RMARepo{q: q}
}

const rmaColumns = `id, reference_code, customer_id, originating_transaction_id, vendor_id, kind, status,
	reason, requested_resolution, total_amount, refund_amount, restocking_fee, requires_inspection,
	customer_notes, internal_notes, inspection_notes, approved_by, processed_by,
	requested_at, approved_at, received_at, completed_at, updated_at`

const itemColumns = `id, rma_request_id, source_line_item_id, product_id, variant_id, quantity,
	unit_price, total_price, condition_received, disposition, restocked, restocked_at, created_at`

// Create inserta la solicitud. Una referencia ya usada (carrera entre el chequeo y el INSERT)
// se reporta como ErrDuplicateReference para que el flujo reintente con otro código.
func (r *RMARepo) Create(ctx context.Context, req *entity.RMARequest) error {
	query := `INSERT INTO rma_requests (` + rmaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.ReferenceCode, req.CustomerID, nullable(req.OriginatingTransactionID), nullable(req.VendorID),
		string(req.Kind), string(req.Status), req.Reason, string(req.RequestedResolution),
		req.TotalAmount, req.RefundAmount, req.RestockingFee, req.RequiresInspection,
		nullable(req.CustomerNotes), nullable(req.InternalNotes), nullable(req.InspectionNotes),
		nullable(req.ApprovedBy), nullable(req.ProcessedBy),
		req.RequestedAt, req.ApprovedAt, req.ReceivedAt, req.CompletedAt, req.UpdatedAt,
	)
	if err != nil {
		if isReferenceConflict(err) {
			return fmt.Errorf("%w: %s: %w", domain.ErrDuplicateReference, req.ReferenceCode, err)
		}
		return storageErr("create rma", err)
	}
	return nil
}

// Update guarda estado, montos, notas, actores y timestamps. reference_code e id no cambian.
func (r *RMARepo) Update(ctx context.Context, req *entity.RMARequest) error {
	query := `
		UPDATE rma_requests SET
			status = $2, refund_amount = $3, restocking_fee = $4,
			customer_notes = $5, internal_notes = $6, inspection_notes = $7,
			approved_by = $8, processed_by = $9,
			approved_at = $10, received_at = $11, completed_at = $12, updated_at = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		req.ID, string(req.Status), req.RefundAmount, req.RestockingFee,
		nullable(req.CustomerNotes), nullable(req.InternalNotes), nullable(req.InspectionNotes),
		nullable(req.ApprovedBy), nullable(req.ProcessedBy),
		req.ApprovedAt, req.ReceivedAt, req.CompletedAt, req.UpdatedAt,
	)
	if err != nil {
		return storageErr("update rma", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rma %s", domain.ErrNotFound, req.ID)
	}
	return nil
}

// GetByID obtiene una solicitud. (nil, nil) si no existe o el id no es un UUID.
func (r *RMARepo) GetByID(ctx context.Context, id string) (*entity.RMARequest, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate obtiene la solicitud y bloquea la fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *RMARepo) GetForUpdate(ctx context.Context, id string) (*entity.RMARequest, error) {
	return r.getOne(ctx, id, " FOR UPDATE")
}

func (r *RMARepo) getOne(ctx context.Context, id, suffix string) (*entity.RMARequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + rmaColumns + ` FROM rma_requests WHERE id = $1` + suffix
	req, err := scanRMA(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get rma", err)
	}
	return req, nil
}

// ExistsByReference consulta si el código ya está asignado.
func (r *RMARepo) ExistsByReference(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rma_requests WHERE reference_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, storageErr("exists by reference", err)
	}
	return exists, nil
}

// List filtra por estado, tipo y cliente; ordena por fecha de solicitud descendente.
func (r *RMARepo) List(ctx context.Context, filter repository.RMAFilter) ([]*entity.RMARequest, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM rma_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, storageErr("count rmas", err)
	}

	query := `SELECT ` + rmaColumns + ` FROM rma_requests` + where +
		fmt.Sprintf(" ORDER BY requested_at DESC, reference_code LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr("list rmas", err)
	}
	defer rows.Close()

	var list []*entity.RMARequest
	for rows.Next() {
		req, err := scanRMA(rows)
		if err != nil {
			return nil, 0, storageErr("scan rma", err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("list rmas", err)
	}
	return list, total, nil
}

// CreateItem inserta una línea de la solicitud.
func (r *RMARepo) CreateItem(ctx context.Context, item *entity.RMAItem) error {
	query := `INSERT INTO rma_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.RMARequestID, nullable(item.SourceLineItemID), item.ProductID, nullable(item.VariantID),
		item.Quantity, item.UnitPrice, item.TotalPrice,
		nullable(string(item.ConditionReceived)), nullable(string(item.Disposition)),
		item.Restocked, item.RestockedAt, item.CreatedAt,
	)
	if err != nil {
		return storageErr("create rma item", err)
	}
	return nil
}

// UpdateItem guarda condición, disposición y marca de reingreso. Cantidad y precios son inmutables.
func (r *RMARepo) UpdateItem(ctx context.Context, item *entity.RMAItem) error {
	query := `
		UPDATE rma_items SET condition_received = $2, disposition = $3, restocked = $4, restocked_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, nullable(string(item.ConditionReceived)), nullable(string(item.Disposition)),
		item.Restocked, item.RestockedAt,
	)
	if err != nil {
		return storageErr("update rma item", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
	}
	return nil
}

// ListItems lista las líneas en orden de creación.
func (r *RMARepo) ListItems(ctx context.Context, rmaID string) ([]*entity.RMAItem, error) {
	if _, err := uuid.Parse(rmaID); err != nil {
		return nil, nil
	}
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM rma_items
		WHERE rma_request_id = $1 ORDER BY created_at, id`, rmaID)
}

// ListRestockableForUpdate bloquea los ítems RESTOCK aún no reingresados.
func (r *RMARepo) ListRestockableForUpdate(ctx context.Context, rmaID string) ([]*entity.RMAItem, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM rma_items
		WHERE rma_request_id = $1 AND disposition = 'RESTOCK' AND restocked = false
		ORDER BY created_at, id
		FOR UPDATE`, rmaID)
}

func (r *RMARepo) queryItems(ctx context.Context, query string, args ...any) ([]*entity.RMAItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list rma items", err)
	}
	defer rows.Close()
	var list []*entity.RMAItem
	for rows.Next() {
		var (
			it                                      entity.RMAItem
			sourceLine, variant, condition, dispose *string
		)
		if err := rows.Scan(&it.ID, &it.RMARequestID, &sourceLine, &it.ProductID, &variant, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &condition, &dispose, &it.Restocked, &it.RestockedAt, &it.CreatedAt); err != nil {
			return nil, storageErr("scan rma item", err)
		}
		it.SourceLineItemID = deref(sourceLine)
		it.VariantID = deref(variant)
		it.ConditionReceived = entity.ItemCondition(deref(condition))
		it.Disposition = entity.Disposition(deref(dispose))
		list = append(list, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list rma items", err)
	}
	return list, nil
}

// AppendHistory inserta una entrada de auditoría.
func (r *RMARepo) AppendHistory(ctx context.Context, entry *entity.StatusHistoryEntry) error {
	query := `
		INSERT INTO rma_status_history (id, rma_request_id, old_status, new_status, changed_by, notes, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.RMARequestID, nullable(string(entry.OldStatus)), string(entry.NewStatus),
		nullable(entry.ChangedBy), nullable(entry.Notes), entry.ChangedAt,
	)
	if err != nil {
		return storageErr("append rma history", err)
	}
	return nil
}

// ListHistory lista el historial en orden cronológico.
func (r *RMARepo) ListHistory(ctx context.Context, rmaID string) ([]*entity.StatusHistoryEntry, error) {
	if _, err := uuid.Parse(rmaID); err != nil {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, rma_request_id, old_status, new_status, changed_by, notes, changed_at
		FROM rma_status_history WHERE rma_request_id = $1 ORDER BY changed_at, id`, rmaID)
	if err != nil {
		return nil, storageErr("list rma history", err)
	}
	defer rows.Close()
	var list []*entity.StatusHistoryEntry
	for rows.Next() {
		var (
			e                           entity.StatusHistoryEntry
			oldStatus, changedBy, notes *string
			newStatus                   string
		)
		if err := rows.Scan(&e.ID, &e.RMARequestID, &oldStatus, &newStatus, &changedBy, &notes, &e.ChangedAt); err != nil {
			return nil, storageErr("scan rma history", err)
		}
		e.OldStatus = entity.RMAStatus(deref(oldStatus))
		e.NewStatus = entity.RMAStatus(newStatus)
		e.ChangedBy = deref(changedBy)
		e.Notes = deref(notes)
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list rma history", err)
	}
	return list, nil
}

func scanRMA(row pgx.Row) (*entity.RMARequest, error) {
	var (
		req                                            entity.RMARequest
		kind, status, resolution                       string
		origin, vendor, custNotes, intNotes, inspNotes *string
		approvedBy, processedBy                        *string
		approvedAt, receivedAt, completedAt            *time.Time
	)
	err := row.Scan(
		&req.ID, &req.ReferenceCode, &req.CustomerID, &origin, &vendor, &kind, &status,
		&req.Reason, &resolution, &req.TotalAmount, &req.RefundAmount, &req.RestockingFee, &req.RequiresInspection,
		&custNotes, &intNotes, &inspNotes, &approvedBy, &processedBy,
		&req.RequestedAt, &approvedAt, &receivedAt, &completedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Kind = entity.RMAKind(kind)
	req.Status = entity.RMAStatus(status)
	req.RequestedResolution = entity.Resolution(resolution)
	req.OriginatingTransactionID = deref(origin)
	req.VendorID = deref(vendor)
	req.CustomerNotes = deref(custNotes)
	req.InternalNotes = deref(intNotes)
	req.InspectionNotes = deref(inspNotes)
	req.ApprovedBy = deref(approvedBy)
	req.ProcessedBy = deref(processedBy)
	req.ApprovedAt = approvedAt
	req.ReceivedAt = receivedAt
	req.CompletedAt = completedAt
	return &req, nil
}
