package rma

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
	"github.com/jhoicas/rma-api/internal/domain/rma"
)

// Prefijos por defecto de los códigos de referencia.
const (
	DefaultReferencePrefix = "RMA"
	DefaultVendorPrefix    = "VENDOR"
)

// vendorReturnReason motivo fijo de las RMA de proveedor.
const vendorReturnReason = "defective"

// Config parámetros estáticos del flujo (desde pkg/config).
type Config struct {
	ReferencePrefix      string
	VendorPrefix         string
	MaxReferenceAttempts int
}

// WorkflowUseCase orquesta la máquina de estados de las devoluciones.
// Toda operación que muta estado corre en una sola transacción con la fila de la solicitud
// bloqueada (SELECT FOR UPDATE); la notificación se dispara después del Commit.
type WorkflowUseCase struct {
	txRunner   TxRunner
	rmaRepo    repository.RMARepository
	vendorRepo repository.VendorRepository
	settings   repository.SettingsRepository
	restocker  *Restocker
	notifier   Notifier
	refGen     *rma.ReferenceGenerator
	cfg        Config
	log        zerolog.Logger
	now        func() time.Time
	metrics    Recorder
}

// NewWorkflowUseCase construye el caso de uso. notifier puede ser nil (sin notificaciones).
func NewWorkflowUseCase(
	txRunner TxRunner,
	rmaRepo repository.RMARepository,
	vendorRepo repository.VendorRepository,
	settings repository.SettingsRepository,
	restocker *Restocker,
	notifier Notifier,
	log zerolog.Logger,
	cfg Config,
) *WorkflowUseCase {
	if cfg.ReferencePrefix == "" {
		cfg.ReferencePrefix = DefaultReferencePrefix
	}
	if cfg.VendorPrefix == "" {
		cfg.VendorPrefix = DefaultVendorPrefix
	}
	return &WorkflowUseCase{
		txRunner:   txRunner,
		rmaRepo:    rmaRepo,
		vendorRepo: vendorRepo,
		settings:   settings,
		restocker:  restocker,
		notifier:   notifier,
		refGen:     rma.NewReferenceGenerator(cfg.MaxReferenceAttempts),
		cfg:        cfg,
		log:        log,
		now:        time.Now,
		metrics:    nopRecorder{},
	}
}

// WithClock reemplaza el reloj del flujo y del generador de referencias (tests).
func (uc *WorkflowUseCase) WithClock(now func() time.Time) *WorkflowUseCase {
	uc.now = now
	uc.refGen.WithClock(now)
	return uc
}

// WithRandom reemplaza la fuente aleatoria del generador de referencias (tests).
func (uc *WorkflowUseCase) WithRandom(randN func(n int) int) *WorkflowUseCase {
	uc.refGen.WithRandom(randN)
	return uc
}

// WithMetrics asigna el Recorder de métricas.
func (uc *WorkflowUseCase) WithMetrics(rec Recorder) *WorkflowUseCase {
	if rec != nil {
		uc.metrics = rec
	}
	return uc
}

// CreateItemInput línea a devolver.
type CreateItemInput struct {
	SourceLineItemID string
	ProductID        string
	VariantID        string
	Quantity         int
	UnitPrice        decimal.Decimal
}

// CreateInput datos de una nueva solicitud de devolución de cliente.
type CreateInput struct {
	CustomerID               string
	OriginatingTransactionID string
	Reason                   string
	RequestedResolution      entity.Resolution // vacío = REFUND
	RequiresInspection       bool
	CustomerNotes            string
	PurchasedAt              *time.Time // opcional; habilita la validación de ventana de devolución
	Items                    []CreateItemInput
	Actor                    string
}

// RMADetail solicitud con sus ítems e historial.
type RMADetail struct {
	Request *entity.RMARequest
	Items   []*entity.RMAItem
	History []*entity.StatusHistoryEntry
}

// txRepos repositorios atados a la transacción en curso.
type txRepos struct {
	rma   repository.RMARepository
	stock repository.StockRepository
	mov   repository.InventoryMovementRepository
}

func (uc *WorkflowUseCase) runTx(ctx context.Context, fn func(tx txRepos) error) error {
	return uc.txRunner.RunRMA(ctx, func(
		rmaRepo repository.RMARepository,
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		return fn(txRepos{rma: rmaRepo, stock: stockRepo, mov: movRepo})
	})
}

// Create valida, calcula cargo/reembolso, genera la referencia y persiste solicitud, ítems e
// historial inicial en una transacción. Devuelve el ID de la nueva solicitud.
func (uc *WorkflowUseCase) Create(ctx context.Context, in CreateInput) (string, error) {
	if err := validateCreate(&in); err != nil {
		return "", err
	}

	policy, err := LoadPolicy(ctx, uc.settings)
	if err != nil {
		return "", err
	}
	now := uc.now()
	if policy.ReturnWindowDays > 0 && in.PurchasedAt != nil {
		deadline := in.PurchasedAt.AddDate(0, 0, policy.ReturnWindowDays)
		if now.After(deadline) {
			return "", fmt.Errorf("%w: fuera de la ventana de devolución de %d días", domain.ErrInvalidInput, policy.ReturnWindowDays)
		}
	}

	total := decimal.Zero
	for _, it := range in.Items {
		total = total.Add(lineTotal(it.Quantity, it.UnitPrice))
	}
	fee, refund := rma.CalculateRestockingFee(total, in.Reason, policy.RestockingFeePercent)

	req := &entity.RMARequest{
		ID:                       uuid.New().String(),
		CustomerID:               in.CustomerID,
		OriginatingTransactionID: in.OriginatingTransactionID,
		Kind:                     entity.RMAKindCustomerReturn,
		Status:                   entity.RMAStatusPending,
		Reason:                   strings.TrimSpace(in.Reason),
		RequestedResolution:      in.RequestedResolution,
		TotalAmount:              total,
		RefundAmount:             refund,
		RestockingFee:            fee,
		RequiresInspection:       in.RequiresInspection,
		CustomerNotes:            in.CustomerNotes,
		RequestedAt:              now,
		UpdatedAt:                now,
	}
	items := make([]*entity.RMAItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, &entity.RMAItem{
			ID:               uuid.New().String(),
			RMARequestID:     req.ID,
			SourceLineItemID: it.SourceLineItemID,
			ProductID:        it.ProductID,
			VariantID:        it.VariantID,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			TotalPrice:       lineTotal(it.Quantity, it.UnitPrice),
			CreatedAt:        now,
		})
	}

	err = uc.runInsertTx(ctx, func(tx txRepos) error {
		return uc.insertRequest(ctx, tx, req, items, uc.cfg.ReferencePrefix, in.Actor, "")
	})
	if err != nil {
		return "", err
	}

	uc.afterTransition(ctx, req, "", in.Actor, EventCreated)
	return req.ID, nil
}

// runInsertTx repite la tx completa cuando el INSERT choca con una referencia tomada por otra
// transacción concurrente entre el chequeo y la inserción. Comparte el presupuesto del generador.
func (uc *WorkflowUseCase) runInsertTx(ctx context.Context, fn func(tx txRepos) error) error {
	for attempt := 0; attempt < uc.refGen.MaxAttempts(); attempt++ {
		err := uc.runTx(ctx, fn)
		if !errors.Is(err, domain.ErrDuplicateReference) {
			return err
		}
		uc.log.Debug().Err(err).Int("attempt", attempt+1).Msg("rma: referencia en conflicto, se regenera")
	}
	return fmt.Errorf("%w: colisiones al insertar tras %d intentos", domain.ErrGenerationExhausted, uc.refGen.MaxAttempts())
}

// insertRequest genera la referencia con el repo de la tx y persiste solicitud, ítems e historial (nil → PENDING).
func (uc *WorkflowUseCase) insertRequest(ctx context.Context, tx txRepos, req *entity.RMARequest, items []*entity.RMAItem, prefix, actor, notes string) error {
	code, err := uc.refGen.Generate(ctx, tx.rma, prefix)
	if err != nil {
		return err
	}
	req.ReferenceCode = code
	if err := tx.rma.Create(ctx, req); err != nil {
		return err
	}
	for _, item := range items {
		if err := tx.rma.CreateItem(ctx, item); err != nil {
			return err
		}
	}
	return tx.rma.AppendHistory(ctx, &entity.StatusHistoryEntry{
		ID:           uuid.New().String(),
		RMARequestID: req.ID,
		NewStatus:    entity.RMAStatusPending,
		ChangedBy:    actor,
		Notes:        notes,
		ChangedAt:    req.RequestedAt,
	})
}

func validateCreate(in *CreateInput) error {
	if strings.TrimSpace(in.CustomerID) == "" {
		return fmt.Errorf("%w: customer_id es obligatorio", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return fmt.Errorf("%w: reason es obligatorio", domain.ErrInvalidInput)
	}
	if in.RequestedResolution == "" {
		in.RequestedResolution = entity.ResolutionRefund
	}
	if !in.RequestedResolution.Valid() {
		return fmt.Errorf("%w: resolución %q desconocida", domain.ErrInvalidInput, in.RequestedResolution)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: se requiere al menos un ítem", domain.ErrInvalidInput)
	}
	in.Items = append([]CreateItemInput(nil), in.Items...)
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: ítem %d sin product_id", domain.ErrInvalidInput, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: ítem %d con cantidad no positiva", domain.ErrInvalidInput, i)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: ítem %d con precio negativo", domain.ErrInvalidInput, i)
		}
		// el precio se fija a centavos una sola vez; totales y línea salen de este valor
		in.Items[i].UnitPrice = it.UnitPrice.Round(2)
	}
	return nil
}

// lineTotal espera unitPrice ya redondeado a centavos, así el producto es exacto.
func lineTotal(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// transition bloquea la solicitud, verifica el paso from → to, aplica mutate y guarda
// solicitud + historial. Si algo falla la tx se revierte completa y el estado no cambia.
func (uc *WorkflowUseCase) transition(
	ctx context.Context,
	id string,
	to entity.RMAStatus,
	actor string,
	notes func(req *entity.RMARequest) string,
	mutate func(tx txRepos, req *entity.RMARequest, now time.Time) error,
) (*entity.RMARequest, entity.RMAStatus, error) {
	var (
		updated *entity.RMARequest
		from    entity.RMAStatus
	)
	err := uc.runTx(ctx, func(tx txRepos) error {
		req, err := tx.rma.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: rma %s", domain.ErrNotFound, id)
		}
		from = req.Status
		if !from.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
		}

		now := uc.now()
		if mutate != nil {
			if err := mutate(tx, req, now); err != nil {
				return err
			}
		}
		req.Status = to
		req.UpdatedAt = now
		if err := tx.rma.Update(ctx, req); err != nil {
			return err
		}

		var note string
		if notes != nil {
			note = notes(req)
		}
		if err := tx.rma.AppendHistory(ctx, &entity.StatusHistoryEntry{
			ID:           uuid.New().String(),
			RMARequestID: req.ID,
			OldStatus:    from,
			NewStatus:    to,
			ChangedBy:    actor,
			Notes:        note,
			ChangedAt:    now,
		}); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return updated, from, nil
}

// Approve PENDING → APPROVED.
func (uc *WorkflowUseCase) Approve(ctx context.Context, id, approverID string) error {
	req, from, err := uc.transition(ctx, id, entity.RMAStatusApproved, approverID, nil,
		func(_ txRepos, req *entity.RMARequest, now time.Time) error {
			req.ApprovedAt = &now
			req.ApprovedBy = approverID
			return nil
		})
	if err != nil {
		return err
	}
	uc.afterTransition(ctx, req, from, approverID, EventApproved)
	return nil
}

// Reject PENDING → REJECTED (terminal). El motivo queda en internalNotes.
func (uc *WorkflowUseCase) Reject(ctx context.Context, id, reason, rejectorID string) error {
	reason = strings.TrimSpace(reason)
	req, from, err := uc.transition(ctx, id, entity.RMAStatusRejected, rejectorID,
		func(*entity.RMARequest) string { return reason },
		func(_ txRepos, req *entity.RMARequest, _ time.Time) error {
			req.InternalNotes = reason
			return nil
		})
	if err != nil {
		return err
	}
	uc.afterTransition(ctx, req, from, rejectorID, EventRejected)
	return nil
}

// Receive APPROVED → RECEIVED. Cada ítem listado recibe su condición y la disposición resuelta;
// los ítems omitidos quedan en PENDING_DECISION sin condición.
func (uc *WorkflowUseCase) Receive(ctx context.Context, id string, conditions map[string]entity.ItemCondition, inspectionNotes, actor string) error {
	for itemID, cond := range conditions {
		if !cond.Valid() {
			return fmt.Errorf("%w: condición %q del ítem %s", domain.ErrInvalidInput, cond, itemID)
		}
	}

	req, from, err := uc.transition(ctx, id, entity.RMAStatusReceived, actor,
		func(*entity.RMARequest) string { return inspectionNotes },
		func(tx txRepos, req *entity.RMARequest, now time.Time) error {
			items, err := tx.rma.ListItems(ctx, req.ID)
			if err != nil {
				return err
			}
			byID := make(map[string]*entity.RMAItem, len(items))
			for _, item := range items {
				byID[item.ID] = item
			}
			for itemID := range conditions {
				if _, ok := byID[itemID]; !ok {
					return fmt.Errorf("%w: ítem %s no pertenece a la rma %s", domain.ErrNotFound, itemID, req.ID)
				}
			}
			for _, item := range items {
				if cond, ok := conditions[item.ID]; ok {
					item.ConditionReceived = cond
					item.Disposition = rma.ResolveDisposition(cond)
				} else {
					item.Disposition = entity.DispositionPendingDecision
				}
				if err := tx.rma.UpdateItem(ctx, item); err != nil {
					return err
				}
			}
			req.ReceivedAt = &now
			req.InspectionNotes = inspectionNotes
			return nil
		})
	if err != nil {
		return err
	}
	uc.afterTransition(ctx, req, from, actor, "")
	return nil
}

// ProcessRefund RECEIVED → REFUNDED. refundAmount nil conserva el monto calculado; si se indica
// debe estar en [0, total] y el cargo se recalcula como total - monto. El reabastecimiento
// corre en la misma transacción que el cambio de estado.
func (uc *WorkflowUseCase) ProcessRefund(ctx context.Context, id string, refundAmount *decimal.Decimal, processorID string) error {
	if refundAmount != nil && refundAmount.IsNegative() {
		return fmt.Errorf("%w: monto de reembolso negativo", domain.ErrInvalidInput)
	}

	var units int
	req, from, err := uc.transition(ctx, id, entity.RMAStatusRefunded, processorID,
		func(req *entity.RMARequest) string {
			return "reembolso " + req.RefundAmount.StringFixed(2)
		},
		func(tx txRepos, req *entity.RMARequest, now time.Time) error {
			if refundAmount != nil {
				amount := refundAmount.Round(2)
				if amount.GreaterThan(req.TotalAmount) {
					return fmt.Errorf("%w: reembolso %s supera el total %s", domain.ErrInvalidInput,
						amount.StringFixed(2), req.TotalAmount.StringFixed(2))
				}
				req.RefundAmount = amount
				req.RestockingFee = req.TotalAmount.Sub(amount)
			}
			req.CompletedAt = &now
			req.ProcessedBy = processorID

			var err error
			units, err = uc.restocker.RestockInTx(ctx, tx.rma, tx.stock, tx.mov, req.ID, processorID, now)
			return err
		})
	if err != nil {
		return err
	}
	uc.metrics.Refunded(req.RefundAmount)
	uc.metrics.Restocked(units)
	uc.afterTransition(ctx, req, from, processorID, EventRefunded)
	return nil
}

// SetItemDisposition resuelve un ítem pendiente (PENDING_DECISION o sin disposición) de una RMA
// RECEIVED o REFUNDED. En una RMA ya reembolsada, RESTOCK reingresa el ítem en la misma tx.
func (uc *WorkflowUseCase) SetItemDisposition(ctx context.Context, rmaID, itemID string, disposition entity.Disposition, actor string) error {
	if disposition != entity.DispositionRestock && disposition != entity.DispositionVendorReturn {
		return fmt.Errorf("%w: disposición %q", domain.ErrInvalidInput, disposition)
	}

	var units int
	err := uc.runTx(ctx, func(tx txRepos) error {
		req, err := tx.rma.GetForUpdate(ctx, rmaID)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: rma %s", domain.ErrNotFound, rmaID)
		}
		if req.Status != entity.RMAStatusReceived && req.Status != entity.RMAStatusRefunded {
			return fmt.Errorf("%w: disposición no editable en estado %s", domain.ErrInvalidTransition, req.Status)
		}

		items, err := tx.rma.ListItems(ctx, rmaID)
		if err != nil {
			return err
		}
		var item *entity.RMAItem
		for _, it := range items {
			if it.ID == itemID {
				item = it
				break
			}
		}
		if item == nil {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
		}
		if item.Restocked {
			return fmt.Errorf("%w: ítem %s ya reingresado", domain.ErrInvalidTransition, itemID)
		}
		if item.Disposition != "" && item.Disposition != entity.DispositionPendingDecision {
			return fmt.Errorf("%w: ítem %s ya tiene disposición %s", domain.ErrInvalidTransition, itemID, item.Disposition)
		}

		previous := item.Disposition
		if previous == "" {
			previous = entity.DispositionPendingDecision
		}
		item.Disposition = disposition
		if err := tx.rma.UpdateItem(ctx, item); err != nil {
			return err
		}

		now := uc.now()
		if req.Status == entity.RMAStatusRefunded && disposition == entity.DispositionRestock {
			units, err = uc.restocker.RestockInTx(ctx, tx.rma, tx.stock, tx.mov, req.ID, actor, now)
			if err != nil {
				return err
			}
		}
		return tx.rma.AppendHistory(ctx, &entity.StatusHistoryEntry{
			ID:           uuid.New().String(),
			RMARequestID: req.ID,
			OldStatus:    req.Status,
			NewStatus:    req.Status,
			ChangedBy:    actor,
			Notes:        fmt.Sprintf("ítem %s: %s → %s", itemID, previous, disposition),
			ChangedAt:    now,
		})
	})
	if err != nil {
		return err
	}
	uc.metrics.Restocked(units)
	uc.log.Info().
		Str("rma_id", rmaID).
		Str("item_id", itemID).
		Str("disposition", string(disposition)).
		Str("actor", actor).
		Msg("disposición de ítem actualizada")
	return nil
}

// CreateVendorRMA deriva una RMA de proveedor copiando los ítems seleccionados de una RMA de cliente.
// Los ítems de origen no se modifican. Devuelve el ID de la nueva solicitud.
func (uc *WorkflowUseCase) CreateVendorRMA(ctx context.Context, customerRMAID, vendorID string, itemIDs []string, actor string) (string, error) {
	if strings.TrimSpace(vendorID) == "" {
		return "", fmt.Errorf("%w: vendor_id es obligatorio", domain.ErrInvalidInput)
	}
	if len(itemIDs) == 0 {
		return "", fmt.Errorf("%w: se requiere al menos un ítem", domain.ErrInvalidInput)
	}
	if uc.vendorRepo != nil {
		vendor, err := uc.vendorRepo.GetByID(ctx, vendorID)
		if err != nil {
			return "", err
		}
		if vendor == nil {
			return "", fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, vendorID)
		}
	}

	var created *entity.RMARequest
	err := uc.runInsertTx(ctx, func(tx txRepos) error {
		source, err := tx.rma.GetByID(ctx, customerRMAID)
		if err != nil {
			return err
		}
		if source == nil {
			return fmt.Errorf("%w: rma %s", domain.ErrNotFound, customerRMAID)
		}
		if source.Kind != entity.RMAKindCustomerReturn {
			return fmt.Errorf("%w: la rma %s no es de cliente", domain.ErrInvalidInput, source.ReferenceCode)
		}

		sourceItems, err := tx.rma.ListItems(ctx, source.ID)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.RMAItem, len(sourceItems))
		for _, it := range sourceItems {
			byID[it.ID] = it
		}

		now := uc.now()
		req := &entity.RMARequest{
			ID:                  uuid.New().String(),
			CustomerID:          source.CustomerID,
			VendorID:            vendorID,
			Kind:                entity.RMAKindVendorReturn,
			Status:              entity.RMAStatusPending,
			Reason:              vendorReturnReason,
			RequestedResolution: entity.ResolutionRefund,
			TotalAmount:         decimal.Zero,
			RefundAmount:        decimal.Zero,
			RestockingFee:       decimal.Zero,
			InternalNotes:       "Generada desde " + source.ReferenceCode,
			RequestedAt:         now,
			UpdatedAt:           now,
		}

		seen := make(map[string]struct{}, len(itemIDs))
		items := make([]*entity.RMAItem, 0, len(itemIDs))
		for _, itemID := range itemIDs {
			if _, dup := seen[itemID]; dup {
				continue
			}
			seen[itemID] = struct{}{}
			src, ok := byID[itemID]
			if !ok {
				return fmt.Errorf("%w: ítem %s no pertenece a la rma %s", domain.ErrNotFound, itemID, source.ID)
			}
			items = append(items, &entity.RMAItem{
				ID:               uuid.New().String(),
				RMARequestID:     req.ID,
				SourceLineItemID: src.SourceLineItemID,
				ProductID:        src.ProductID,
				VariantID:        src.VariantID,
				Quantity:         src.Quantity,
				UnitPrice:        src.UnitPrice,
				TotalPrice:       src.TotalPrice,
				CreatedAt:        now,
			})
			req.TotalAmount = req.TotalAmount.Add(src.TotalPrice)
		}
		// Sin cargo de reposición frente al proveedor: el reclamo es por el total.
		req.RefundAmount = req.TotalAmount

		if err := uc.insertRequest(ctx, tx, req, items, uc.cfg.VendorPrefix, actor, req.InternalNotes); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return "", err
	}

	uc.afterTransition(ctx, created, "", actor, EventVendorRMACreated)
	return created.ID, nil
}

// Get devuelve la solicitud con ítems e historial.
func (uc *WorkflowUseCase) Get(ctx context.Context, id string) (*RMADetail, error) {
	req, err := uc.rmaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: rma %s", domain.ErrNotFound, id)
	}
	items, err := uc.rmaRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := uc.rmaRepo.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RMADetail{Request: req, Items: items, History: history}, nil
}

// List devuelve una página de solicitudes y el total que cumple el filtro.
func (uc *WorkflowUseCase) List(ctx context.Context, filter repository.RMAFilter) ([]*entity.RMARequest, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Kind != "" && filter.Kind != entity.RMAKindCustomerReturn && filter.Kind != entity.RMAKindVendorReturn {
		return nil, 0, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, filter.Kind)
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.rmaRepo.List(ctx, filter)
}

// afterTransition registra log y métrica y dispara la notificación. Se llama solo tras el Commit.
func (uc *WorkflowUseCase) afterTransition(ctx context.Context, req *entity.RMARequest, from entity.RMAStatus, actor string, event Event) {
	uc.metrics.Transition(from, req.Status)
	uc.log.Info().
		Str("rma_id", req.ID).
		Str("reference", req.ReferenceCode).
		Str("from", string(from)).
		Str("to", string(req.Status)).
		Str("actor", actor).
		Msg("rma: transición aplicada")

	if event == "" || uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, req.ID, event); err != nil {
		uc.metrics.NotificationFailed(string(event))
		uc.log.Warn().Err(err).
			Str("rma_id", req.ID).
			Str("event", string(event)).
			Msg("rma: notificación fallida")
	}
}
