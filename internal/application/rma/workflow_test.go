package rma_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rma-api/internal/application/rma"
	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
	"github.com/jhoicas/rma-api/internal/infrastructure/memory"
)

const restockWarehouse = "WH-RMA"

var fixedNow = time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type notification struct {
	rmaID string
	event rma.Event
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []notification
	failOn rma.Event
}

func (n *recordingNotifier) Notify(_ context.Context, rmaID string, event rma.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{rmaID, event})
	if event == n.failOn {
		return errors.New("smtp no disponible")
	}
	return nil
}

func (n *recordingNotifier) events() []rma.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]rma.Event, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.event)
	}
	return out
}

type countingRecorder struct {
	mu                  sync.Mutex
	transitions         []string
	refunded            decimal.Decimal
	restocked           int
	notificationFailure map[string]int
}

func (r *countingRecorder) Transition(from, to entity.RMAStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, string(from)+">"+string(to))
}

func (r *countingRecorder) Refunded(amount decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunded = r.refunded.Add(amount)
}

func (r *countingRecorder) Restocked(units int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restocked += units
}

func (r *countingRecorder) NotificationFailed(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.notificationFailure == nil {
		r.notificationFailure = map[string]int{}
	}
	r.notificationFailure[event]++
}

type fixture struct {
	store     *memory.Store
	uc        *rma.WorkflowUseCase
	restocker *rma.Restocker
	notifier  *recordingNotifier
	metrics   *countingRecorder
}

func newFixture(t *testing.T, feePercent string) *fixture {
	t.Helper()
	store := memory.New()
	store.PutVendor(entity.Vendor{ID: "vendor-1", Name: "Proveedor Uno", ContactEmail: "rma@proveedor.test"})
	if feePercent != "" {
		store.PutSetting(rma.SettingsCategory, rma.SettingRestockingFeePercentage, feePercent)
	}

	clock := func() time.Time { return fixedNow }
	seq := 0
	metrics := &countingRecorder{}
	notifier := &recordingNotifier{}
	restocker := rma.NewRestocker(store, restockWarehouse).WithClock(clock).WithMetrics(metrics)
	uc := rma.NewWorkflowUseCase(
		store,
		store.RMARepository(),
		store.VendorRepository(),
		store.SettingsRepository(),
		restocker,
		notifier,
		zerolog.Nop(),
		rma.Config{},
	).WithClock(clock).WithRandom(func(n int) int {
		seq++
		return seq % n
	}).WithMetrics(metrics)

	return &fixture{store: store, uc: uc, restocker: restocker, notifier: notifier, metrics: metrics}
}

func (f *fixture) create(t *testing.T, reason string, items ...rma.CreateItemInput) string {
	t.Helper()
	id, err := f.uc.Create(context.Background(), rma.CreateInput{
		CustomerID: "cust-1",
		Reason:     reason,
		Items:      items,
		Actor:      "user-1",
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) detail(t *testing.T, id string) *rma.RMADetail {
	t.Helper()
	d, err := f.uc.Get(context.Background(), id)
	require.NoError(t, err)
	return d
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	s, err := f.store.StockRepository().Get(context.Background(), productID, restockWarehouse)
	require.NoError(t, err)
	if s == nil {
		return decimal.Zero
	}
	return s.Quantity
}

func item(productID string, qty int, price string) rma.CreateItemInput {
	return rma.CreateItemInput{ProductID: productID, Quantity: qty, UnitPrice: dec(price)}
}

func TestCreate_CambioDeOpinionAplicaCargo(t *testing.T) {
	f := newFixture(t, "10")

	id := f.create(t, "changed_mind", item("prod-a", 2, "50.00"))

	d := f.detail(t, id)
	req := d.Request
	assert.Equal(t, entity.RMAStatusPending, req.Status)
	assert.Equal(t, entity.RMAKindCustomerReturn, req.Kind)
	assert.Equal(t, entity.ResolutionRefund, req.RequestedResolution)
	assert.True(t, dec("100.00").Equal(req.TotalAmount))
	assert.True(t, dec("10.00").Equal(req.RestockingFee), "fee = %s", req.RestockingFee)
	assert.True(t, dec("90.00").Equal(req.RefundAmount), "refund = %s", req.RefundAmount)
	assert.Equal(t, "RMA-20260307-0001", req.ReferenceCode)
	assert.Equal(t, fixedNow, req.RequestedAt)

	require.Len(t, d.Items, 1)
	assert.True(t, dec("100.00").Equal(d.Items[0].TotalPrice))
	assert.Empty(t, d.Items[0].Disposition)

	require.Len(t, d.History, 1)
	assert.Empty(t, d.History[0].OldStatus)
	assert.Equal(t, entity.RMAStatusPending, d.History[0].NewStatus)
	assert.Equal(t, "user-1", d.History[0].ChangedBy)

	assert.Equal(t, []rma.Event{rma.EventCreated}, f.notifier.events())
}

func TestCreate_DefectuosoSinCargo(t *testing.T) {
	f := newFixture(t, "10")

	id := f.create(t, "defective", item("prod-a", 1, "100.00"))

	req := f.detail(t, id).Request
	assert.True(t, decimal.Zero.Equal(req.RestockingFee))
	assert.True(t, dec("100.00").Equal(req.RefundAmount))
}

func TestCreate_ConservacionDeMontos(t *testing.T) {
	f := newFixture(t, "15")

	id := f.create(t, "changed_mind", item("prod-a", 3, "11.11"), item("prod-b", 1, "0.01"))

	req := f.detail(t, id).Request
	assert.True(t, req.TotalAmount.Equal(req.RefundAmount.Add(req.RestockingFee)))
	assert.True(t, dec("33.34").Equal(req.TotalAmount))
}

func TestCreate_Validaciones(t *testing.T) {
	valid := func() rma.CreateInput {
		return rma.CreateInput{CustomerID: "cust-1", Reason: "changed_mind", Items: []rma.CreateItemInput{item("prod-a", 1, "10")}}
	}
	cases := map[string]func(in *rma.CreateInput){
		"sin cliente":         func(in *rma.CreateInput) { in.CustomerID = " " },
		"sin motivo":          func(in *rma.CreateInput) { in.Reason = "" },
		"sin ítems":           func(in *rma.CreateInput) { in.Items = nil },
		"cantidad cero":       func(in *rma.CreateInput) { in.Items[0].Quantity = 0 },
		"cantidad negativa":   func(in *rma.CreateInput) { in.Items[0].Quantity = -2 },
		"precio negativo":     func(in *rma.CreateInput) { in.Items[0].UnitPrice = dec("-1") },
		"sin producto":        func(in *rma.CreateInput) { in.Items[0].ProductID = "" },
		"resolución inválida": func(in *rma.CreateInput) { in.RequestedResolution = "CASH" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, "")
			in := valid()
			mutate(&in)

			_, err := f.uc.Create(context.Background(), in)

			require.ErrorIs(t, err, domain.ErrInvalidInput)
			list, total, err := f.uc.List(context.Background(), repository.RMAFilter{})
			require.NoError(t, err)
			assert.Empty(t, list)
			assert.Zero(t, total)
			assert.Empty(t, f.notifier.events())
		})
	}
}

func TestCreate_VentanaDeDevolucion(t *testing.T) {
	f := newFixture(t, "")
	f.store.PutSetting(rma.SettingsCategory, rma.SettingReturnWindowDays, "30")

	old := fixedNow.AddDate(0, 0, -40)
	_, err := f.uc.Create(context.Background(), rma.CreateInput{
		CustomerID: "cust-1", Reason: "changed_mind", PurchasedAt: &old,
		Items: []rma.CreateItemInput{item("prod-a", 1, "10")},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	recent := fixedNow.AddDate(0, 0, -10)
	_, err = f.uc.Create(context.Background(), rma.CreateInput{
		CustomerID: "cust-1", Reason: "changed_mind", PurchasedAt: &recent,
		Items: []rma.CreateItemInput{item("prod-a", 1, "10")},
	})
	require.NoError(t, err)
}

func TestCreate_ReferenciaAgotada(t *testing.T) {
	f := newFixture(t, "")
	f.uc.WithRandom(func(int) int { return 42 })

	f.create(t, "changed_mind", item("prod-a", 1, "10"))
	_, err := f.uc.Create(context.Background(), rma.CreateInput{
		CustomerID: "cust-1", Reason: "changed_mind", Items: []rma.CreateItemInput{item("prod-a", 1, "10")},
	})

	require.ErrorIs(t, err, domain.ErrGenerationExhausted)
	_, total, err := f.uc.List(context.Background(), repository.RMAFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestFlujoCompleto_ReingresaStockUnaSolaVez(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	id := f.create(t, "defective", item("prod-a", 3, "20.00"), item("prod-b", 1, "40.00"))
	items := f.detail(t, id).Items
	itemA, itemB := items[0].ID, items[1].ID

	require.NoError(t, f.uc.Approve(ctx, id, "manager-1"))
	require.NoError(t, f.uc.Receive(ctx, id, map[string]entity.ItemCondition{
		itemA: entity.ConditionUnopened,
		itemB: entity.ConditionUsedGood,
	}, "caja intacta", "bodega-1"))

	d := f.detail(t, id)
	assert.Equal(t, entity.DispositionRestock, d.Items[0].Disposition)
	assert.Equal(t, entity.ConditionUnopened, d.Items[0].ConditionReceived)
	assert.Equal(t, entity.DispositionPendingDecision, d.Items[1].Disposition)
	assert.Equal(t, "caja intacta", d.Request.InspectionNotes)
	require.NotNil(t, d.Request.ReceivedAt)

	require.NoError(t, f.uc.ProcessRefund(ctx, id, nil, "caja-1"))

	d = f.detail(t, id)
	assert.Equal(t, entity.RMAStatusRefunded, d.Request.Status)
	assert.Equal(t, "caja-1", d.Request.ProcessedBy)
	require.NotNil(t, d.Request.CompletedAt)
	assert.True(t, d.Items[0].Restocked)
	require.NotNil(t, d.Items[0].RestockedAt)
	assert.False(t, d.Items[1].Restocked)
	assert.True(t, dec("3").Equal(f.stock(t, "prod-a")))
	assert.True(t, decimal.Zero.Equal(f.stock(t, "prod-b")))

	movs, err := f.store.MovementRepository().ListBySource(ctx, entity.MovementSourceRMA, id)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeRETURN, movs[0].Type)
	assert.Equal(t, "prod-a", movs[0].ProductID)

	err = f.uc.ProcessRefund(ctx, id, nil, "caja-1")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	units, err := f.restocker.Restock(ctx, id, "caja-1")
	require.NoError(t, err)
	assert.Zero(t, units)
	assert.True(t, dec("3").Equal(f.stock(t, "prod-a")))

	statuses := make([]entity.RMAStatus, 0, len(d.History))
	for _, h := range d.History {
		statuses = append(statuses, h.NewStatus)
	}
	assert.Equal(t, []entity.RMAStatus{
		entity.RMAStatusPending, entity.RMAStatusApproved, entity.RMAStatusReceived, entity.RMAStatusRefunded,
	}, statuses)
	assert.Equal(t, []rma.Event{rma.EventCreated, rma.EventApproved, rma.EventRefunded}, f.notifier.events())
	assert.Equal(t, 3, f.metrics.restocked)
	assert.True(t, dec("100.00").Equal(f.metrics.refunded))
}

func TestRestock_ConcurrenteNoDuplica(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	id := f.create(t, "defective", item("prod-a", 2, "10.00"))
	itemID := f.detail(t, id).Items[0].ID
	require.NoError(t, f.uc.Approve(ctx, id, "m"))
	require.NoError(t, f.uc.Receive(ctx, id, map[string]entity.ItemCondition{itemID: entity.ConditionUnopened}, "", "b"))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.uc.ProcessRefund(ctx, id, nil, "caja"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.True(t, dec("2").Equal(f.stock(t, "prod-a")))
}

func TestTransiciones_Ilegales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")

	pending := f.create(t, "defective", item("prod-a", 1, "10"))
	assert.ErrorIs(t, f.uc.Receive(ctx, pending, nil, "", "b"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.uc.ProcessRefund(ctx, pending, nil, "c"), domain.ErrInvalidTransition)

	approved := f.create(t, "defective", item("prod-a", 1, "10"))
	require.NoError(t, f.uc.Approve(ctx, approved, "m"))
	assert.ErrorIs(t, f.uc.Approve(ctx, approved, "m"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.uc.Reject(ctx, approved, "tarde", "m"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.uc.ProcessRefund(ctx, approved, nil, "c"), domain.ErrInvalidTransition)

	rejected := f.create(t, "defective", item("prod-a", 1, "10"))
	require.NoError(t, f.uc.Reject(ctx, rejected, "sin factura", "m"))
	assert.ErrorIs(t, f.uc.Approve(ctx, rejected, "m"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.uc.Receive(ctx, rejected, nil, "", "b"), domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.uc.ProcessRefund(ctx, rejected, nil, "c"), domain.ErrInvalidTransition)

	req := f.detail(t, rejected).Request
	assert.Equal(t, entity.RMAStatusRejected, req.Status)
	assert.Equal(t, "sin factura", req.InternalNotes)

	assert.ErrorIs(t, f.uc.Approve(ctx, "no-existe", "m"), domain.ErrNotFound)
}

func TestAprobarReembolsada_NoCambiaNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	id := f.create(t, "defective", item("prod-a", 1, "10"))
	itemID := f.detail(t, id).Items[0].ID
	require.NoError(t, f.uc.Approve(ctx, id, "m"))
	require.NoError(t, f.uc.Receive(ctx, id, map[string]entity.ItemCondition{itemID: entity.ConditionDamaged}, "", "b"))
	require.NoError(t, f.uc.ProcessRefund(ctx, id, nil, "c"))
	before := f.detail(t, id)

	err := f.uc.Approve(ctx, id, "otro")

	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, before, f.detail(t, id))
}

func TestReceive_ItemsOmitidosYErrores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	id := f.create(t, "defective", item("prod-a", 1, "10"), item("prod-b", 1, "10"))
	items := f.detail(t, id).Items
	require.NoError(t, f.uc.Approve(ctx, id, "m"))

	err := f.uc.Receive(ctx, id, map[string]entity.ItemCondition{"otro-item": entity.ConditionUnopened}, "", "b")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, entity.RMAStatusApproved, f.detail(t, id).Request.Status)

	err = f.uc.Receive(ctx, id, map[string]entity.ItemCondition{items[0].ID: "BROKEN"}, "", "b")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.uc.Receive(ctx, id, map[string]entity.ItemCondition{items[0].ID: entity.ConditionDefective}, "", "b"))
	d := f.detail(t, id)
	assert.Equal(t, entity.DispositionVendorReturn, d.Items[0].Disposition)
	assert.Equal(t, entity.DispositionPendingDecision, d.Items[1].Disposition)
	assert.Empty(t, d.Items[1].ConditionReceived)
}

func TestProcessRefund_MontoAjustado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	id := f.create(t, "defective", item("prod-a", 1, "100.00"))
	require.NoError(t, f.uc.Approve(ctx, id, "m"))
	require.NoError(t, f.uc.Receive(ctx, id, nil, "", "b"))

	over := dec("120")
	require.ErrorIs(t, f.uc.ProcessRefund(ctx, id, &over, "c"), domain.ErrInvalidInput)
	negative := dec("-1")
	require.ErrorIs(t, f.uc.ProcessRefund(ctx, id, &negative, "c"), domain.ErrInvalidInput)
	assert.Equal(t, entity.RMAStatusReceived, f.detail(t, id).Request.Status)

	amount := dec("80")
	require.NoError(t, f.uc.ProcessRefund(ctx, id, &amount, "c"))

	req := f.detail(t, id).Request
	assert.True(t, dec("80.00").Equal(req.RefundAmount))
	assert.True(t, dec("20.00").Equal(req.RestockingFee))
	assert.True(t, req.TotalAmount.Equal(req.RefundAmount.Add(req.RestockingFee)))
}

func TestCreateVendorRMA_CopiaSubconjunto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "10")
	src := f.create(t, "changed_mind",
		item("prod-a", 1, "10.00"), item("prod-b", 2, "15.00"), item("prod-c", 1, "99.99"))
	require.NoError(t, f.uc.Approve(ctx, src, "m"))
	srcItems := f.detail(t, src).Items
	require.NoError(t, f.uc.Receive(ctx, src, map[string]entity.ItemCondition{
		srcItems[0].ID: entity.ConditionDefective,
		srcItems[1].ID: entity.ConditionDamaged,
	}, "", "b"))
	before := f.detail(t, src).Items

	newID, err := f.uc.CreateVendorRMA(ctx, src, "vendor-1", []string{srcItems[0].ID, srcItems[1].ID}, "compras-1")
	require.NoError(t, err)

	d := f.detail(t, newID)
	req := d.Request
	assert.Equal(t, entity.RMAKindVendorReturn, req.Kind)
	assert.Equal(t, entity.RMAStatusPending, req.Status)
	assert.Equal(t, "defective", req.Reason)
	assert.Equal(t, "vendor-1", req.VendorID)
	assert.True(t, dec("40.00").Equal(req.TotalAmount), "total = %s", req.TotalAmount)
	assert.True(t, req.TotalAmount.Equal(req.RefundAmount.Add(req.RestockingFee)))
	assert.Regexp(t, `^VENDOR-20260307-\d{4}$`, req.ReferenceCode)
	assert.Contains(t, req.InternalNotes, f.detail(t, src).Request.ReferenceCode)

	require.Len(t, d.Items, 2)
	assert.Equal(t, "prod-a", d.Items[0].ProductID)
	assert.Equal(t, "prod-b", d.Items[1].ProductID)
	assert.Equal(t, 2, d.Items[1].Quantity)
	assert.NotEqual(t, srcItems[0].ID, d.Items[0].ID)
	assert.Empty(t, d.Items[0].Disposition)

	assert.Equal(t, before, f.detail(t, src).Items)
	assert.Contains(t, f.notifier.events(), rma.EventVendorRMACreated)
}

func TestCreateVendorRMA_Errores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	src := f.create(t, "defective", item("prod-a", 1, "10"))
	itemID := f.detail(t, src).Items[0].ID

	_, err := f.uc.CreateVendorRMA(ctx, src, "vendor-x", []string{itemID}, "u")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateVendorRMA(ctx, "no-existe", "vendor-1", []string{itemID}, "u")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateVendorRMA(ctx, src, "vendor-1", []string{"otro"}, "u")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateVendorRMA(ctx, src, "vendor-1", nil, "u")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, total, err := f.uc.List(ctx, repository.RMAFilter{Kind: entity.RMAKindVendorReturn})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestNotificacionFallida_NoRevierte(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	f.notifier.failOn = rma.EventApproved
	id := f.create(t, "defective", item("prod-a", 1, "10"))

	require.NoError(t, f.uc.Approve(ctx, id, "m"))

	assert.Equal(t, entity.RMAStatusApproved, f.detail(t, id).Request.Status)
	assert.Equal(t, 1, f.metrics.notificationFailure[string(rma.EventApproved)])
}

func TestFalloDeAlmacenamiento_RevierteTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	id := f.create(t, "defective", item("prod-a", 4, "10"))
	itemID := f.detail(t, id).Items[0].ID
	require.NoError(t, f.uc.Approve(ctx, id, "m"))
	require.NoError(t, f.uc.Receive(ctx, id, map[string]entity.ItemCondition{itemID: entity.ConditionUnopened}, "", "b"))
	before := f.detail(t, id)

	f.store.FailOn("AppendHistory")
	err := f.uc.ProcessRefund(ctx, id, nil, "c")
	require.ErrorIs(t, err, domain.ErrStorage)
	f.store.ClearFailures()

	assert.Equal(t, before, f.detail(t, id))
	assert.True(t, decimal.Zero.Equal(f.stock(t, "prod-a")))
	movs, err := f.store.MovementRepository().ListBySource(ctx, entity.MovementSourceRMA, id)
	require.NoError(t, err)
	assert.Empty(t, movs)

	f.store.FailOn("CreateItem")
	_, err = f.uc.Create(ctx, rma.CreateInput{CustomerID: "c", Reason: "defective", Items: []rma.CreateItemInput{item("p", 1, "1")}})
	require.ErrorIs(t, err, domain.ErrStorage)
	f.store.ClearFailures()
	_, total, err := f.uc.List(ctx, repository.RMAFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSetItemDisposition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	id := f.create(t, "defective", item("prod-a", 1, "10"), item("prod-b", 5, "2"))
	items := f.detail(t, id).Items

	err := f.uc.SetItemDisposition(ctx, id, items[1].ID, entity.DispositionRestock, "u")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, f.uc.Approve(ctx, id, "m"))
	require.NoError(t, f.uc.Receive(ctx, id, map[string]entity.ItemCondition{
		items[0].ID: entity.ConditionUnopened,
		items[1].ID: entity.ConditionUsedFair,
	}, "", "b"))
	require.NoError(t, f.uc.ProcessRefund(ctx, id, nil, "c"))
	assert.True(t, decimal.Zero.Equal(f.stock(t, "prod-b")))

	err = f.uc.SetItemDisposition(ctx, id, items[1].ID, entity.DispositionPendingDecision, "u")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.uc.SetItemDisposition(ctx, id, items[1].ID, entity.DispositionRestock, "u"))
	assert.True(t, dec("5").Equal(f.stock(t, "prod-b")))

	err = f.uc.SetItemDisposition(ctx, id, items[1].ID, entity.DispositionVendorReturn, "u")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = f.uc.SetItemDisposition(ctx, id, items[0].ID, entity.DispositionVendorReturn, "u")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = f.uc.SetItemDisposition(ctx, id, "otro", entity.DispositionVendorReturn, "u")
	require.ErrorIs(t, err, domain.ErrNotFound)

	d := f.detail(t, id)
	last := d.History[len(d.History)-1]
	assert.Equal(t, entity.RMAStatusRefunded, last.OldStatus)
	assert.Equal(t, entity.RMAStatusRefunded, last.NewStatus)
	assert.Contains(t, last.Notes, "RESTOCK")
	assert.True(t, dec("1").Equal(f.stock(t, "prod-a")))
}

func TestList_Filtros(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	a := f.create(t, "defective", item("prod-a", 1, "10"))
	f.create(t, "defective", item("prod-a", 1, "10"))
	require.NoError(t, f.uc.Approve(ctx, a, "m"))

	list, total, err := f.uc.List(ctx, repository.RMAFilter{Status: entity.RMAStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, a, list[0].ID)

	_, total, err = f.uc.List(ctx, repository.RMAFilter{CustomerID: "cust-1", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = f.uc.List(ctx, repository.RMAFilter{Status: "CLOSED"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Get(ctx, "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_PrecioConMasDeDosDecimales(t *testing.T) {
	f := newFixture(t, "")

	id := f.create(t, "defective", item("prod-a", 3, "0.125"), item("prod-b", 1, "10.004"))

	d := f.detail(t, id)
	require.Len(t, d.Items, 2)
	sum := decimal.Zero
	for _, it := range d.Items {
		assert.True(t, it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Equal(it.TotalPrice),
			"%s: %s x %d != %s", it.ProductID, it.UnitPrice, it.Quantity, it.TotalPrice)
		sum = sum.Add(it.TotalPrice)
	}
	assert.True(t, dec("0.13").Equal(d.Items[0].UnitPrice))
	assert.True(t, dec("0.39").Equal(d.Items[0].TotalPrice))
	assert.True(t, dec("10.39").Equal(d.Request.TotalAmount), "total = %s", d.Request.TotalAmount)
	assert.True(t, sum.Equal(d.Request.TotalAmount))
	assert.True(t, d.Request.RefundAmount.Add(d.Request.RestockingFee).Equal(d.Request.TotalAmount))
}

// blindRefs simula otra transacción que tomó el código entre el chequeo y el INSERT.
type blindRefs struct {
	repository.RMARepository
}

func (blindRefs) ExistsByReference(context.Context, string) (bool, error) { return false, nil }

type blindTxRunner struct {
	store *memory.Store
}

func (r blindTxRunner) RunRMA(ctx context.Context, fn func(
	rmaRepo repository.RMARepository,
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	return r.store.RunRMA(ctx, func(
		rmaRepo repository.RMARepository,
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		return fn(blindRefs{rmaRepo}, stockRepo, movRepo)
	})
}

func newBlindWorkflow(f *fixture, randN func(int) int) *rma.WorkflowUseCase {
	runner := blindTxRunner{store: f.store}
	return rma.NewWorkflowUseCase(
		runner, f.store.RMARepository(), f.store.VendorRepository(), f.store.SettingsRepository(),
		rma.NewRestocker(runner, restockWarehouse), f.notifier, zerolog.Nop(),
		rma.Config{MaxReferenceAttempts: 3},
	).WithClock(func() time.Time { return fixedNow }).WithRandom(randN)
}

func TestCreate_ConflictoDeReferenciaAlInsertarReintenta(t *testing.T) {
	f := newFixture(t, "")
	first := f.create(t, "defective", item("prod-a", 1, "10"))
	require.Equal(t, "RMA-20260307-0001", f.detail(t, first).Request.ReferenceCode)

	draws := []int{1, 1, 2}
	uc := newBlindWorkflow(f, func(int) int {
		n := draws[0]
		draws = draws[1:]
		return n
	})

	id, err := uc.Create(context.Background(), rma.CreateInput{
		CustomerID: "cust-1", Reason: "defective", Items: []rma.CreateItemInput{item("prod-b", 2, "5")},
	})

	require.NoError(t, err)
	d := f.detail(t, id)
	assert.Equal(t, "RMA-20260307-0002", d.Request.ReferenceCode)
	assert.Len(t, d.Items, 1)
	_, total, err := f.uc.List(context.Background(), repository.RMAFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestCreate_ConflictoPersistenteAgotaIntentos(t *testing.T) {
	f := newFixture(t, "")
	f.create(t, "defective", item("prod-a", 1, "10"))
	uc := newBlindWorkflow(f, func(int) int { return 1 })

	_, err := uc.Create(context.Background(), rma.CreateInput{
		CustomerID: "cust-1", Reason: "defective", Items: []rma.CreateItemInput{item("prod-b", 1, "5")},
	})

	require.ErrorIs(t, err, domain.ErrGenerationExhausted)
	assert.NotErrorIs(t, err, domain.ErrStorage)
	_, total, err := f.uc.List(context.Background(), repository.RMAFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
