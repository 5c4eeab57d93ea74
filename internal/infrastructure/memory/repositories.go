package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

type rmaRepo struct{ binding }

func (r *rmaRepo) Create(_ context.Context, req *entity.RMARequest) error {
	return r.do("Create", func(st *state) error {
		if _, ok := st.requests[req.ID]; ok {
			return fmt.Errorf("%w: rma %s duplicada", domain.ErrStorage, req.ID)
		}
		for _, existing := range st.requests {
			if existing.ReferenceCode == req.ReferenceCode {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateReference, req.ReferenceCode)
			}
		}
		st.requests[req.ID] = *req
		return nil
	})
}

func (r *rmaRepo) Update(_ context.Context, req *entity.RMARequest) error {
	return r.do("Update", func(st *state) error {
		if _, ok := st.requests[req.ID]; !ok {
			return fmt.Errorf("%w: rma %s", domain.ErrNotFound, req.ID)
		}
		st.requests[req.ID] = *req
		return nil
	})
}

func (r *rmaRepo) GetByID(_ context.Context, id string) (*entity.RMARequest, error) {
	var out *entity.RMARequest
	err := r.do("GetByID", func(st *state) error {
		if req, ok := st.requests[id]; ok {
			out = &req
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: el mutex de la transacción ya serializa el acceso.
func (r *rmaRepo) GetForUpdate(ctx context.Context, id string) (*entity.RMARequest, error) {
	return r.GetByID(ctx, id)
}

func (r *rmaRepo) ExistsByReference(_ context.Context, code string) (bool, error) {
	var exists bool
	err := r.do("ExistsByReference", func(st *state) error {
		for _, req := range st.requests {
			if req.ReferenceCode == code {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *rmaRepo) List(_ context.Context, filter repository.RMAFilter) ([]*entity.RMARequest, int, error) {
	var (
		page  []*entity.RMARequest
		total int
	)
	err := r.do("List", func(st *state) error {
		matched := make([]entity.RMARequest, 0, len(st.requests))
		for _, req := range st.requests {
			if filter.Status != "" && req.Status != filter.Status {
				continue
			}
			if filter.Kind != "" && req.Kind != filter.Kind {
				continue
			}
			if filter.CustomerID != "" && req.CustomerID != filter.CustomerID {
				continue
			}
			matched = append(matched, req)
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].RequestedAt.Equal(matched[j].RequestedAt) {
				return matched[i].RequestedAt.After(matched[j].RequestedAt)
			}
			return matched[i].ReferenceCode < matched[j].ReferenceCode
		})
		total = len(matched)
		start := min(filter.Offset, total)
		end := total
		if filter.Limit > 0 {
			end = min(start+filter.Limit, total)
		}
		for i := start; i < end; i++ {
			req := matched[i]
			page = append(page, &req)
		}
		return nil
	})
	return page, total, err
}

func (r *rmaRepo) CreateItem(_ context.Context, item *entity.RMAItem) error {
	return r.do("CreateItem", func(st *state) error {
		if _, ok := st.requests[item.RMARequestID]; !ok {
			return fmt.Errorf("%w: rma %s inexistente para ítem", domain.ErrStorage, item.RMARequestID)
		}
		st.items[item.ID] = *item
		st.itemOrder = append(st.itemOrder, item.ID)
		return nil
	})
}

func (r *rmaRepo) UpdateItem(_ context.Context, item *entity.RMAItem) error {
	return r.do("UpdateItem", func(st *state) error {
		if _, ok := st.items[item.ID]; !ok {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
		}
		st.items[item.ID] = *item
		return nil
	})
}

func (r *rmaRepo) ListItems(_ context.Context, rmaID string) ([]*entity.RMAItem, error) {
	var out []*entity.RMAItem
	err := r.do("ListItems", func(st *state) error {
		for _, id := range st.itemOrder {
			if item := st.items[id]; item.RMARequestID == rmaID {
				out = append(out, &item)
			}
		}
		return nil
	})
	return out, err
}

func (r *rmaRepo) ListRestockableForUpdate(_ context.Context, rmaID string) ([]*entity.RMAItem, error) {
	var out []*entity.RMAItem
	err := r.do("ListRestockableForUpdate", func(st *state) error {
		for _, id := range st.itemOrder {
			item := st.items[id]
			if item.RMARequestID == rmaID && item.Disposition == entity.DispositionRestock && !item.Restocked {
				out = append(out, &item)
			}
		}
		return nil
	})
	return out, err
}

func (r *rmaRepo) AppendHistory(_ context.Context, entry *entity.StatusHistoryEntry) error {
	return r.do("AppendHistory", func(st *state) error {
		st.history = append(st.history, *entry)
		return nil
	})
}

func (r *rmaRepo) ListHistory(_ context.Context, rmaID string) ([]*entity.StatusHistoryEntry, error) {
	var out []*entity.StatusHistoryEntry
	err := r.do("ListHistory", func(st *state) error {
		for _, e := range st.history {
			if e.RMARequestID == rmaID {
				entry := e
				out = append(out, &entry)
			}
		}
		return nil
	})
	return out, err
}

type stockRepo struct{ binding }

func (r *stockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.do("StockGet", func(st *state) error {
		if s, ok := st.stock[stockKey{productID, warehouseID}]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *stockRepo) Increment(_ context.Context, productID, warehouseID string, delta decimal.Decimal) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.do("StockIncrement", func(st *state) error {
		key := stockKey{productID, warehouseID}
		s, ok := st.stock[key]
		if !ok {
			s = entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}
		}
		s.Quantity = s.Quantity.Add(delta)
		s.UpdatedAt = time.Now()
		st.stock[key] = s
		out = &s
		return nil
	})
	return out, err
}

type movementRepo struct{ binding }

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.do("MovementCreate", func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *movementRepo) ListBySource(_ context.Context, sourceType, sourceID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.do("MovementListBySource", func(st *state) error {
		for _, m := range st.movements {
			if m.SourceType == sourceType && m.TransactionID == sourceID {
				mv := m
				out = append(out, &mv)
			}
		}
		return nil
	})
	return out, err
}

type customerRepo struct{ binding }

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.do("CustomerGetByID", func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

type vendorRepo struct{ binding }

func (r *vendorRepo) GetByID(_ context.Context, id string) (*entity.Vendor, error) {
	var out *entity.Vendor
	err := r.do("VendorGetByID", func(st *state) error {
		if v, ok := st.vendors[id]; ok {
			out = &v
		}
		return nil
	})
	return out, err
}

type settingsRepo struct{ binding }

func (r *settingsRepo) Get(_ context.Context, category, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := r.do("SettingsGet", func(st *state) error {
		value, found = st.settings[settingKey(category, key)]
		return nil
	})
	return value, found, err
}

type statsRepo struct{ binding }

func inPeriod(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (r *statsRepo) GetStats(_ context.Context, from, to time.Time) (repository.RMAStatsResult, error) {
	res := repository.RMAStatsResult{
		TotalAmount:        decimal.Zero,
		RefundAmount:       decimal.Zero,
		RestockingFeeTotal: decimal.Zero,
	}
	err := r.do("StatsGet", func(st *state) error {
		for _, req := range st.requests {
			if !inPeriod(req.RequestedAt, from, to) {
				continue
			}
			res.Total++
			switch req.Status {
			case entity.RMAStatusPending:
				res.Pending++
			case entity.RMAStatusApproved:
				res.Approved++
			case entity.RMAStatusRejected:
				res.Rejected++
			case entity.RMAStatusReceived:
				res.Received++
			case entity.RMAStatusRefunded:
				res.Refunded++
			}
			res.TotalAmount = res.TotalAmount.Add(req.TotalAmount)
			res.RefundAmount = res.RefundAmount.Add(req.RefundAmount)
			res.RestockingFeeTotal = res.RestockingFeeTotal.Add(req.RestockingFee)
		}
		return nil
	})
	return res, err
}

func (r *statsRepo) GetTopReasons(_ context.Context, from, to time.Time, limit int) ([]repository.ReasonCount, error) {
	var out []repository.ReasonCount
	err := r.do("StatsTopReasons", func(st *state) error {
		byReason := map[string]*repository.ReasonCount{}
		for _, req := range st.requests {
			if !inPeriod(req.RequestedAt, from, to) {
				continue
			}
			reason := strings.ToLower(req.Reason)
			rc, ok := byReason[reason]
			if !ok {
				rc = &repository.ReasonCount{Reason: reason, Amount: decimal.Zero}
				byReason[reason] = rc
			}
			rc.Count++
			rc.Amount = rc.Amount.Add(req.TotalAmount)
		}
		for _, rc := range byReason {
			out = append(out, *rc)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Count != out[j].Count {
				return out[i].Count > out[j].Count
			}
			return out[i].Reason < out[j].Reason
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}
