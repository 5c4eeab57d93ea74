// Package memory implementación en memoria y transaccional de los repositorios de devoluciones.
// Cada transacción toma el mutex del Store, trabaja sobre el estado vivo y lo restaura
// desde una copia si la función retorna error. Pensado para tests y ejecución local sin PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

type stockKey struct {
	productID   string
	warehouseID string
}

type state struct {
	requests  map[string]entity.RMARequest
	items     map[string]entity.RMAItem
	itemOrder []string
	history   []entity.StatusHistoryEntry
	stock     map[stockKey]entity.Stock
	movements []entity.InventoryMovement
	customers map[string]entity.Customer
	vendors   map[string]entity.Vendor
	settings  map[string]string
}

func newState() *state {
	return &state{
		requests:  map[string]entity.RMARequest{},
		items:     map[string]entity.RMAItem{},
		stock:     map[stockKey]entity.Stock{},
		customers: map[string]entity.Customer{},
		vendors:   map[string]entity.Vendor{},
		settings:  map[string]string{},
	}
}

// clone copia profunda suficiente: las entidades se guardan por valor; los punteros a time.Time
// nunca se mutan en sitio.
func (s *state) clone() *state {
	c := &state{
		requests:  make(map[string]entity.RMARequest, len(s.requests)),
		items:     make(map[string]entity.RMAItem, len(s.items)),
		itemOrder: append([]string(nil), s.itemOrder...),
		history:   append([]entity.StatusHistoryEntry(nil), s.history...),
		stock:     make(map[stockKey]entity.Stock, len(s.stock)),
		movements: append([]entity.InventoryMovement(nil), s.movements...),
		customers: make(map[string]entity.Customer, len(s.customers)),
		vendors:   make(map[string]entity.Vendor, len(s.vendors)),
		settings:  make(map[string]string, len(s.settings)),
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.vendors {
		c.vendors[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

// Store almacén en memoria. El valor cero no es usable; usar New.
type Store struct {
	mu       sync.Mutex
	data     *state
	failures map[string]error
}

// New crea un Store vacío.
func New() *Store {
	return &Store{data: newState(), failures: map[string]error{}}
}

// FailOn hace que la operación op (p.ej. "AppendHistory", "CreateItem", "UpdateItem",
// "StockIncrement", "MovementCreate") falle con ErrStorage hasta ClearFailures.
func (s *Store) FailOn(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = fmt.Errorf("%w: %s: fallo inyectado", domain.ErrStorage, op)
}

// ClearFailures elimina los fallos inyectados.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

// RunRMA implementa rma.TxRunner. Las transacciones se serializan con el mutex del Store.
func (s *Store) RunRMA(ctx context.Context, fn func(
	rmaRepo repository.RMARepository,
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStorage, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	b := binding{s: s, inTx: true}
	if err := fn(&rmaRepo{b}, &stockRepo{b}, &movementRepo{b}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// RMARepository repositorio fuera de transacción (lecturas de consultas y reportes).
func (s *Store) RMARepository() repository.RMARepository { return &rmaRepo{binding{s: s}} }

// StockRepository repositorio de stock fuera de transacción.
func (s *Store) StockRepository() repository.StockRepository { return &stockRepo{binding{s: s}} }

// MovementRepository repositorio de movimientos fuera de transacción.
func (s *Store) MovementRepository() repository.InventoryMovementRepository {
	return &movementRepo{binding{s: s}}
}

// CustomerRepository lectura de clientes.
func (s *Store) CustomerRepository() repository.CustomerRepository { return &customerRepo{binding{s: s}} }

// VendorRepository lectura de proveedores.
func (s *Store) VendorRepository() repository.VendorRepository { return &vendorRepo{binding{s: s}} }

// SettingsRepository lectura de parámetros.
func (s *Store) SettingsRepository() repository.SettingsRepository { return &settingsRepo{binding{s: s}} }

// StatsRepository agregados para reportes.
func (s *Store) StatsRepository() repository.RMAStatsRepository { return &statsRepo{binding{s: s}} }

// PutCustomer registra un cliente (fixtures).
func (s *Store) PutCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.ID] = c
}

// PutVendor registra un proveedor (fixtures).
func (s *Store) PutVendor(v entity.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.vendors[v.ID] = v
}

// PutSetting define un parámetro category/key.
func (s *Store) PutSetting(category, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.settings[settingKey(category, key)] = value
}

// PutStock fija el stock de un producto en una bodega (fixtures).
func (s *Store) PutStock(st entity.Stock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.stock[stockKey{st.ProductID, st.WarehouseID}] = st
}

func settingKey(category, key string) string { return category + "/" + key }

// binding decide si una operación corre dentro de RunRMA (mutex ya tomado) o debe tomarlo.
type binding struct {
	s    *Store
	inTx bool
}

func (b binding) do(op string, fn func(st *state) error) error {
	if !b.inTx {
		b.s.mu.Lock()
		defer b.s.mu.Unlock()
	}
	if err, ok := b.s.failures[op]; ok {
		return err
	}
	return fn(b.s.data)
}
