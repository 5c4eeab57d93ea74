package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN     = "IN"     // entrada
	MovementTypeOUT    = "OUT"    // salida
	MovementTypeRETURN = "RETURN" // reingreso por devolución
)

// Origen del movimiento.
const (
	MovementSourceRMA = "rma"
)

// InventoryMovement representa un movimiento de inventario del catálogo.
// TransactionID referencia el documento origen (para devoluciones, el ID de la RMA).
type InventoryMovement struct {
	ID            string
	TransactionID string
	SourceType    string
	ProductID     string
	WarehouseID   string
	Type          string
	Quantity      decimal.Decimal // positivo entrada, negativo salida
	Date          time.Time
	CreatedAt     time.Time
	CreatedBy     string
}
