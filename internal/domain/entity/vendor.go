package entity

import "time"

// Vendor proveedor al que se reclaman ítems devueltos (RMA de proveedor).
type Vendor struct {
	ID           string
	Name         string
	ContactEmail string
	CreatedAt    time.Time
}
