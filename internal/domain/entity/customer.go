package entity

import "time"

// Customer cliente que solicita devoluciones; solo se usa para notificar.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
