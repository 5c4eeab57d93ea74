package postgres

import (
	"context"

	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo lectura de clientes sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente. (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT id, name, email, phone, created_at, updated_at FROM customers WHERE id = $1`
	var (
		c            entity.Customer
		email, phone *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &email, &phone, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get customer", err)
	}
	c.Email = deref(email)
	c.Phone = deref(phone)
	return &c, nil
}
