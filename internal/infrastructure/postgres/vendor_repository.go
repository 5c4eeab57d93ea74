package postgres

import (
	"context"

	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ repository.VendorRepository = (*VendorRepo)(nil)

// VendorRepo lectura de proveedores sobre PostgreSQL.
type VendorRepo struct {
	q Querier
}

// NewVendorRepository construye el adaptador.
func NewVendorRepository(q Querier) *VendorRepo {
	return &VendorRepo{q: q}
}

// GetByID obtiene un proveedor. (nil, nil) si no existe.
func (r *VendorRepo) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	var (
		v     entity.Vendor
		email *string
	)
	err := r.q.QueryRow(ctx, `SELECT id, name, contact_email, created_at FROM vendors WHERE id = $1`, id).
		Scan(&v.ID, &v.Name, &email, &v.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, storageErr("get vendor", err)
	}
	v.ContactEmail = deref(email)
	return &v, nil
}
