package port

import (
	"context"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
)

// ProductRepository defines persistence operations for the HS-code catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByHSCode(ctx context.Context, hsCode string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error
}

// InvoiceRepository defines persistence operations for invoices and their
// line items. Implementations store inputs only; monetary totals are
// always recomputed.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	GetByNumber(ctx context.Context, invoiceNumber string) (*entity.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
	ListByStatus(ctx context.Context, status lifecycle.State, limit int) ([]*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
}
