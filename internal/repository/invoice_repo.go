package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/lifecycle"
	"github.com/abcenterprises/fbr-einvoicing/pkg/database"
)

const invoiceColumns = `
	id, invoice_number, fbr_number, invoice_date, invoice_type, sale_type,
	payment_mode, origin_province, buyer_name, buyer_ntn_cnic, buyer_strn,
	buyer_type, buyer_address, destination_province, status,
	rejection_reason, created_at, updated_at, submitted_at, validated_at,
	rejected_at`

// InvoiceRepository handles invoice database operations. The invoice
// header and its line items are always written inside one transaction.
type InvoiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(db *database.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// Create inserts a new invoice with its line items.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		query := `
			INSERT INTO invoices (
				invoice_number, fbr_number, invoice_date, invoice_type,
				sale_type, payment_mode, origin_province, buyer_name,
				buyer_ntn_cnic, buyer_strn, buyer_type, buyer_address,
				destination_province, status, rejection_reason,
				created_at, updated_at, submitted_at, validated_at, rejected_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		result, err := tx.ExecContext(ctx, query,
			invoice.InvoiceNumber,
			invoice.FBRNumber,
			invoice.Date,
			string(invoice.InvoiceType),
			string(invoice.SaleType),
			string(invoice.PaymentMode),
			string(invoice.OriginProvince),
			invoice.Buyer.Name,
			invoice.Buyer.NTNOrCNIC,
			invoice.Buyer.STRN,
			string(invoice.Buyer.Type),
			invoice.Buyer.Address,
			string(invoice.Buyer.DestinationProvince),
			invoice.Status.String(),
			invoice.RejectionReason,
			invoice.CreatedAt,
			invoice.UpdatedAt,
			invoice.SubmittedAt,
			invoice.ValidatedAt,
			invoice.RejectedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create invoice", zap.Error(err))
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		invoice.ID = id

		return r.insertLineItems(ctx, tx, invoice)
	})
}

// Update rewrites the invoice header and replaces its line items.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		query := `
			UPDATE invoices SET
				invoice_number = ?, fbr_number = ?, invoice_date = ?,
				invoice_type = ?, sale_type = ?, payment_mode = ?,
				origin_province = ?, buyer_name = ?, buyer_ntn_cnic = ?,
				buyer_strn = ?, buyer_type = ?, buyer_address = ?,
				destination_province = ?, status = ?, rejection_reason = ?,
				updated_at = ?, submitted_at = ?, validated_at = ?, rejected_at = ?
			WHERE id = ?
		`

		result, err := tx.ExecContext(ctx, query,
			invoice.InvoiceNumber,
			invoice.FBRNumber,
			invoice.Date,
			string(invoice.InvoiceType),
			string(invoice.SaleType),
			string(invoice.PaymentMode),
			string(invoice.OriginProvince),
			invoice.Buyer.Name,
			invoice.Buyer.NTNOrCNIC,
			invoice.Buyer.STRN,
			string(invoice.Buyer.Type),
			invoice.Buyer.Address,
			string(invoice.Buyer.DestinationProvince),
			invoice.Status.String(),
			invoice.RejectionReason,
			invoice.UpdatedAt,
			invoice.SubmittedAt,
			invoice.ValidatedAt,
			invoice.RejectedAt,
			invoice.ID,
		)
		if err != nil {
			r.logger.Error("Failed to update invoice", zap.Error(err))
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update result: %w", err)
		}
		if affected == 0 {
			return entity.ErrInvoiceNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM invoice_line_items WHERE invoice_id = ?", invoice.ID); err != nil {
			return fmt.Errorf("failed to clear line items: %w", err)
		}
		return r.insertLineItems(ctx, tx, invoice)
	})
}

func (r *InvoiceRepository) insertLineItems(ctx context.Context, tx *sql.Tx, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoice_line_items (invoice_id, position, description, hs_code, quantity, unit, rate, tax_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i := range invoice.LineItems {
		li := &invoice.LineItems[i]
		result, err := tx.ExecContext(ctx, query,
			invoice.ID,
			i,
			li.Description,
			li.HSCode,
			li.Quantity.String(),
			string(li.Unit),
			li.Rate.String(),
			li.TaxPercent.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item %d: %w", i, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get line item id: %w", err)
		}
		li.ID = id
	}
	return nil
}

// GetByID retrieves an invoice with its line items.
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	return r.getOne(ctx, "SELECT"+invoiceColumns+" FROM invoices WHERE id = ?", id)
}

// GetByNumber retrieves an invoice by its system-assigned number.
func (r *InvoiceRepository) GetByNumber(ctx context.Context, invoiceNumber string) (*entity.Invoice, error) {
	return r.getOne(ctx, "SELECT"+invoiceColumns+" FROM invoices WHERE invoice_number = ?", invoiceNumber)
}

func (r *InvoiceRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.Invoice, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	invoice, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrInvoiceNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := r.loadLineItems(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// List returns invoices newest first.
func (r *InvoiceRepository) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	query := "SELECT" + invoiceColumns + " FROM invoices ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	return r.list(ctx, query, limit, offset)
}

// ListByStatus returns invoices in the given lifecycle state, oldest
// first so the poller drains the backlog in submission order.
func (r *InvoiceRepository) ListByStatus(ctx context.Context, status lifecycle.State, limit int) ([]*entity.Invoice, error) {
	query := "SELECT" + invoiceColumns + " FROM invoices WHERE status = ? ORDER BY submitted_at ASC, id ASC LIMIT ?"
	return r.list(ctx, query, status.String(), limit)
}

func (r *InvoiceRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]*entity.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, invoice := range invoices {
		if err := r.loadLineItems(ctx, invoice); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *InvoiceRepository) loadLineItems(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		SELECT id, description, hs_code, quantity, unit, rate, tax_percent
		FROM invoice_line_items
		WHERE invoice_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	invoice.LineItems = make([]entity.LineItem, 0)
	for rows.Next() {
		var (
			li         entity.LineItem
			unit       string
			quantity   string
			rate       string
			taxPercent string
		)
		if err := rows.Scan(&li.ID, &li.Description, &li.HSCode, &quantity, &unit, &rate, &taxPercent); err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}

		li.Unit = entity.Unit(unit)
		if li.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return fmt.Errorf("corrupt quantity %q: %w", quantity, err)
		}
		if li.Rate, err = decimal.NewFromString(rate); err != nil {
			return fmt.Errorf("corrupt rate %q: %w", rate, err)
		}
		if li.TaxPercent, err = decimal.NewFromString(taxPercent); err != nil {
			return fmt.Errorf("corrupt tax_percent %q: %w", taxPercent, err)
		}
		invoice.LineItems = append(invoice.LineItems, li)
	}
	return rows.Err()
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		inv                 entity.Invoice
		invoiceType         string
		saleType            string
		paymentMode         string
		originProvince      string
		buyerType           string
		destinationProvince string
		status              string
	)

	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.FBRNumber,
		&inv.Date,
		&invoiceType,
		&saleType,
		&paymentMode,
		&originProvince,
		&inv.Buyer.Name,
		&inv.Buyer.NTNOrCNIC,
		&inv.Buyer.STRN,
		&buyerType,
		&inv.Buyer.Address,
		&destinationProvince,
		&status,
		&inv.RejectionReason,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.SubmittedAt,
		&inv.ValidatedAt,
		&inv.RejectedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.InvoiceType = entity.InvoiceType(invoiceType)
	inv.SaleType = entity.SaleType(saleType)
	inv.PaymentMode = entity.PaymentMode(paymentMode)
	inv.OriginProvince = entity.Province(originProvince)
	inv.Buyer.Type = entity.BuyerType(buyerType)
	inv.Buyer.DestinationProvince = entity.Province(destinationProvince)
	inv.Status = lifecycle.State(status)
	return &inv, nil
}
