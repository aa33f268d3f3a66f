package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abcenterprises/fbr-einvoicing/internal/application/port"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
	"github.com/abcenterprises/fbr-einvoicing/pkg/utils"
)

// ProductService manages the HS-code product catalog that invoice line
// items draw their defaults from.
type ProductService interface {
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	GetByHSCode(ctx context.Context, hsCode string) (*entity.Product, error)
	ListProducts(ctx context.Context) ([]*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SeedDefaults(ctx context.Context) error
}

type productServiceImpl struct {
	productRepo port.ProductRepository
	logger      Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo port.ProductRepository, logger Logger) ProductService {
	return &productServiceImpl{productRepo: productRepo, logger: logger}
}

// CreateProduct validates and stores a catalog entry
func (s *productServiceImpl) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	product.HSCode = utils.NormalizeHSCode(product.HSCode)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", "error", err, "hs_code", product.HSCode)
		return nil, err
	}

	s.logger.Info("Product created", "id", product.ID, "hs_code", product.HSCode, "name", product.Name)
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *productServiceImpl) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// GetByHSCode retrieves a product by its HS code
func (s *productServiceImpl) GetByHSCode(ctx context.Context, hsCode string) (*entity.Product, error) {
	return s.productRepo.GetByHSCode(ctx, utils.NormalizeHSCode(hsCode))
}

// ListProducts retrieves the whole catalog
func (s *productServiceImpl) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	return s.productRepo.List(ctx)
}

// UpdateProduct validates and stores changes to a catalog entry
func (s *productServiceImpl) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	product.HSCode = utils.NormalizeHSCode(product.HSCode)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now()
	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("Failed to update product", "error", err, "id", product.ID)
		return nil, err
	}

	s.logger.Info("Product updated", "id", product.ID, "hs_code", product.HSCode)
	return product, nil
}

// DeleteProduct removes a catalog entry. Invoices that already reference
// the HS code keep their stored line values.
func (s *productServiceImpl) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", "error", err, "id", id)
		return err
	}
	s.logger.Info("Product deleted", "id", id)
	return nil
}

// SeedDefaults loads a starter catalog into an empty database so a fresh
// install can issue invoices immediately. An already populated catalog is
// left alone.
func (s *productServiceImpl) SeedDefaults(ctx context.Context) error {
	existing, err := s.productRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, p := range defaultCatalog() {
		if _, err := s.CreateProduct(ctx, p); err != nil {
			return err
		}
	}

	s.logger.Info("Seeded default product catalog", "count", len(defaultCatalog()))
	return nil
}

func validateProduct(product *entity.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if !utils.ValidHSCode(product.HSCode) {
		return &entity.ValidationError{Err: entity.ErrMalformedHSCode, Details: product.HSCode}
	}
	return nil
}

func defaultCatalog() []*entity.Product {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	pct18 := d("18")
	return []*entity.Product{
		{HSCode: "5205.1100", Name: "Cotton Yarn 20/1 Carded", Unit: entity.UnitKG, DefaultRate: d("485.50"), TaxPercent: pct18},
		{HSCode: "5208.1100", Name: "Grey Fabric 60x60/90x88", Unit: entity.UnitMTR, DefaultRate: d("145.00"), TaxPercent: pct18},
		{HSCode: "6109.1000", Name: "Mens Cotton T-Shirt (White)", Unit: entity.UnitPCS, DefaultRate: d("850.00"), TaxPercent: pct18},
		{HSCode: "3907.6100", Name: "Polyester Staple Fiber", Unit: entity.UnitKG, DefaultRate: d("320.00"), TaxPercent: pct18},
		{HSCode: "2710.1900", Name: "Industrial Grade Lubricant X1", Unit: entity.UnitLTR, DefaultRate: d("650.00"), TaxPercent: pct18},
	}
}
