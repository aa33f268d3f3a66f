package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
)

func TestProductService_CreateProduct(t *testing.T) {
	tests := []struct {
		name    string
		product *entity.Product
		wantErr error
	}{
		{
			name: "valid product",
			product: &entity.Product{
				HSCode:      "5205.1100",
				Name:        "Cotton Yarn 20/1 Carded",
				Unit:        entity.UnitKG,
				DefaultRate: decimal.RequireFromString("485.50"),
				TaxPercent:  decimal.NewFromInt(18),
			},
		},
		{
			name: "whitespace around HS code is normalized",
			product: &entity.Product{
				HSCode:      " 5205.1100 ",
				Name:        "Cotton Yarn 20/1 Carded",
				Unit:        entity.UnitKG,
				DefaultRate: decimal.RequireFromString("485.50"),
				TaxPercent:  decimal.NewFromInt(18),
			},
		},
		{
			name: "malformed HS code",
			product: &entity.Product{
				HSCode:      "52A5",
				Name:        "Cotton Yarn",
				Unit:        entity.UnitKG,
				DefaultRate: decimal.RequireFromString("485.50"),
				TaxPercent:  decimal.NewFromInt(18),
			},
			wantErr: entity.ErrMalformedHSCode,
		},
		{
			name: "missing name",
			product: &entity.Product{
				HSCode:      "5205.1100",
				Unit:        entity.UnitKG,
				DefaultRate: decimal.RequireFromString("485.50"),
				TaxPercent:  decimal.NewFromInt(18),
			},
			wantErr: entity.ErrMissingProductName,
		},
		{
			name: "tax percent out of range",
			product: &entity.Product{
				HSCode:      "5205.1100",
				Name:        "Cotton Yarn",
				Unit:        entity.UnitKG,
				DefaultRate: decimal.RequireFromString("485.50"),
				TaxPercent:  decimal.NewFromInt(120),
			},
			wantErr: entity.ErrTaxPercentRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewProductService(&mockProductRepo{}, &mockLogger{})

			created, err := svc.CreateProduct(context.Background(), tt.product)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateProduct() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateProduct() error = %v", err)
			}
			if created.HSCode != "5205.1100" {
				t.Errorf("CreateProduct() HS code = %q, want normalized 5205.1100", created.HSCode)
			}
			if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
				t.Error("CreateProduct() did not stamp timestamps")
			}
		})
	}
}

func TestProductService_CreateProduct_DuplicateHSCode(t *testing.T) {
	repo := &mockProductRepo{
		createFunc: func(ctx context.Context, product *entity.Product) error {
			return entity.ErrDuplicateHSCode
		},
	}
	svc := NewProductService(repo, &mockLogger{})

	_, err := svc.CreateProduct(context.Background(), &entity.Product{
		HSCode:      "5205.1100",
		Name:        "Cotton Yarn 20/1 Carded",
		Unit:        entity.UnitKG,
		DefaultRate: decimal.RequireFromString("485.50"),
		TaxPercent:  decimal.NewFromInt(18),
	})
	if !errors.Is(err, entity.ErrDuplicateHSCode) {
		t.Errorf("CreateProduct() error = %v, want ErrDuplicateHSCode", err)
	}
}

func TestProductService_SeedDefaults(t *testing.T) {
	t.Run("empty catalog is seeded", func(t *testing.T) {
		var created []*entity.Product
		repo := &mockProductRepo{
			listFunc: func(ctx context.Context) ([]*entity.Product, error) {
				return []*entity.Product{}, nil
			},
			createFunc: func(ctx context.Context, product *entity.Product) error {
				product.ID = int64(len(created) + 1)
				created = append(created, product)
				return nil
			},
		}
		svc := NewProductService(repo, &mockLogger{})

		if err := svc.SeedDefaults(context.Background()); err != nil {
			t.Fatalf("SeedDefaults() error = %v", err)
		}
		if len(created) != 5 {
			t.Errorf("seeded %d products, want 5", len(created))
		}
	})

	t.Run("populated catalog is left alone", func(t *testing.T) {
		repo := &mockProductRepo{
			listFunc: func(ctx context.Context) ([]*entity.Product, error) {
				return []*entity.Product{riceProduct()}, nil
			},
			createFunc: func(ctx context.Context, product *entity.Product) error {
				t.Error("SeedDefaults() must not write into a populated catalog")
				return nil
			},
		}
		svc := NewProductService(repo, &mockLogger{})

		if err := svc.SeedDefaults(context.Background()); err != nil {
			t.Fatalf("SeedDefaults() error = %v", err)
		}
	})
}
