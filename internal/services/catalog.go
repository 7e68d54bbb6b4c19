package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/pricing"
	"github.com/diewo77/seize-billing/internal/validation"
)

// ProductInput is the editable part of a product. Nil TaxRate and MinStock
// fall back to the catalog defaults on create and are left unchanged on
// update.
type ProductInput struct {
	Name     string           `json:"name"`
	HSNCode  string           `json:"hsn_code"`
	Price    decimal.Decimal  `json:"price"`
	TaxRate  *decimal.Decimal `json:"tax_rate,omitempty"`
	Stock    int              `json:"stock"`
	MinStock *int             `json:"min_stock,omitempty"`
}

var maxTaxRate = decimal.NewFromInt(100)

func (in ProductInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.NonNegativeDecimal("price", in.Price, v)
	validation.MaxPlaces("price", in.Price, pricing.CurrencyPlaces, v)
	if in.TaxRate != nil {
		validation.RangeDecimal("tax_rate", *in.TaxRate, decimal.Zero, maxTaxRate, v)
		validation.MaxPlaces("tax_rate", *in.TaxRate, pricing.RatePlaces, v)
	}
	if in.MinStock != nil {
		validation.NonNegativeInt("min_stock", *in.MinStock, v)
	}
	return v.Err()
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.HSNCode = strings.TrimSpace(in.HSNCode)
	p.Price = in.Price
	p.Stock = in.Stock
	if in.TaxRate != nil {
		p.TaxRate = *in.TaxRate
	}
	if in.MinStock != nil {
		p.MinStock = *in.MinStock
	}
}

// CatalogService manages products. Stock itself is moved by invoices; here
// it is only set by hand.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Create adds a product. Admin only.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if _, err := requireAdmin(ctx, "adding a product"); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := models.Product{
		TaxRate:  decimal.NewFromInt(models.DefaultTaxRate),
		MinStock: models.DefaultMinStock,
	}
	in.apply(&p)
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, persistence("inserting product", err)
	}
	logger.Infof("product %q added with stock %d", p.Name, p.Stock)
	return &p, nil
}

// Update edits a product. Invoice items keep their snapshot of the old
// name, price and tax rate. Admin only.
func (s *CatalogService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if _, err := requireAdmin(ctx, "editing a product"); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, persistence("updating product", err)
	}
	return p, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, classify("loading product", notFound(err, "product %d", id))
	}
	return &p, nil
}

// List returns products ordered by name, optionally filtered by a name or
// HSN code fragment.
func (s *CatalogService) List(ctx context.Context, search string) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(hsn_code) LIKE ?", like, like)
	}
	var products []models.Product
	if err := q.Order("name").Order("id").Find(&products).Error; err != nil {
		return nil, persistence("listing products", err)
	}
	return products, nil
}

// LowStock returns products at or below their reorder threshold.
func (s *CatalogService) LowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Where("stock <= min_stock").Order("stock").Order("name").Find(&products).Error
	if err != nil {
		return nil, persistence("listing low stock", err)
	}
	return products, nil
}
