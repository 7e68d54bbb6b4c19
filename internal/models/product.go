package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Defaults applied to new products when the operator leaves them blank.
const (
	DefaultTaxRate  = 18
	DefaultMinStock = 10
)

// Product is a catalog entry. Stock is mutated by invoice saves and may go
// negative; products are never deleted automatically.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Name      string          `gorm:"size:255;not null;index" json:"name"`
	HSNCode   string          `gorm:"size:20" json:"hsn_code,omitempty"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	// TaxRate is a percentage, 18 means 18%.
	TaxRate  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	Stock    int             `gorm:"not null;default:0" json:"stock"`
	MinStock int             `gorm:"not null" json:"min_stock"`
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// PriceWithTax returns the unit price including tax.
func (p *Product) PriceWithTax() decimal.Decimal {
	return p.Price.Add(p.unitTax())
}

func (p *Product) unitTax() decimal.Decimal {
	return p.Price.Mul(p.TaxRate).Div(decimal.NewFromInt(100))
}
