package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of a saved invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice is a saved bill. Totals are stored rounded to two decimals and
// always satisfy Total = Subtotal + TaxAmount.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number string `gorm:"column:invoice_no;size:50;uniqueIndex;not null" json:"invoice_no"`

	CustomerName  string `gorm:"size:255;not null" json:"customer_name"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone,omitempty"`
	CustomerGSTIN string `gorm:"column:customer_gstin;size:20" json:"customer_gstin,omitempty"`

	// Date is the issue date, see DateLayout.
	Date string `gorm:"size:10;index;not null" json:"date"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	Status    InvoiceStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedBy string        `gorm:"size:100" json:"created_by"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// IsCancelled reports whether the invoice is excluded from sales figures.
func (i *Invoice) IsCancelled() bool {
	return i.Status == InvoiceStatusCancelled
}

// ItemsTotal sums the stored line totals at two decimals. For a consistent
// invoice it equals Total.
func (i *Invoice) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.Total)
	}
	return total.Round(2)
}

// InvoiceItem is one line of an invoice. Name, price and tax rate are copied
// from the catalog at sale time so later product edits never change history.
// Total is kept unrounded; only the invoice header is rounded.
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"index;not null" json:"invoice_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	Total       decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"total"`
}
