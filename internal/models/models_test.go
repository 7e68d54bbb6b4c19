package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_IsLowStock(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		minStock int
		want     bool
	}{
		{"above threshold", 11, 10, false},
		{"at threshold", 10, 10, true},
		{"below threshold", 3, 10, true},
		{"negative stock", -2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Stock: tt.stock, MinStock: tt.minStock}
			assert.Equal(t, tt.want, p.IsLowStock())
		})
	}
}

func TestProduct_PriceWithTax(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		taxRate int64
		want    string
	}{
		{"18% on 100", "100", 18, "118.00"},
		{"5% on 50", "50", 5, "52.50"},
		{"0%", "100", 0, "100.00"},
		{"12% on 9.99", "9.99", 12, "11.19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: decimal.RequireFromString(tt.price), TaxRate: decimal.NewFromInt(tt.taxRate)}
			assert.Equal(t, tt.want, p.PriceWithTax().StringFixed(2))
		})
	}
}

func TestInvoiceStatus_Valid(t *testing.T) {
	assert.True(t, InvoiceStatusPending.Valid())
	assert.True(t, InvoiceStatusPaid.Valid())
	assert.True(t, InvoiceStatusCancelled.Valid())
	assert.False(t, InvoiceStatus("draft").Valid())
	assert.False(t, InvoiceStatus("").Valid())
}

func TestInvoice_ItemsTotal(t *testing.T) {
	inv := &Invoice{
		Items: []InvoiceItem{
			{Total: decimal.RequireFromString("354.00")},
			{Total: decimal.RequireFromString("52.50")},
		},
	}
	assert.Equal(t, "406.50", inv.ItemsTotal().StringFixed(2))

	// Line totals are stored unrounded; only their sum is rounded.
	inv.Items = []InvoiceItem{
		{Total: decimal.RequireFromString("0.0354")},
		{Total: decimal.RequireFromString("0.0354")},
	}
	assert.Equal(t, "0.07", inv.ItemsTotal().String())
	assert.False(t, inv.IsCancelled())
	inv.Status = InvoiceStatusCancelled
	assert.True(t, inv.IsCancelled())
}

func TestExpenseCategory_Valid(t *testing.T) {
	for _, c := range ExpenseCategories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, ExpenseCategory("rent").Valid())
	assert.False(t, ExpenseCategory("Travel").Valid())
}

func TestDateRoundTrip(t *testing.T) {
	d := time.Date(2026, time.March, 5, 17, 45, 0, 0, time.UTC)
	s := FormatDate(d)
	assert.Equal(t, "2026-03-05", s)

	parsed, err := ParseDate(s)
	assert.NoError(t, err)
	assert.Equal(t, 5, parsed.Day())

	_, err = ParseDate("05/03/2026")
	assert.Error(t, err)
}

func TestCompanyTableName(t *testing.T) {
	assert.Equal(t, "company", Company{}.TableName())
	u := &User{Role: RoleAdmin}
	assert.True(t, u.IsAdmin())
}
