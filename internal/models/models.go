// Package models holds the GORM models of the billing ledger: the product
// catalog, invoices with their line items, expenses, and the user and
// company records owned by the login and settings screens.
package models

import "time"

// DateLayout is the storage format of business dates (invoice and expense
// dates). Keeping them as plain YYYY-MM-DD strings makes equality, grouping
// and ordering behave the same on sqlite, postgres and mysql.
const DateLayout = "2006-01-02"

// FormatDate renders t as a ledger date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a ledger date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Company{},
		&Product{},
		&Invoice{},
		&InvoiceItem{},
		&Expense{},
	}
}
