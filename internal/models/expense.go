package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory is the fixed list of expense kinds.
type ExpenseCategory string

const (
	ExpenseRent        ExpenseCategory = "Rent"
	ExpenseSalary      ExpenseCategory = "Salary"
	ExpenseElectricity ExpenseCategory = "Electricity"
	ExpenseTransport   ExpenseCategory = "Transport"
	ExpenseMarketing   ExpenseCategory = "Marketing"
	ExpenseOther       ExpenseCategory = "Other"
)

// ExpenseCategories lists the categories in display order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseRent, ExpenseSalary, ExpenseElectricity, ExpenseTransport, ExpenseMarketing, ExpenseOther,
}

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is money spent by the business. It is independent of invoices and
// only feeds the expense and profit & loss reports.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Category    ExpenseCategory `gorm:"size:50;not null;index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Date        string          `gorm:"size:10;index;not null" json:"date"`
	CreatedBy   string          `gorm:"size:100" json:"created_by"`
}
