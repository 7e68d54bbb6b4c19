package services

import (
	"context"
	"strings"

	"github.com/juju/clock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/validation"
)

// ExpenseInput is a new expense as entered by the operator.
type ExpenseInput struct {
	Category    models.ExpenseCategory `json:"category"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
	// Date defaults to today when empty.
	Date string `json:"date"`
}

// ExpenseFilter narrows List. Empty fields do not filter.
type ExpenseFilter struct {
	From     string
	To       string
	Category models.ExpenseCategory
}

// ExpenseService records money spent by the business.
type ExpenseService struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewExpenseService(db *gorm.DB, clk clock.Clock) *ExpenseService {
	return &ExpenseService{db: db, clock: clk}
}

func (s *ExpenseService) Create(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	v := make(validation.Violations)
	if !in.Category.Valid() {
		v["category"] = "invalid_choice"
	}
	validation.PositiveDecimal("amount", in.Amount, v)
	validation.Date("date", in.Date, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	e := models.Expense{
		Category:    in.Category,
		Amount:      in.Amount.Round(2),
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		CreatedBy:   creator(ctx),
	}
	if e.Date == "" {
		e.Date = models.FormatDate(s.clock.Now())
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, persistence("inserting expense", err)
	}
	logger.Infof("expense %s of %s recorded by %q", e.Category, e.Amount.StringFixed(2), e.CreatedBy)
	return &e, nil
}

// List returns expenses newest first.
func (s *ExpenseService) List(ctx context.Context, f ExpenseFilter) ([]models.Expense, error) {
	q := dateRange(s.db.WithContext(ctx).Model(&models.Expense{}), f.From, f.To)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var expenses []models.Expense
	if err := q.Order("date DESC").Order("id DESC").Find(&expenses).Error; err != nil {
		return nil, persistence("listing expenses", err)
	}
	return expenses, nil
}
