package services

import (
	"context"
	"strconv"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/pricing"
)

// ReportKind names a report understood by Run.
type ReportKind string

const (
	ReportDashboard  ReportKind = "dashboard"
	ReportSales      ReportKind = "sales"
	ReportProfitLoss ReportKind = "profitLoss"
	ReportStock      ReportKind = "stock"
	ReportGST        ReportKind = "gst"
	ReportExpense    ReportKind = "expense"
)

// ReportKinds lists every report in menu order.
var ReportKinds = []ReportKind{ReportDashboard, ReportSales, ReportProfitLoss, ReportStock, ReportGST, ReportExpense}

// ReportFilter narrows a report. Fields a report does not use are ignored.
type ReportFilter struct {
	From     string
	To       string
	Category models.ExpenseCategory
	LowOnly  bool
}

// Dashboard holds the headline figures of the home screen.
type Dashboard struct {
	Date          string          `json:"date"`
	TodaySales    decimal.Decimal `json:"today_sales"`
	InvoiceCount  int64           `json:"invoice_count"`
	LowStockCount int64           `json:"low_stock_count"`
	TodayExpenses decimal.Decimal `json:"today_expenses"`
}

// SalesDay is one row of the sales report.
type SalesDay struct {
	Date     string          `json:"date"`
	Invoices int64           `json:"invoices"`
	Total    decimal.Decimal `json:"total"`
}

// ProfitLoss compares all time sales with all time expenses.
type ProfitLoss struct {
	Sales    decimal.Decimal `json:"sales"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
	Profit   bool            `json:"profit"`
}

// Table is a report flattened for generic rendering.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ReportService computes read-only summaries. Nothing is cached; every call
// scans the current ledger.
type ReportService struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewReportService(db *gorm.DB, clk clock.Clock) *ReportService {
	return &ReportService{db: db, clock: clk}
}

func (s *ReportService) today() string {
	return models.FormatDate(s.clock.Now())
}

// sum scans a single COALESCE(SUM(col), 0) value.
func sum(q *gorm.DB, col string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := q.Select("COALESCE(SUM(" + col + "), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(pricing.CurrencyPlaces), nil
}

func (s *ReportService) invoices(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Invoice{}).Where("status <> ?", models.InvoiceStatusCancelled)
}

func (s *ReportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{Date: s.today()}
	var err error
	if d.TodaySales, err = sum(s.invoices(ctx).Where("date = ?", d.Date), "total"); err != nil {
		return nil, persistence("summing today's sales", err)
	}
	if err = s.invoices(ctx).Count(&d.InvoiceCount).Error; err != nil {
		return nil, persistence("counting invoices", err)
	}
	if err = s.db.WithContext(ctx).Model(&models.Product{}).Where("stock <= min_stock").Count(&d.LowStockCount).Error; err != nil {
		return nil, persistence("counting low stock", err)
	}
	expenses := s.db.WithContext(ctx).Model(&models.Expense{}).Where("date = ?", d.Date)
	if d.TodayExpenses, err = sum(expenses, "amount"); err != nil {
		return nil, persistence("summing today's expenses", err)
	}
	return d, nil
}

// Sales returns per day invoice counts and totals, newest day first.
// Cancelled invoices are excluded.
func (s *ReportService) Sales(ctx context.Context, f ReportFilter) ([]SalesDay, error) {
	rows, err := dateRange(s.invoices(ctx), f.From, f.To).
		Select("date, COUNT(*), COALESCE(SUM(total), 0)").
		Group("date").Order("date DESC").Rows()
	if err != nil {
		return nil, persistence("querying sales", err)
	}
	defer rows.Close()

	var days []SalesDay
	for rows.Next() {
		var d SalesDay
		if err := rows.Scan(&d.Date, &d.Invoices, &d.Total); err != nil {
			return nil, persistence("reading sales", err)
		}
		d.Total = d.Total.Round(pricing.CurrencyPlaces)
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("reading sales", err)
	}
	return days, nil
}

// ProfitLoss is non-cancelled sales minus every expense ever recorded.
func (s *ReportService) ProfitLoss(ctx context.Context) (*ProfitLoss, error) {
	sales, err := sum(s.invoices(ctx), "total")
	if err != nil {
		return nil, persistence("summing sales", err)
	}
	expenses, err := sum(s.db.WithContext(ctx).Model(&models.Expense{}), "amount")
	if err != nil {
		return nil, persistence("summing expenses", err)
	}
	net := sales.Sub(expenses)
	return &ProfitLoss{Sales: sales, Expenses: expenses, Net: net, Profit: !net.IsNegative()}, nil
}

// Stock lists the catalog, optionally only the low stock products.
func (s *ReportService) Stock(ctx context.Context, f ReportFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if f.LowOnly {
		q = q.Where("stock <= min_stock")
	}
	var products []models.Product
	if err := q.Order("name").Order("id").Find(&products).Error; err != nil {
		return nil, persistence("listing stock", err)
	}
	return products, nil
}

// GST lists the tax figures of every non-cancelled invoice.
func (s *ReportService) GST(ctx context.Context, f ReportFilter) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := dateRange(s.invoices(ctx), f.From, f.To).Order("date DESC").Order("invoice_no DESC").Find(&invoices).Error
	if err != nil {
		return nil, persistence("listing gst", err)
	}
	return invoices, nil
}

// Expenses lists expenses, optionally for one category.
func (s *ReportService) Expenses(ctx context.Context, f ReportFilter) ([]models.Expense, error) {
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

// Run computes the report of the given kind as a table.
func (s *ReportService) Run(ctx context.Context, kind ReportKind, f ReportFilter) (*Table, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}
	switch kind {
	case ReportDashboard:
		d, err := s.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		return &Table{
			Title:   "Dashboard " + d.Date,
			Columns: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Today's sales", pricing.FormatAmount(d.TodaySales)},
				{"Invoices", strconv.FormatInt(d.InvoiceCount, 10)},
				{"Low stock products", strconv.FormatInt(d.LowStockCount, 10)},
				{"Today's expenses", pricing.FormatAmount(d.TodayExpenses)},
			},
		}, nil

	case ReportSales:
		days, err := s.Sales(ctx, f)
		if err != nil {
			return nil, err
		}
		t := &Table{Title: "Sales", Columns: []string{"Date", "Invoices", "Total"}}
		for _, d := range days {
			t.Rows = append(t.Rows, []string{d.Date, strconv.FormatInt(d.Invoices, 10), pricing.FormatAmount(d.Total)})
		}
		return t, nil

	case ReportProfitLoss:
		pl, err := s.ProfitLoss(ctx)
		if err != nil {
			return nil, err
		}
		result := "Profit"
		if !pl.Profit {
			result = "Loss"
		}
		return &Table{
			Title:   "Profit & Loss",
			Columns: []string{"Item", "Amount"},
			Rows: [][]string{
				{"Total sales", pricing.FormatAmount(pl.Sales)},
				{"Total expenses", pricing.FormatAmount(pl.Expenses)},
				{result, pricing.FormatAmount(pl.Net.Abs())},
			},
		}, nil

	case ReportStock:
		products, err := s.Stock(ctx, f)
		if err != nil {
			return nil, err
		}
		t := &Table{Title: "Stock", Columns: []string{"Product", "HSN", "Price", "Tax %", "Price incl. tax", "Stock", "Min stock", "Status"}}
		for _, p := range products {
			status := "OK"
			if p.IsLowStock() {
				status = "LOW"
			}
			t.Rows = append(t.Rows, []string{
				p.Name, p.HSNCode, pricing.FormatAmount(p.Price), p.TaxRate.String(), pricing.FormatAmount(p.PriceWithTax()),
				strconv.Itoa(p.Stock), strconv.Itoa(p.MinStock), status,
			})
		}
		return t, nil

	case ReportGST:
		invoices, err := s.GST(ctx, f)
		if err != nil {
			return nil, err
		}
		t := &Table{Title: "GST", Columns: []string{"Invoice", "Date", "Customer", "GSTIN", "Taxable", "Tax", "Total"}}
		for _, inv := range invoices {
			t.Rows = append(t.Rows, []string{
				inv.Number, inv.Date, inv.CustomerName, inv.CustomerGSTIN,
				pricing.FormatAmount(inv.Subtotal), pricing.FormatAmount(inv.TaxAmount), pricing.FormatAmount(inv.Total),
			})
		}
		return t, nil

	case ReportExpense:
		expenses, err := s.Expenses(ctx, f)
		if err != nil {
			return nil, err
		}
		t := &Table{Title: "Expenses", Columns: []string{"Date", "Category", "Amount", "Description", "Created by"}}
		for _, e := range expenses {
			t.Rows = append(t.Rows, []string{e.Date, string(e.Category), pricing.FormatAmount(e.Amount), e.Description, e.CreatedBy})
		}
		return t, nil
	}
	return nil, errors.NotValidf("report kind %q", kind)
}
