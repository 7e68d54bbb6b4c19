package services

import (
	"context"
	"sort"
	"strings"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/seize-billing/internal/config"
	"github.com/diewo77/seize-billing/internal/metrics"
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/pricing"
	"github.com/diewo77/seize-billing/internal/validation"
)

// InvoiceHeader holds the customer fields of an invoice.
type InvoiceHeader struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerGSTIN string `json:"customer_gstin"`
	// Date defaults to today when empty.
	Date string `json:"date"`
}

// ItemInput is one line as entered by the operator. When ProductID is set
// the name, price and tax rate are taken from the catalog at save time.
type ItemInput struct {
	ProductID   uint            `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

func (i ItemInput) line() pricing.Line {
	return pricing.Line{Quantity: i.Quantity, UnitPrice: i.Price, TaxRate: i.TaxRate}
}

// Lines converts items for the pricing calculator.
func Lines(items []ItemInput) []pricing.Line {
	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = item.line()
	}
	return lines
}

// InvoiceFilter narrows List. Empty fields do not filter.
type InvoiceFilter struct {
	From  string
	To    string
	Query string
	Limit int
}

// InvoiceService saves, edits and deletes invoices and keeps catalog stock
// in step with them.
type InvoiceService struct {
	db      *gorm.DB
	seq     *Sequencer
	ledger  config.LedgerConfig
	clock   clock.Clock
	metrics *metrics.Collector
}

func NewInvoiceService(db *gorm.DB, seq *Sequencer, ledger config.LedgerConfig, clk clock.Clock, m *metrics.Collector) *InvoiceService {
	return &InvoiceService{db: db, seq: seq, ledger: ledger, clock: clk, metrics: m}
}

// NextNumber returns the number the next saved invoice would get.
func (s *InvoiceService) NextNumber(ctx context.Context) (string, error) {
	return s.seq.Peek(ctx)
}

// Calculate returns the rounded totals for items without writing anything.
func (s *InvoiceService) Calculate(items []ItemInput) (pricing.Totals, error) {
	v := make(validation.Violations)
	validateItems(items, false, v)
	if err := v.Err(); err != nil {
		return pricing.Totals{}, err
	}
	return pricing.Calculate(Lines(items)).Round(), nil
}

// Create saves a new pending invoice, assigns its number and decrements
// stock for every item, all in one transaction.
func (s *InvoiceService) Create(ctx context.Context, h InvoiceHeader, items []ItemInput) (string, error) {
	if err := validateInvoice(h, items); err != nil {
		return "", err
	}
	var inv models.Invoice
	var moved stockMoves
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := snapshotItems(tx, items)
		if err != nil {
			return err
		}
		number, err := s.seq.Next(ctx, tx)
		if err != nil {
			return err
		}
		inv = models.Invoice{
			Number:    number,
			Status:    models.InvoiceStatusPending,
			CreatedBy: creator(ctx),
		}
		s.applyHeader(&inv, h)
		inv.Items = buildItems(items)
		applyTotals(&inv, items)
		if err := tx.Create(&inv).Error; err != nil {
			return persistence("inserting invoice "+number, err)
		}
		moved, err = moveStock(tx, quantities(items, -1))
		return err
	})
	if err != nil {
		return "", classify("create invoice", err)
	}
	s.metrics.InvoiceCreated()
	s.metrics.StockMoved(moved.in, moved.out)
	logger.Infof("invoice %s saved for %q by %q, total %s", inv.Number, inv.CustomerName, inv.CreatedBy, inv.Total.StringFixed(2))
	return inv.Number, nil
}

// LoadForEdit returns the invoice with its items in entry order.
func (s *InvoiceService) LoadForEdit(ctx context.Context, number string) (*models.Invoice, error) {
	inv, err := loadInvoice(s.db.WithContext(ctx), number)
	if err != nil {
		return nil, classify("load invoice", err)
	}
	if items := inv.ItemsTotal(); !items.Equal(inv.Total) {
		logger.Warningf("invoice %s: line totals sum to %s but total is %s", number, items.StringFixed(2), inv.Total.StringFixed(2))
	}
	return inv, nil
}

// Update replaces the header fields and items of an invoice. The number,
// status and creator are kept. Stock is reconciled only under the reverse
// stock policy.
func (s *InvoiceService) Update(ctx context.Context, number string, h InvoiceHeader, items []ItemInput) error {
	if err := validateInvoice(h, items); err != nil {
		return err
	}
	var moved stockMoves
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadInvoice(tx, number)
		if err != nil {
			return err
		}
		items, err := snapshotItems(tx, items)
		if err != nil {
			return err
		}
		if s.ledger.StockPolicy == config.StockReverse {
			deltas := quantities(items, -1)
			for _, old := range inv.Items {
				deltas[old.ProductName] += old.Quantity
			}
			if moved, err = moveStock(tx, deltas); err != nil {
				return err
			}
		}

		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return persistence("removing items of "+number, err)
		}
		newItems := buildItems(items)
		for i := range newItems {
			newItems[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&newItems).Error; err != nil {
			return persistence("inserting items of "+number, err)
		}

		s.applyHeader(inv, h)
		applyTotals(inv, items)
		err = tx.Model(inv).Omit(clause.Associations).Updates(map[string]any{
			"customer_name":  inv.CustomerName,
			"customer_phone": inv.CustomerPhone,
			"customer_gstin": inv.CustomerGSTIN,
			"date":           inv.Date,
			"subtotal":       inv.Subtotal,
			"tax_amount":     inv.TaxAmount,
			"total":          inv.Total,
		}).Error
		if err != nil {
			return persistence("updating invoice "+number, err)
		}
		return nil
	})
	if err != nil {
		return classify("update invoice", err)
	}
	s.metrics.StockMoved(moved.in, moved.out)
	logger.Infof("invoice %s updated by %q", number, creator(ctx))
	return nil
}

// Delete removes an invoice and its items permanently. Only admins may
// delete. Stock is restored only under the reverse stock policy.
func (s *InvoiceService) Delete(ctx context.Context, number string) error {
	actor, err := requireAdmin(ctx, "deleting an invoice")
	if err != nil {
		return err
	}
	var moved stockMoves
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := loadInvoice(tx, number)
		if err != nil {
			return err
		}
		if s.ledger.StockPolicy == config.StockReverse {
			deltas := make(map[string]int)
			for _, item := range inv.Items {
				deltas[item.ProductName] += item.Quantity
			}
			if moved, err = moveStock(tx, deltas); err != nil {
				return err
			}
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return persistence("removing items of "+number, err)
		}
		if err := tx.Delete(inv).Error; err != nil {
			return persistence("removing invoice "+number, err)
		}
		return nil
	})
	if err != nil {
		return classify("delete invoice", err)
	}
	s.metrics.InvoiceDeleted()
	s.metrics.StockMoved(moved.in, moved.out)
	logger.Infof("invoice %s deleted by %q", number, actor.Username)
	return nil
}

// SetStatus changes the status of an invoice. Under the strict status
// policy only pending invoices may become paid or cancelled.
func (s *InvoiceService) SetStatus(ctx context.Context, number string, status models.InvoiceStatus) error {
	if !status.Valid() {
		return errors.NotValidf("invoice status %q", status)
	}
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Where("invoice_no = ?", number).First(&inv).Error; err != nil {
			return notFound(err, "invoice %s", number)
		}
		if inv.Status == status {
			return nil
		}
		if s.ledger.StatusPolicy == config.StatusStrict && inv.Status != models.InvoiceStatusPending {
			return errors.NotValidf("status change %s -> %s", inv.Status, status)
		}
		if err := tx.Model(&inv).UpdateColumn("status", status).Error; err != nil {
			return persistence("updating status of "+number, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return classify("set invoice status", err)
	}
	if changed {
		s.metrics.StatusChanged(string(status))
		logger.Infof("invoice %s marked %s by %q", number, status, creator(ctx))
	}
	return nil
}

// List returns invoices matching f, newest date first.
func (s *InvoiceService) List(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	q = dateRange(q, f.From, f.To)
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(invoice_no) LIKE ? OR LOWER(customer_name) LIKE ?", like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var invoices []models.Invoice
	if err := q.Order("date DESC").Order("id DESC").Find(&invoices).Error; err != nil {
		return nil, persistence("listing invoices", err)
	}
	return invoices, nil
}

// Recent returns the n most recently created invoices.
func (s *InvoiceService) Recent(ctx context.Context, n int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(n).Find(&invoices).Error
	if err != nil {
		return nil, persistence("listing recent invoices", err)
	}
	return invoices, nil
}

func (s *InvoiceService) applyHeader(inv *models.Invoice, h InvoiceHeader) {
	inv.CustomerName = strings.TrimSpace(h.CustomerName)
	inv.CustomerPhone = strings.TrimSpace(h.CustomerPhone)
	inv.CustomerGSTIN = strings.ToUpper(strings.TrimSpace(h.CustomerGSTIN))
	inv.Date = h.Date
	if inv.Date == "" {
		inv.Date = models.FormatDate(s.clock.Now())
	}
}

func validateInvoice(h InvoiceHeader, items []ItemInput) error {
	v := make(validation.Violations)
	validation.Required("customer_name", h.CustomerName, v)
	validation.Date("date", h.Date, v)
	if len(items) == 0 {
		v["items"] = "required"
	}
	validateItems(items, true, v)
	return v.Err()
}

func validateItems(items []ItemInput, forSave bool, v validation.Violations) {
	for i, item := range items {
		price, rate := validation.Field("items", i, "price"), validation.Field("items", i, "tax_rate")
		validation.PositiveInt(validation.Field("items", i, "quantity"), item.Quantity, v)
		validation.NonNegativeDecimal(price, item.Price, v)
		validation.MaxPlaces(price, item.Price, pricing.CurrencyPlaces, v)
		validation.NonNegativeDecimal(rate, item.TaxRate, v)
		validation.MaxPlaces(rate, item.TaxRate, pricing.RatePlaces, v)
		if forSave && item.ProductID == 0 {
			validation.Required(validation.Field("items", i, "product_name"), item.ProductName, v)
		}
	}
}

// snapshotItems copies name, price and tax rate from the catalog for items
// that reference a product.
func snapshotItems(tx *gorm.DB, items []ItemInput) ([]ItemInput, error) {
	out := make([]ItemInput, len(items))
	for i, item := range items {
		item.ProductName = strings.TrimSpace(item.ProductName)
		if item.ProductID != 0 {
			var p models.Product
			if err := tx.First(&p, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, validation.Violations{validation.Field("items", i, "product_id"): "unknown_product"}.Err()
				}
				return nil, persistence("loading product", err)
			}
			item.ProductName, item.Price, item.TaxRate = p.Name, p.Price, p.TaxRate
		}
		out[i] = item
	}
	return out, nil
}

func buildItems(items []ItemInput) []models.InvoiceItem {
	out := make([]models.InvoiceItem, len(items))
	for i, item := range items {
		out[i] = models.InvoiceItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			TaxRate:     item.TaxRate,
			Total:       pricing.LineTotal(item.line()),
		}
	}
	return out
}

func applyTotals(inv *models.Invoice, items []ItemInput) {
	t := pricing.Calculate(Lines(items)).Round()
	inv.Subtotal, inv.TaxAmount, inv.Total = t.Subtotal, t.Tax, t.Total
}

func loadInvoice(db *gorm.DB, number string) (*models.Invoice, error) {
	var inv models.Invoice
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("invoice_no = ?", number).First(&inv).Error
	if err != nil {
		return nil, notFound(err, "invoice %s", number)
	}
	return &inv, nil
}

// quantities sums item quantities per product name, multiplied by sign.
func quantities(items []ItemInput, sign int) map[string]int {
	out := make(map[string]int, len(items))
	for _, item := range items {
		out[item.ProductName] += sign * item.Quantity
	}
	return out
}

// stockMoves counts units returned to and taken from stock.
type stockMoves struct {
	in, out int
}

// moveStock adds each delta to the stock of the products with that name.
// Names without a catalog entry are custom lines and are skipped.
func moveStock(tx *gorm.DB, deltas map[string]int) (stockMoves, error) {
	names := make([]string, 0, len(deltas))
	for name := range deltas {
		names = append(names, name)
	}
	sort.Strings(names)

	var moved stockMoves
	for _, name := range names {
		delta := deltas[name]
		if delta == 0 {
			continue
		}
		res := tx.Model(&models.Product{}).Where("name = ?", name).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return stockMoves{}, persistence("adjusting stock of "+name, res.Error)
		}
		if res.RowsAffected == 0 {
			logger.Warningf("no catalog product named %q, stock not adjusted", name)
			continue
		}
		if delta > 0 {
			moved.in += delta
		} else {
			moved.out -= delta
		}
	}
	return moved, nil
}

// validateRange rejects from/to bounds that are not YYYY-MM-DD dates.
func validateRange(from, to string) error {
	v := make(validation.Violations)
	validation.Date("from", from, v)
	validation.Date("to", to, v)
	return v.Err()
}

func dateRange(q *gorm.DB, from, to string) *gorm.DB {
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	return q
}
