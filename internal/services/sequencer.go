package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/models"
)

// Sequencer derives invoice numbers from the stored ledger. There is no
// counter: the next number is the highest numeric suffix among invoice
// numbers carrying the prefix, plus one.
type Sequencer struct {
	db     *gorm.DB
	prefix string
}

// NewSequencer returns a sequencer issuing numbers like SEZ0001.
func NewSequencer(db *gorm.DB, prefix string) *Sequencer {
	return &Sequencer{db: db, prefix: prefix}
}

// Prefix returns the configured invoice prefix.
func (s *Sequencer) Prefix() string { return s.prefix }

// Next computes the number for a new invoice using tx, so the scan and the
// insert that claims the number share a transaction.
func (s *Sequencer) Next(ctx context.Context, tx *gorm.DB) (string, error) {
	var numbers []string
	err := tx.WithContext(ctx).Model(&models.Invoice{}).
		Where("invoice_no LIKE ?", s.prefix+"%").
		Pluck("invoice_no", &numbers).Error
	if err != nil {
		return "", persistence("scanning invoice numbers", err)
	}
	highest := 0
	for _, n := range numbers {
		seq, ok := s.parse(n)
		if !ok {
			logger.Debugf("ignoring malformed invoice number %q", n)
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return s.Format(highest + 1), nil
}

// Peek returns the number the next saved invoice would get, without
// reserving it.
func (s *Sequencer) Peek(ctx context.Context) (string, error) {
	return s.Next(ctx, s.db)
}

// Format renders seq as prefix plus a zero padded four digit number.
func (s *Sequencer) Format(seq int) string {
	return fmt.Sprintf("%s%04d", s.prefix, seq)
}

// parse extracts the numeric suffix. Only the exact prefix followed by
// decimal digits is accepted.
func (s *Sequencer) parse(number string) (int, bool) {
	suffix, ok := strings.CutPrefix(number, s.prefix)
	if !ok || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}
