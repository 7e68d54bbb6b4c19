package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/seize-billing/internal/config"
	"github.com/diewo77/seize-billing/internal/models"
)

func insertNumbers(t *testing.T, f *fixture, numbers ...string) {
	t.Helper()
	for _, n := range numbers {
		require.NoError(t, f.db.Create(&models.Invoice{Number: n, CustomerName: "c", Date: testToday}).Error)
	}
}

func TestSequencerEmptyLedger(t *testing.T) {
	f := newFixture(t, config.DefaultLedger())
	got, err := f.seq.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SEZ0001", got)
}

func TestSequencerUsesHighestNumber(t *testing.T) {
	f := newFixture(t, config.DefaultLedger())
	insertNumbers(t, f, "SEZ0002", "SEZ0007", "SEZ0005")
	require.NoError(t, f.db.Where("invoice_no IN ?", []string{"SEZ0002", "SEZ0005"}).Delete(&models.Invoice{}).Error)

	got, err := f.seq.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SEZ0008", got)
}

func TestSequencerIgnoresMalformedNumbers(t *testing.T) {
	f := newFixture(t, config.DefaultLedger())
	insertNumbers(t, f, "SEZ0003", "MANUAL-1", "SEZ12A", "SEZ", "sez0099", "SEZ-0050", "XSEZ0200")

	got, err := f.seq.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SEZ0004", got)
}

func TestSequencerPeekDoesNotReserve(t *testing.T) {
	f := newFixture(t, config.DefaultLedger())
	first, err := f.seq.Peek(context.Background())
	require.NoError(t, err)
	second, err := f.seq.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSequencerCustomPrefixAndOverflow(t *testing.T) {
	ledger := config.DefaultLedger()
	ledger.InvoicePrefix = "INV"
	f := newFixture(t, ledger)
	insertNumbers(t, f, "INV9999", "SEZ12000")

	got, err := f.seq.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV10000", got)
	assert.Equal(t, "INV0042", f.seq.Format(42))
}

func TestSequencerParse(t *testing.T) {
	s := NewSequencer(nil, "SEZ")
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"SEZ0001", 1, true},
		{"SEZ0420", 420, true},
		{"SEZ12345", 12345, true},
		{"SEZ", 0, false},
		{"SEZ12A", 0, false},
		{"SEZ+12", 0, false},
		{"SEZ 12", 0, false},
		{"MANUAL-1", 0, false},
	}
	for _, tt := range tests {
		got, ok := s.parse(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
