package validation

import (
	"testing"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidators(t *testing.T) {
	v := make(Violations)
	Required("customer_name", "   ", v)
	PositiveInt(Field("items", 0, "quantity"), 0, v)
	NonNegativeInt("min_stock", -1, v)
	PositiveDecimal("amount", decimal.Zero, v)
	NonNegativeDecimal("price", decimal.NewFromInt(-5), v)
	RangeDecimal("tax_rate", decimal.NewFromInt(101), decimal.Zero, decimal.NewFromInt(100), v)
	Date("date", "2026/01/01", v)
	OneOf("category", "Travel", []string{"Rent", "Other"}, v)

	assert.Equal(t, Violations{
		"customer_name":    "required",
		"items[0].quantity": "must_be_positive",
		"min_stock":        "must_not_be_negative",
		"amount":           "must_be_positive",
		"price":            "must_not_be_negative",
		"tax_rate":         "out_of_range",
		"date":             "invalid_date",
		"category":         "invalid_choice",
	}, v)
}

func TestValidatorsAcceptGoodInput(t *testing.T) {
	v := make(Violations)
	Required("customer_name", "Ravi", v)
	PositiveInt("quantity", 3, v)
	NonNegativeInt("min_stock", 0, v)
	PositiveDecimal("amount", decimal.RequireFromString("0.01"), v)
	NonNegativeDecimal("price", decimal.Zero, v)
	RangeDecimal("tax_rate", decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100), v)
	Date("date", "", v)
	Date("date", "2026-02-28", v)
	OneOf("category", "Rent", []string{"Rent", "Other"}, v)

	assert.True(t, v.Empty())
	assert.NoError(t, v.Err())
}

func TestErrIsNotValid(t *testing.T) {
	v := Violations{"quantity": "must_be_positive", "customer_name": "required"}
	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Equal(t, "validation failed (customer_name: required, quantity: must_be_positive)", err.Error())

	var verr *Error
	require.True(t, errors.As(errors.Annotate(err, "saving invoice"), &verr))
	assert.Equal(t, "required", verr.Violations["customer_name"])
}

func TestMaxPlaces(t *testing.T) {
	v := make(Violations)
	MaxPlaces("price", decimal.RequireFromString("0.333"), 2, v)
	MaxPlaces("tax_rate", decimal.RequireFromString("18.50"), 2, v)
	MaxPlaces("total", decimal.RequireFromString("12"), 2, v)
	assert.Equal(t, Violations{"price": "too_many_decimals"}, v)

	v = Violations{"price": "must_not_be_negative"}
	MaxPlaces("price", decimal.RequireFromString("-0.001"), 2, v)
	assert.Equal(t, "must_not_be_negative", v["price"])
}
