// Package validation collects field level input problems.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

// Violations maps a field name to a machine readable reason.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when v is empty, otherwise an *Error satisfying
// errors.Is(err, errors.NotValid).
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Violations: v}
}

// Error carries the violations found for one request.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e.Violations[f]
	}
	return "validation failed (" + strings.Join(parts, ", ") + ")"
}

func (e *Error) Unwrap() error { return errors.NotValid }

// Field names a nested field, e.g. Field("items", 2, "quantity") is "items[2].quantity".
func Field(list string, index int, name string) string {
	return fmt.Sprintf("%s[%d].%s", list, index, name)
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

func RangeDecimal(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v[field] = "out_of_range"
	}
}

// MaxPlaces rejects values that carry more than places decimals. A field
// that already has a violation keeps it.
func MaxPlaces(field string, val decimal.Decimal, places int32, v Violations) {
	if _, bad := v[field]; bad {
		return
	}
	if !val.Equal(val.Truncate(places)) {
		v[field] = "too_many_decimals"
	}
}

// Date checks an optional YYYY-MM-DD value.
func Date(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v[field] = "invalid_date"
	}
}

// OneOf checks value against a closed list.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_choice"
}
