// Package core implements the balance and aggregation engine: movement
// normalization, account reconciliation, categorized aggregation and
// savings projection. Everything here is pure computation over
// in-memory snapshots; persistence and presentation live elsewhere.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string to an amount. It accepts both
// dot (12.34) and comma (12,34) separators and a leading sign; the
// sign is preserved so that import policies can decide what a negative
// amount means. Thousands separators are not supported.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("-45,00") -> -45.00
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatEuros renders an amount as "1234,56 €" for the UI and exports.
func FormatEuros(d decimal.Decimal) string {
	s := d.StringFixed(2)
	s = strings.ReplaceAll(s, ".", ",")
	return fmt.Sprintf("%s €", s)
}
