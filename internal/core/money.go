// Package core provides money parsing and handling utilities.
//
// Amounts are signed decimals: positive values are income, negative values
// are expenses. The currency code attached to a ledger is a display label
// only and never converts amounts.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

func init() {
	// Backups store amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"INR": "₹",
}

// ParseAmount converts a user-entered decimal string to a signed amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Thousands separators are not supported.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("-7")     -> -7
//	ParseAmount("1.2.3")  -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(digits, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range digits {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if digits == "." {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SignedAmount applies the kind to a magnitude: expenses are negative.
func SignedAmount(magnitude decimal.Decimal, kind Kind) decimal.Decimal {
	magnitude = magnitude.Abs()
	if kind == Expense {
		return magnitude.Neg()
	}
	return magnitude
}

// CurrencySymbol returns the display symbol for a currency code, if known.
func CurrencySymbol(code string) (string, bool) {
	sym, ok := currencySymbols[strings.ToUpper(code)]
	return sym, ok
}

// FormatMoney renders amount for display, e.g. "-$12.50" or "CHF 3.00".
func FormatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	value := amount.Abs().StringFixed(2)
	if sym, ok := CurrencySymbol(currency); ok {
		return sign + sym + value
	}
	return sign + strings.ToUpper(currency) + " " + value
}
