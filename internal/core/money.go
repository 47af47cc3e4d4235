// Package core provides the pure domain model: money handling, dates, and the
// monthly budget period calculation.
//
// This file contains parsing between string amounts and cents. All arithmetic
// is done in cents; float conversion exists only for display and wire formats.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Only positive amounts are valid; this is the parser for
// manually logged values (expenses, planned amounts, goal targets).
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseBankAmount converts a bank transaction amount to cents. Bank feeds send
// amounts as formatted strings ("£1,234.56", "-12.50 EUR"); every character
// except digits, dot, and minus is stripped before parsing. Negative values
// are preserved (refunds, reversals).
func ParseBankAmount(s string) (int64, error) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Round half away from zero to the cent.
	cents := int64(f*100 + 0.5)
	if f < 0 {
		cents = int64(f*100 - 0.5)
	}
	return cents, nil
}

// Units returns the major-unit value as a float64 for display and JSON output.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// FormatCents renders cents as a plain decimal string, e.g. 1250 -> "12.50".
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
