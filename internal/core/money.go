// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing rupee amounts from strings
// and converting between paisa and rupee representations.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToPaisa converts a decimal rupee string to paisa with half-up
// rounding on the third decimal place.
//
// It accepts a dot (12.34) or comma (12,34) as the decimal separator and
// ignores thousands separators written as apostrophes or spaces. Zero is a
// valid amount; negative values and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToPaisa("12.34")  -> 1234, nil
//	ParseDecimalToPaisa("12,345") -> 1235, nil (rounds up)
//	ParseDecimalToPaisa("0")      -> 0, nil
func ParseDecimalToPaisa(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("'", "", " ", "").Replace(s)
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
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	var fracPaisa int64
	if len(fracPart) > 0 {
		fracPaisa = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracPaisa += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracPaisa++
			}
		}
	}
	if iv > (math.MaxInt64-fracPaisa)/100 {
		return 0, ErrInvalidAmount
	}
	return iv*100 + fracPaisa, nil
}

// FromRupees converts a rupee float to Money, rounding half away from zero.
func FromRupees(rupees float64) Money {
	if math.IsNaN(rupees) || math.IsInf(rupees, 0) {
		return Money{}
	}
	return Money{Paisa: int64(math.Round(rupees * 100))}
}

// Rupees returns the rupee value as a float64 for display and XP arithmetic.
// Sums are kept in paisa to stay exact.
func (m Money) Rupees() float64 {
	return float64(m.Paisa) / 100.0
}
