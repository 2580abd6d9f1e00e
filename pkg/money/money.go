// Package money converts between human-entered decimal amounts and integer
// minor units (cents). All ledger arithmetic runs on the integer form.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidAmountFormat = errors.New("invalid amount format")

// ToMinorUnits parses a decimal amount string into cents. Spaces are
// stripped and commas are accepted as decimal separators. The fractional
// part is padded or truncated to two digits.
func ToMinorUnits(amount string) (int64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(amount), " ", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	if normalized == "" {
		return 0, ErrInvalidAmountFormat
	}

	negative := false
	if strings.HasPrefix(normalized, "-") {
		negative = true
		normalized = normalized[1:]
	}

	intPart := normalized
	fracPart := ""
	if dot := strings.Index(normalized, "."); dot >= 0 {
		intPart = normalized[:dot]
		fracPart = normalized[dot+1:]
		if fracPart == "" {
			return 0, ErrInvalidAmountFormat
		}
	}
	if intPart == "" || !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return 0, ErrInvalidAmountFormat
	}

	if len(fracPart) > 2 {
		fracPart = fracPart[:2]
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmountFormat
	}
	cents, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmountFormat
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return total, nil
}

// Float64ToMinorUnits rounds a floating-point amount to the nearest cent.
func Float64ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits formats cents as a signed decimal string with exactly two
// fraction digits, e.g. -1005 -> "-10.05".
func FromMinorUnits(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
