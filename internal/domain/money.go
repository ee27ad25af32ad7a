package domain

import "github.com/shopspring/decimal"

// Prices are stored as DECIMAL(12,2).
const (
	PriceScale            = 2
	MaxPriceIntegerDigits = 10
)

var priceLimit = decimal.New(1, MaxPriceIntegerDigits)

// PriceFits reports whether p survives storage unchanged.
func PriceFits(p decimal.Decimal) bool {
	return p.Equal(p.Truncate(PriceScale)) && p.Abs().LessThan(priceLimit)
}

// ValidCurrency accepts three ASCII letters in either case, e.g. "XAF".
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
