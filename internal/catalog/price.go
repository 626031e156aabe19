package catalog

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CurrencyMarker prefixes every price shown in the products table.
const CurrencyMarker = "R$"

// Accepted prices have at most maxPriceDigits integer digits and an exponent
// no smaller than minPriceExponent. Both are checked before any conversion,
// since decimal expands 10^exp in full.
const (
	maxPriceDigits   = 15
	minPriceExponent = -100
)

// PriceResult is the outcome of parsing user-typed price text.
// The zero value is an invalid result.
type PriceResult struct {
	value float64
	valid bool
}

// ValidPrice wraps a successfully parsed price.
func ValidPrice(v float64) PriceResult {
	return PriceResult{value: v, valid: true}
}

// InvalidPrice is returned for text that is not a decimal number.
func InvalidPrice() PriceResult {
	return PriceResult{}
}

// Value returns the parsed price and whether the parse succeeded.
func (r PriceResult) Value() (float64, bool) {
	return r.value, r.valid
}

func (r PriceResult) IsValid() bool {
	return r.valid
}

// ParsePrice accepts prices typed in comma-decimal notation ("199,99") as well as
// period notation. All whitespace is removed and the first comma becomes the decimal
// point. Empty or non-numeric text yields InvalidPrice, as do values of 10^15
// or more.
func ParsePrice(text string) PriceResult {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	normalized = strings.Replace(normalized, ",", ".", 1)

	d, err := decimal.NewFromString(normalized)
	if err != nil || !priceInRange(d) {
		return InvalidPrice()
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return InvalidPrice()
	}
	return ValidPrice(v)
}

func priceInRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	return exp >= minPriceExponent && int64(d.NumDigits())+exp <= maxPriceDigits
}

// FormatPrice renders v with exactly two decimals and a comma separator.
// No thousands separator is applied: 1234.5 -> "1234,50".
func FormatPrice(v float64) string {
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}

// DisplayPrice is the table rendering of a price, e.g. "R$ 2,50".
func DisplayPrice(v float64) string {
	return CurrencyMarker + " " + FormatPrice(v)
}

// EditPrice renders a stored price for the edit form using the shortest
// representation of the number, e.g. 5.5 -> "5,5".
func EditPrice(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
