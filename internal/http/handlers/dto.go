package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned while decoding a price that is not a number
// below maxPrice.
var ErrInvalidPrice = errors.New("invalid price")

// Prices must stay below 10^15. String exponents are bounded before the
// decimal is converted, since conversion expands 10^exp in full.
const (
	maxPriceDigits   = 15
	minPriceExponent = -100
)

var maxPrice = math.Pow10(maxPriceDigits)

// Price accepts a JSON number or a string in either "199.99" or "199,99" notation.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := parsePriceString(s)
		if err != nil {
			return err
		}
		*p = Price(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, data)
	}
	if err := checkPrice(f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

func parsePriceString(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidPrice, s)
	}
	exp := int64(d.Exponent())
	if exp < minPriceExponent || int64(d.NumDigits())+exp > maxPriceDigits {
		return 0, fmt.Errorf("%w %q: out of range", ErrInvalidPrice, s)
	}
	f := d.InexactFloat64()
	return f, checkPrice(f)
}

func checkPrice(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= maxPrice {
		return fmt.Errorf("%w %v: out of range", ErrInvalidPrice, f)
	}
	return nil
}

type ProductRequest struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Price    Price  `json:"price" validate:"gte=0"`
}

type ProductResponse struct {
	Id       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type CreatedResponse struct {
	Id int `json:"id"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
