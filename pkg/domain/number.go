package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a decimal value decoded leniently from the admin API.
// Money columns arrive as decimal strings ("12.50"), older endpoints send JSON
// numbers, and nullable columns send null. Values that do not parse leave
// Valid false instead of failing the whole response.
type Number struct {
	decimal.Decimal
	Valid bool
}

// NewNumber returns a valid Number holding f.
func NewNumber(f float64) Number {
	return Number{Decimal: decimal.NewFromFloat(f), Valid: true}
}

// UnmarshalJSON never returns an error; unparseable input yields an invalid Number.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(unq)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	*n = Number{Decimal: d, Valid: true}
	return nil
}

// MarshalJSON writes null for an invalid Number.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Decimal.String()), nil
}

// Present reports whether the value was sent and is non-zero.
func (n Number) Present() bool {
	return n.Valid && !n.IsZero()
}

// FormatUSD renders a currency value with two decimals. nil, NaN, infinities,
// non-numeric strings and invalid Numbers all render as "0.00".
func FormatUSD(v any) string {
	d, ok := toDecimal(v)
	if !ok {
		return "0.00"
	}
	return d.StringFixed(2)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case Number:
		return x.Decimal, x.Valid
	case *Number:
		if x == nil {
			return decimal.Zero, false
		}
		return x.Decimal, x.Valid
	case decimal.Decimal:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		return toDecimal(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt32(x), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		return parseDecimal(string(x))
	case string:
		return parseDecimal(x)
	}
	return decimal.Zero, false
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
