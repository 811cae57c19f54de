package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Int is an integer sent either as a JSON number or as a numeric string.
// Anything else, including fractional values, decodes as 0.
type Int int64

func (i *Int) UnmarshalJSON(b []byte) error {
	*i = 0
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(b)), `"`))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*i = Int(n)
		return nil
	}
	if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
		*i = Int(d.IntPart())
	}
	return nil
}

// Timestamp is a time that decodes to zero from null, "" or an unparseable
// value instead of failing the record around it.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = Timestamp{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return nil
}
