package common

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/squareup/unsaferow/errors"
)

// Numeric is an arbitrary precision decimal as held by the engine. Unlike
// decimal.Decimal it can hold NaN.
type Numeric struct {
	dec decimal.Decimal
	nan bool
}

// NaNNumeric is the NUMERIC not-a-number value.
var NaNNumeric = Numeric{nan: true}

func NewNumeric(dec decimal.Decimal) Numeric {
	return Numeric{dec: dec}
}

func NewNumericFromString(s string) (Numeric, error) {
	if strings.EqualFold(strings.TrimSpace(s), "NaN") {
		return NaNNumeric, nil
	}
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return Numeric{}, errors.WithStack(errors.NewInvalidTextRepresentationError("numeric", s))
	}
	return Numeric{dec: dec}, nil
}

func NewNumericFromInt64(i int64) Numeric {
	return Numeric{dec: decimal.NewFromInt(i)}
}

func NewNumericFromFloat64(f float64) Numeric {
	return Numeric{dec: decimal.NewFromFloat(f)}
}

func (n Numeric) IsNaN() bool {
	return n.nan
}

func (n Numeric) Decimal() decimal.Decimal {
	return n.dec
}

func (n Numeric) CompareTo(other Numeric) int {
	switch {
	case n.nan && other.nan:
		return 0
	case n.nan:
		// NaN sorts above every other value
		return 1
	case other.nan:
		return -1
	}
	return n.dec.Cmp(other.dec)
}

// UnscaledString renders the value rounded to scale fractional digits with the decimal
// point removed, e.g. 123.45 at scale 2 is "12345" and -0.5 at scale 3 is "-500".
// Rounding is half away from zero. The value must not be NaN.
func (n Numeric) UnscaledString(scale int) string {
	return n.dec.Round(int32(scale)).Shift(int32(scale)).StringFixed(0)
}

func (n Numeric) String() string {
	if n.nan {
		return "NaN"
	}
	return n.dec.String()
}
