// Package numeric provides the one arbitrary-precision decimal type that
// every BRC-20 token quantity flows through. Binary floating point never
// touches an amount anywhere in this module; all parsing, comparison, and
// arithmetic goes through Amount.
package numeric

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Amount is an exact, non-negative decimal quantity. It keeps the scale it
// was parsed with; it is not rescaled to a token's decimals.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{d: decimal.Zero}

var (
	ErrEmpty            = errors.New("amount: empty string")
	ErrLeadingSign       = errors.New("amount: leading '+' or '-' is not allowed")
	ErrNotNumeric        = errors.New("amount: not a valid decimal number")
	ErrNegative          = errors.New("amount: negative amounts are not allowed")
	ErrScientificNotation = errors.New("amount: scientific notation is not allowed")
)

// Parse parses s as a non-negative decimal number. It rejects empty
// strings, leading '+', negative numbers, and scientific notation
// ("1e10"); everything else that decimal.NewFromString accepts is
// accepted here.
func Parse(s string) (Amount, error) {
	if s == "" {
		return Amount{}, errors.WithStack(ErrEmpty)
	}
	if s[0] == '+' || s[0] == '-' {
		if s[0] == '-' {
			return Amount{}, errors.WithStack(ErrNegative)
		}
		return Amount{}, errors.WithStack(ErrLeadingSign)
	}
	if strings.ContainsAny(s, "eE") {
		return Amount{}, errors.WithStack(ErrScientificNotation)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, errors.Wrap(ErrNotNumeric, err.Error())
	}
	if d.IsNegative() {
		return Amount{}, errors.WithStack(ErrNegative)
	}
	return Amount{d: d}, nil
}

// FromDecimalParts builds an Amount directly from an integer value scaled
// by 10^-scale, used by the ledger store when hydrating rows.
func FromDecimalParts(unscaled int64, scale int32) Amount {
	return Amount{d: decimal.New(unscaled, -scale)}
}

func (a Amount) Cmp(b Amount) int        { return a.d.Cmp(b.d) }
func (a Amount) GreaterThan(b Amount) bool { return a.d.GreaterThan(b.d) }
func (a Amount) LessThan(b Amount) bool    { return a.d.LessThan(b.d) }
func (a Amount) Equal(b Amount) bool       { return a.d.Equal(b.d) }
func (a Amount) IsZero() bool              { return a.d.IsZero() }
func (a Amount) IsPositive() bool          { return a.d.IsPositive() }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.d.LessThan(b.d) {
		return a
	}
	return b
}

// FractionalDigits returns the number of digits to the right of the
// decimal point as the amount was written when parsed, trailing zeros
// included ("100.0" has 1), not as String renders it.
func (a Amount) FractionalDigits() uint16 {
	exp := a.d.Exponent()
	if exp >= 0 {
		return 0
	}
	return uint16(-exp)
}

// String returns the canonical decimal representation (no exponent,
// trailing fractional zeros removed: "100.0" renders as "100").
func (a Amount) String() string {
	return a.d.String()
}

// Decimal exposes the underlying decimal.Decimal for storage-layer callers
// that need to bind it to a NUMERIC column.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// FromDecimal wraps an already-parsed decimal.Decimal value, e.g. one
// scanned back out of a NUMERIC column by the Postgres driver.
func FromDecimal(d decimal.Decimal) Amount { return Amount{d: d} }
