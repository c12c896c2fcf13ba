// Package money provides exact decimal arithmetic for token amounts.
package money

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Amount is an arbitrary-precision, non-negative-by-convention token
// quantity. It wraps decimal.Decimal so offers, balances, and cancellation
// residues never lose precision to float64 rounding.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{d: decimal.Zero}

// NewAmountFromString parses a base-10 decimal string such as "1.5" or
// "1000000" into an Amount.
func NewAmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

// NewAmountFromRaw builds an Amount from raw base units (e.g. lamports) and
// the mint's decimals count.
func NewAmountFromRaw(raw uint64, decimals uint8) Amount {
	return Amount{d: decimal.New(int64(raw), -int32(decimals))}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b. The result may be negative; callers that require a
// non-negative residue should check IsNegative first.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a.d.Cmp(b.d) <= 0 {
		return a
	}
	return b
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsNegative reports whether the amount is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a.d.Sign() < 0
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.d.Sign() > 0
}

// Cmp compares a to b, returning -1, 0, or 1.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(b.d)
}

// String renders the amount in plain decimal notation, no exponent.
func (a Amount) String() string {
	return a.d.String()
}

// MarshalFixed encodes the amount into a fixed 16-byte representation: a
// 4-byte flags word (sign bit in bit 31, base-10 scale in bits 16-23) and a
// 96-bit big-endian mantissa. This is the same flags-plus-96-bit-mantissa
// shape rust_decimal uses internally for Decimal::serialize(); it gives a
// deterministic, fixed-width wire encoding for amounts embedded in a
// transaction preimage without claiming byte-for-byte compatibility with
// rust_decimal's own field ordering.
func (a Amount) MarshalFixed() ([16]byte, error) {
	var out [16]byte

	coeff := a.d.Coefficient()
	sign := coeff.Sign() < 0
	if sign {
		coeff = new(big.Int).Neg(coeff)
	}

	scale := -a.d.Exponent()
	if scale < 0 {
		coeff = new(big.Int).Mul(coeff, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-scale)), nil))
		scale = 0
	}
	if scale > 28 {
		return out, fmt.Errorf("amount scale %d exceeds maximum of 28", scale)
	}

	mantissa := coeff.Bytes()
	if len(mantissa) > 12 {
		return out, fmt.Errorf("amount mantissa overflows 96 bits: %s", a.d.String())
	}

	flags := uint32(scale) << 16
	if sign {
		flags |= 1 << 31
	}
	binary.BigEndian.PutUint32(out[0:4], flags)
	copy(out[16-len(mantissa):], mantissa)

	return out, nil
}
