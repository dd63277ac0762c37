// Package fixedpoint implements the scaled-integer arithmetic the matching
// engine uses for prices and quantities. There is no floating point anywhere
// in this package: every value is a non-negative integer scaled by 10^8,
// and every arithmetic operation is checked for overflow before it returns.
package fixedpoint

import (
	"errors"
	"math/bits"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the fixed-point scaling factor: values are integers representing
// reals in units of 10^-8.
const Scale = 100_000_000

// Digits is the number of fractional digits the scale factor implies.
const Digits = 8

// Scaled is a non-negative fixed-point value, an integer count of 10^-8
// units.
type Scaled uint64

// MaxValue is the largest integer (whole-unit) value representable without
// overflowing a Scaled.
const MaxValue = ^uint64(0) / Scale

var (
	// ErrInvalidInput is returned when a decimal string does not match
	// [0-9]+(\.[0-9]{0,8})?.
	ErrInvalidInput = errors.New("fixedpoint: invalid input")
	// ErrOverflow is returned when a conversion or arithmetic result would
	// exceed the 64-bit scaled range.
	ErrOverflow = errors.New("fixedpoint: overflow")
	// ErrDivisionByZero is returned by CheckedDiv when the divisor is zero.
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
	// ErrUnderflow is returned by CheckedSub when b > a.
	ErrUnderflow = errors.New("fixedpoint: underflow")
)

// ToScaled parses a decimal string of the form [0-9]+(\.[0-9]{0,8})? into a
// Scaled value. Any other form, including signs, exponents, or more than
// eight fractional digits, is ErrInvalidInput.
func ToScaled(s string) (Scaled, error) {
	if !isValidDecimalString(s) {
		return 0, ErrInvalidInput
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidInput
	}

	scaled := d.Mul(decimal.NewFromInt(int64(Scale)))
	if !scaled.IsInteger() {
		// Cannot happen given the regex-shaped input (at most 8 fractional
		// digits), but guards against a decimal library surprise.
		scaled = scaled.Round(0)
	}
	if scaled.Sign() < 0 || scaled.GreaterThan(decimal.NewFromUint64(^uint64(0))) {
		return 0, ErrOverflow
	}
	return Scaled(scaled.BigInt().Uint64()), nil
}

// isValidDecimalString reports whether s matches [0-9]+(\.[0-9]{0,8})?.
func isValidDecimalString(s string) bool {
	if s == "" {
		return false
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || !isDigits(intPart) {
		return false
	}
	if !hasDot {
		return true
	}
	if len(fracPart) > Digits {
		return false
	}
	return fracPart == "" || isDigits(fracPart)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FromScaled renders a Scaled value as a decimal string with exactly eight
// fractional digits. Trailing zeros are never trimmed.
func FromScaled(v Scaled) string {
	whole := uint64(v) / Scale
	frac := uint64(v) % Scale
	fracStr := strconv.FormatUint(frac, 10)
	if pad := Digits - len(fracStr); pad > 0 {
		fracStr = strings.Repeat("0", pad) + fracStr
	}
	return strconv.FormatUint(whole, 10) + "." + fracStr
}

// FromScaledTrimmed renders a Scaled value as a decimal string with trailing
// fractional zeros (and a bare trailing dot) removed. It is never used for
// the canonical wire format or the state root, only for human-facing output.
func FromScaledTrimmed(v Scaled) string {
	s := FromScaled(v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		s = "0"
	}
	return s
}

// CheckedMul multiplies two scaled reals (a*b, then divides by Scale to
// correct for the double scaling), rounding half away from zero. It returns
// ErrOverflow if the exact 128-bit product, once rescaled, would not fit in
// a Scaled.
func CheckedMul(a, b Scaled) (Scaled, error) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi >= Scale {
		return 0, ErrOverflow
	}
	q, r := bits.Div64(hi, lo, Scale)
	return roundHalfAwayFromZero(q, r, Scale)
}

// CheckedDiv divides two scaled reals (a/b, pre-scaled by Scale so the
// result is itself a Scaled value), rounding half away from zero. It
// returns ErrDivisionByZero if b is zero and ErrOverflow if the result
// would not fit in a Scaled.
func CheckedDiv(a, b Scaled) (Scaled, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	hi, lo := bits.Mul64(uint64(a), Scale)
	if hi >= uint64(b) {
		return 0, ErrOverflow
	}
	q, r := bits.Div64(hi, lo, uint64(b))
	return roundHalfAwayFromZero(q, r, uint64(b))
}

// roundHalfAwayFromZero rounds a quotient q with remainder r (over divisor
// div) to the nearest integer, ties rounding away from zero. All operands
// are non-negative, so "away from zero" is simply "up". Compares r against
// div/2 rather than computing r*2, since div can exceed 2^63 (CheckedDiv
// passes the caller-supplied b) and r*2 would silently wrap in that case.
func roundHalfAwayFromZero(q, r, div uint64) (Scaled, error) {
	roundUp := r > div/2 || (div%2 == 0 && r == div/2)
	if roundUp {
		if q == ^uint64(0) {
			return 0, ErrOverflow
		}
		q++
	}
	return Scaled(q), nil
}

// CheckedAdd adds two scaled values, returning ErrOverflow on wraparound.
func CheckedAdd(a, b Scaled) (Scaled, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedSub subtracts two scaled values, returning ErrUnderflow if b > a.
func CheckedSub(a, b Scaled) (Scaled, error) {
	if b > a {
		return 0, ErrUnderflow
	}
	return a - b, nil
}
