package voucher

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

// thaiDigits folds Thai numerals (๐-๙) to ASCII
var thaiDigits = strings.NewReplacer(
	"๐", "0", "๑", "1", "๒", "2", "๓", "3", "๔", "4",
	"๕", "5", "๖", "6", "๗", "7", "๘", "8", "๙", "9",
)

// Bounds on coerced input. Values outside them coerce to 0.
const (
	maxIntegerDigits  = 18
	maxFractionDigits = 18
	maxExponent       = 15
)

// MaxAmount is the largest value Coerce returns; anything larger is 0
var MaxAmount = decimal.New(1, 15)

// Coerce converts operator text to a non-negative decimal.
//
// The longest leading numeric prefix is parsed, so "12abc" is 12 and
// "1,500" is 1. Anything without a numeric prefix is 0, and negative
// values clamp to 0. Fullwidth and Thai digits are accepted. Values above
// MaxAmount, or with an exponent beyond ±15, coerce to 0.
func Coerce(raw string) decimal.Decimal {
	s := thaiDigits.Replace(width.Narrow.String(strings.TrimSpace(raw)))
	mantissa, exp, ok := numericPrefix(s)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(mantissa)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	d = d.Shift(int32(exp))
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero
	}
	return d
}

// numericPrefix splits the longest prefix of s matching
// [+-]?\d*(\.\d*)?([eE][+-]?\d+)? into its mantissa and exponent. ok is
// false when there is no mantissa digit or the prefix is out of bounds.
// Fraction digits past maxFractionDigits are dropped.
func numericPrefix(s string) (mantissa string, exp int, ok bool) {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intPart := strings.TrimLeft(s[intStart:i], "0")
	if len(intPart) > maxIntegerDigits {
		return "", 0, false
	}
	digits := i - intStart

	var frac string
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > i+1 {
			frac = s[i+1 : j]
			digits += len(frac)
			i = j
		}
	}
	if digits == 0 {
		return "", 0, false
	}
	if len(frac) > maxFractionDigits {
		frac = frac[:maxFractionDigits]
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		expNeg := false
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			expNeg = s[j] == '-'
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			if exp <= maxExponent {
				exp = exp*10 + int(s[j]-'0')
			}
			j++
		}
		if j > expStart {
			if exp > maxExponent {
				return "", 0, false
			}
			if expNeg {
				exp = -exp
			}
		} else {
			exp = 0
		}
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if intPart == "" {
		b.WriteByte('0')
	}
	b.WriteString(intPart)
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String(), exp, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
