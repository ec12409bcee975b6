package voucher

import (
	"strings"

	"github.com/shopspring/decimal"
)

// quantityOf returns the coerced quantity, or 1 when the variant has no
// quantity column.
func quantityOf(t DocType, item LineItem) decimal.Decimal {
	if !t.HasQuantity() {
		return decimal.NewFromInt(1)
	}
	return item.Quantity.Decimal()
}

// LineAmount returns quantity × price for the item under variant t
func LineAmount(t DocType, item LineItem) decimal.Decimal {
	return quantityOf(t, item).Mul(item.Price.Decimal())
}

// Total sums the line amounts of items. It holds no state, so the same
// items in any order give the same result.
func Total(t DocType, items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineAmount(t, item))
	}
	return sum
}

// FormatMoney formats d with exactly two decimals and comma thousands
// separators, e.g. 1,500.00.
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(2).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, decPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(decPart)
	return b.String()
}
