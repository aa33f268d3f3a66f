package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary value to 2 decimal places using
// round-half-to-even, the policy applied at every display and report
// boundary.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// FormatAmount renders a monetary value thousands-grouped with two
// decimal places, e.g. 4855 -> "4,855.00".
func FormatAmount(d decimal.Decimal) string {
	s := Round2(d).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// FormatPKR renders a monetary value for display with the currency
// prefix, e.g. "PKR 147,972.00".
func FormatPKR(d decimal.Decimal) string {
	return "PKR " + FormatAmount(d)
}
