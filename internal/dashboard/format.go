package dashboard

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return humanize.Comma(int64(n))
}

// FormatCompact formats a large value with T/B/M/K suffixes.
func FormatCompact(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatMoney formats a price to two decimals behind the currency prefix,
// e.g. "₹3500.50".
func FormatMoney(currency string, d decimal.Decimal) string {
	return currency + d.StringFixed(2)
}

// FormatOptional is FormatMoney for a nullable value; absent values render
// as an em dash.
func FormatOptional(currency string, d decimal.NullDecimal) string {
	if !d.Valid {
		return "—"
	}
	return FormatMoney(currency, d.Decimal)
}

// FormatChange formats a percent change with an explicit sign: "+0.50%"
// when change >= 0, "-1.25%" otherwise. A negative change that rounds to
// zero keeps its sign ("-0.00%").
func FormatChange(change decimal.Decimal) string {
	s := change.StringFixed(2)
	if IsUp(change) {
		return "+" + s + "%"
	}
	if !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s + "%"
}

// IsUp reports whether a change is styled as up (zero counts as up).
func IsUp(change decimal.Decimal) bool {
	return !change.IsNegative()
}

// BadgeClass derives the styling class of a status badge from its text:
// lower-cased, with runs of whitespace joined by "-".
func BadgeClass(status string) string {
	return strings.Join(strings.Fields(strings.ToLower(status)), "-")
}
