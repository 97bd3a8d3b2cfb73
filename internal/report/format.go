package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders d with two decimals and thousands separators,
// e.g. "1,234.56".
func FormatAmount(d decimal.Decimal) string {
	rounded := d.Round(2)
	_, frac, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")

	whole := rounded.Abs().Truncate(0).BigInt()
	if !whole.IsInt64() {
		return rounded.StringFixed(2)
	}

	s := amountPrinter.Sprintf("%d", whole.Int64()) + "." + frac
	if rounded.IsNegative() {
		return "-" + s
	}
	return s
}

// FormatSummaryAmount is FormatAmount, except zero renders as "-".
func FormatSummaryAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return FormatAmount(d)
}
