// Package normalize turns printed statement cells into comparable values.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount parses a currency cell such as "1,234.56". Thousands separators and
// whitespace are ignored. Malformed input yields zero: a single bad cell must
// not abort a statement.
func Amount(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
