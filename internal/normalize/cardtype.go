package normalize

import (
	"strings"

	"github.com/cleared-dev/cardrecon/internal/model"
)

// CardType maps a printed card label ("POS - Master Card", "Visa") to the
// canonical vocabulary. Unknown labels pass through upper-cased. Applying it
// to an already canonical value is a no-op.
func CardType(raw string) model.CardType {
	s := strings.ReplaceAll(raw, " Card", "")
	s = strings.ReplaceAll(s, "POS - ", "")
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "MASTER" {
		return model.CardMastercard
	}
	return model.CardType(s)
}
