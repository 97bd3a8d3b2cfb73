// Package categorize groups a matching result by card network and numbers
// the report attachments.
package categorize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cardrecon/internal/matcher"
	"github.com/cleared-dev/cardrecon/internal/model"
	"github.com/cleared-dev/cardrecon/internal/normalize"
)

// Side is the ledger a record came from.
type Side string

const (
	SideBank  Side = "bank"
	SideHotel Side = "hotel"
)

// Status is the reconciliation outcome of a record.
type Status string

const (
	StatusReconciled   Status = "reconciled"
	StatusUnreconciled Status = "unreconciled"
)

// Key identifies one bucket.
type Key struct {
	CardType model.CardType
	Side     Side
	Status   Status
}

// Bucket holds the records of one key and their totals. Only the slice
// matching Side is populated. Amount is the gross amount for bank buckets and
// the credited amount for hotel buckets.
type Bucket struct {
	Key
	Bank       []model.BankTransaction
	Hotel      []model.HotelTransaction
	Amount     decimal.Decimal
	Commission decimal.Decimal
	Net        decimal.Decimal
}

// Count returns the number of records in the bucket.
func (b *Bucket) Count() int {
	if b.Side == SideBank {
		return len(b.Bank)
	}
	return len(b.Hotel)
}

// Attachment is one numbered report section.
type Attachment struct {
	Number int
	Bucket *Bucket
}

// Label returns "Attachment N".
func (a Attachment) Label() string { return fmt.Sprintf("Attachment %d", a.Number) }

// Titles returns the three heading lines of the attachment.
func (a Attachment) Titles() []string {
	ct := a.Bucket.CardType
	heading := fmt.Sprintf("%s Settlements", ct)
	if a.Bucket.Side == SideBank {
		heading = fmt.Sprintf("%s Merchant Transactions", ct)
	}

	var status string
	switch {
	case a.Bucket.Status == StatusReconciled:
		status = fmt.Sprintf("Reconciled %s Transactions", ct)
	case a.Bucket.Side == SideBank:
		status = fmt.Sprintf("Unreconciled %s Transactions", ct)
	default:
		status = fmt.Sprintf("Unreconciled / Outstanding %s Transactions", ct)
	}
	return []string{fmt.Sprintf("Attachment - %d", a.Number), heading, status}
}

// Summary holds the scalar aggregates of a run.
type Summary struct {
	BankEntries  int
	BankBalance  decimal.Decimal // sum of all gross amounts
	HotelEntries int
	HotelBalance decimal.Decimal // sum of all credited amounts
	Reconciled   int             // pairs
	Unreconciled int             // leftover records on both sides
}

// Categorization is the grouped form of a matching result.
type Categorization struct {
	Universe    []model.CardType
	Attachments []Attachment
	Summary     Summary

	buckets map[Key]*Bucket
}

// Bucket returns the bucket for key, or nil when the card type is not in the
// universe.
func (c *Categorization) Bucket(ct model.CardType, side Side, status Status) *Bucket {
	return c.buckets[Key{CardType: ct, Side: side, Status: status}]
}

// AttachmentFor returns the attachment number of a bucket, or 0.
func (c *Categorization) AttachmentFor(ct model.CardType, side Side, status Status) int {
	for _, a := range c.Attachments {
		if a.Bucket.Key == (Key{CardType: ct, Side: side, Status: status}) {
			return a.Number
		}
	}
	return 0
}

// Options controls which card types are forced into or kept out of the
// universe.
type Options struct {
	Mandatory []model.CardType
	Excluded  []model.CardType
}

// DefaultOptions returns the standard mandatory and excluded sets.
func DefaultOptions() Options {
	return Options{
		Mandatory: slices.Clone(model.MandatoryCardTypes),
		Excluded:  slices.Clone(model.ExcludedCardTypes),
	}
}

// Categorize groups res by card type. Hotel card types are normalized first.
// Records of excluded types count toward the summary but land in no bucket.
func Categorize(res matcher.Result, opts Options) *Categorization {
	recBank, recHotel := res.ReconciledBank(), res.ReconciledHotel()

	c := &Categorization{
		Universe: universe(opts, recBank, res.UnreconciledBank, recHotel, res.UnreconciledHotel),
		buckets:  make(map[Key]*Bucket),
	}

	for _, ct := range c.Universe {
		for _, k := range keysFor(ct) {
			b := &Bucket{Key: k}
			c.buckets[k] = b
			c.Attachments = append(c.Attachments, Attachment{Number: len(c.Attachments) + 1, Bucket: b})
		}
	}

	c.addBank(StatusReconciled, recBank)
	c.addBank(StatusUnreconciled, res.UnreconciledBank)
	c.addHotel(StatusReconciled, recHotel)
	c.addHotel(StatusUnreconciled, res.UnreconciledHotel)

	c.Summary = Summary{
		BankEntries:  len(recBank) + len(res.UnreconciledBank),
		BankBalance:  sumGross(recBank).Add(sumGross(res.UnreconciledBank)),
		HotelEntries: len(recHotel) + len(res.UnreconciledHotel),
		HotelBalance: sumAmount(recHotel).Add(sumAmount(res.UnreconciledHotel)),
		Reconciled:   len(res.Pairs),
		Unreconciled: res.UnreconciledCount(),
	}
	return c
}

// keysFor returns the four attachment keys of a card type in report order.
func keysFor(ct model.CardType) []Key {
	return []Key{
		{CardType: ct, Side: SideBank, Status: StatusReconciled},
		{CardType: ct, Side: SideHotel, Status: StatusReconciled},
		{CardType: ct, Side: SideBank, Status: StatusUnreconciled},
		{CardType: ct, Side: SideHotel, Status: StatusUnreconciled},
	}
}

func (c *Categorization) addBank(status Status, txns []model.BankTransaction) {
	for _, t := range txns {
		b := c.buckets[Key{CardType: t.CardType, Side: SideBank, Status: status}]
		if b == nil {
			continue
		}
		b.Bank = append(b.Bank, t)
		b.Amount = b.Amount.Add(t.Gross)
		b.Commission = b.Commission.Add(t.Commission)
		b.Net = b.Net.Add(t.Net)
	}
}

func (c *Categorization) addHotel(status Status, txns []model.HotelTransaction) {
	for _, t := range txns {
		b := c.buckets[Key{CardType: normalize.CardType(t.CardType), Side: SideHotel, Status: status}]
		if b == nil {
			continue
		}
		b.Hotel = append(b.Hotel, t)
		b.Amount = b.Amount.Add(t.Amount)
	}
}

// universe is every card type seen on either side, minus the excluded set,
// plus model.MandatoryCardTypes and opts.Mandatory, sorted. The built-in
// mandatory types are present whatever opts says.
func universe(opts Options, recBank, unBank []model.BankTransaction, recHotel, unHotel []model.HotelTransaction) []model.CardType {
	seen := make(map[model.CardType]bool)
	add := func(ct model.CardType) {
		ct = model.CardType(strings.TrimSpace(string(ct)))
		if ct == "" || slices.Contains(opts.Excluded, ct) {
			return
		}
		seen[ct] = true
	}

	for _, txns := range [][]model.BankTransaction{recBank, unBank} {
		for _, t := range txns {
			add(t.CardType)
		}
	}
	for _, txns := range [][]model.HotelTransaction{recHotel, unHotel} {
		for _, t := range txns {
			add(normalize.CardType(t.CardType))
		}
	}
	for _, ct := range slices.Concat(model.MandatoryCardTypes, opts.Mandatory) {
		if ct = model.CardType(strings.TrimSpace(string(ct))); ct != "" {
			seen[ct] = true
		}
	}

	out := make([]model.CardType, 0, len(seen))
	for ct := range seen {
		out = append(out, ct)
	}
	slices.Sort(out)
	return out
}

func sumGross(txns []model.BankTransaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Gross)
	}
	return sum
}

func sumAmount(txns []model.HotelTransaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(t.Amount)
	}
	return sum
}
