// Package matcher pairs bank settlement lines with hotel settlement lines.
//
// Matching is greedy and order dependent: bank transactions are visited in
// statement order and each one takes the first qualifying hotel transaction
// left in the pool. Runs share no state and may execute concurrently.
package matcher

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cleared-dev/cardrecon/internal/model"
)

// ErrNegativeTolerance is returned when the time window is below zero.
var ErrNegativeTolerance = errors.New("tolerance must not be negative")

// Rule names the rule that produced a pair.
type Rule string

const (
	// RuleGCCNET matches GCCNET bank lines on amount and time only.
	RuleGCCNET Rule = "gccnet"
	// RuleTight matches on card suffix, amount and time.
	RuleTight Rule = "tight"
	// RuleLoose matches on amount and time when no card suffix matched.
	RuleLoose Rule = "loose"
)

// Pair is one bank transaction matched to one hotel transaction. The indices
// point into the input slices.
type Pair struct {
	BankIndex  int
	HotelIndex int
	Bank       model.BankTransaction
	Hotel      model.HotelTransaction
	Rule       Rule
}

// Result partitions both inputs. Pairs are in bank statement order and the
// unreconciled slices keep input order.
type Result struct {
	Pairs             []Pair
	UnreconciledBank  []model.BankTransaction
	UnreconciledHotel []model.HotelTransaction

	unBankIdx  []int
	unHotelIdx []int
}

// ReconciledBank returns the bank side of every pair.
func (r Result) ReconciledBank() []model.BankTransaction {
	out := make([]model.BankTransaction, len(r.Pairs))
	for i, p := range r.Pairs {
		out[i] = p.Bank
	}
	return out
}

// ReconciledHotel returns the hotel side of every pair, positionally aligned
// with ReconciledBank.
func (r Result) ReconciledHotel() []model.HotelTransaction {
	out := make([]model.HotelTransaction, len(r.Pairs))
	for i, p := range r.Pairs {
		out[i] = p.Hotel
	}
	return out
}

// UnreconciledCount is the number of records left over on both sides.
func (r Result) UnreconciledCount() int {
	return len(r.UnreconciledBank) + len(r.UnreconciledHotel)
}

// Engine runs the matching rules.
type Engine struct {
	Logger *slog.Logger
}

// Match runs the default engine.
func Match(bank []model.BankTransaction, hotel []model.HotelTransaction, toleranceMinutes int) (Result, error) {
	var e Engine
	return e.Match(bank, hotel, toleranceMinutes)
}

// Match partitions bank and hotel into pairs and leftovers. Neither input is
// modified. A panic or a broken post-condition is returned as an
// *EngineError.
func (e *Engine) Match(bank []model.BankTransaction, hotel []model.HotelTransaction, toleranceMinutes int) (res Result, err error) {
	if toleranceMinutes < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrNegativeTolerance, toleranceMinutes)
	}
	tolerance := time.Duration(toleranceMinutes) * time.Minute

	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, &EngineError{Panic: r}
		}
	}()

	res = run(bank, hotel, tolerance)
	if vs := Verify(res, bank, hotel, tolerance); len(vs) > 0 {
		return Result{}, &EngineError{Violations: vs}
	}

	e.logger().Debug("matched statements",
		"bank", len(bank), "hotel", len(hotel),
		"pairs", len(res.Pairs), "tolerance_minutes", toleranceMinutes)
	return res, nil
}

func run(bank []model.BankTransaction, hotel []model.HotelTransaction, tolerance time.Duration) Result {
	p := newPool(hotel)
	var res Result

	for bi, b := range bank {
		hi, rule := selectCandidate(p, b, tolerance)
		if hi < 0 {
			res.UnreconciledBank = append(res.UnreconciledBank, b)
			res.unBankIdx = append(res.unBankIdx, bi)
			continue
		}
		res.Pairs = append(res.Pairs, Pair{
			BankIndex:  bi,
			HotelIndex: hi,
			Bank:       b,
			Hotel:      p.take(hi),
			Rule:       rule,
		})
	}

	for _, hi := range p.remaining() {
		res.UnreconciledHotel = append(res.UnreconciledHotel, hotel[hi])
		res.unHotelIdx = append(res.unHotelIdx, hi)
	}
	return res
}

// selectCandidate returns the pool index chosen for b, or -1.
func selectCandidate(p *pool, b model.BankTransaction, tolerance time.Duration) (int, Rule) {
	sameEvent := func(h model.HotelTransaction) bool {
		return b.Gross.Equal(h.Amount) && withinWindow(b.Timestamp, h.Timestamp, tolerance)
	}

	if b.CardType == model.CardGCCNET {
		return p.first(sameEvent), RuleGCCNET
	}

	suffix := b.CardSuffix()
	if i := p.first(func(h model.HotelTransaction) bool {
		return len(h.CardReference) >= 4 && model.LastFour(h.CardReference) == suffix && sameEvent(h)
	}); i >= 0 {
		return i, RuleTight
	}
	return p.first(sameEvent), RuleLoose
}

// withinWindow reports whether a and b are at most tolerance apart. A missing
// timestamp on either side never qualifies.
func withinWindow(a, b time.Time, tolerance time.Duration) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func (e *Engine) logger() *slog.Logger {
	if e != nil && e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
