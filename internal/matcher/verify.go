package matcher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/cardrecon/internal/model"
)

// ErrEngineFailure marks a defect inside the matching engine, as opposed to
// bad input.
var ErrEngineFailure = errors.New("internal engine failure")

// Check names a post-condition of a matching run.
type Check string

const (
	CheckBankPartition  Check = "bank-partition"
	CheckHotelPartition Check = "hotel-partition"
	CheckNullTimestamp  Check = "null-timestamp"
	CheckSameEvent      Check = "same-event"
)

// Violation describes a single broken post-condition.
type Violation struct {
	Check       Check
	Index       int
	Description string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s [%d]: %s", v.Check, v.Index, v.Description)
}

// EngineError is returned when matching panicked or produced a result that
// fails Verify. It wraps ErrEngineFailure.
type EngineError struct {
	Panic      any
	Violations []Violation
}

func (e *EngineError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%v: panic: %v", ErrEngineFailure, e.Panic)
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return fmt.Sprintf("%v: %s", ErrEngineFailure, strings.Join(msgs, "; "))
}

func (e *EngineError) Unwrap() error { return ErrEngineFailure }

// Verify checks res against the inputs it was computed from:
//   - every bank index is paired or unreconciled, exactly once
//   - every hotel index is paired or unreconciled, exactly once
//   - no pair involves a missing timestamp
//   - every pair has equal amounts within the tolerance window
func Verify(res Result, bank []model.BankTransaction, hotel []model.HotelTransaction, tolerance time.Duration) []Violation {
	var vs []Violation

	bankSeen := make([]int, len(bank))
	hotelSeen := make([]int, len(hotel))
	mark := func(seen []int, i int, check Check) bool {
		if i < 0 || i >= len(seen) {
			vs = append(vs, Violation{Check: check, Index: i, Description: "index out of range"})
			return false
		}
		seen[i]++
		return true
	}

	for _, p := range res.Pairs {
		okBank := mark(bankSeen, p.BankIndex, CheckBankPartition)
		okHotel := mark(hotelSeen, p.HotelIndex, CheckHotelPartition)
		if !okBank || !okHotel {
			continue
		}

		if !p.Bank.HasTimestamp() || !p.Hotel.HasTimestamp() {
			vs = append(vs, Violation{
				Check:       CheckNullTimestamp,
				Index:       p.BankIndex,
				Description: fmt.Sprintf("paired with hotel %d without a timestamp", p.HotelIndex),
			})
			continue
		}
		if !p.Bank.Gross.Equal(p.Hotel.Amount) || !withinWindow(p.Bank.Timestamp, p.Hotel.Timestamp, tolerance) {
			vs = append(vs, Violation{
				Check: CheckSameEvent,
				Index: p.BankIndex,
				Description: fmt.Sprintf("hotel %d: %s at %s vs %s at %s",
					p.HotelIndex,
					p.Bank.Gross.StringFixed(2), p.Bank.Timestamp.Format(time.DateTime),
					p.Hotel.Amount.StringFixed(2), p.Hotel.Timestamp.Format(time.DateTime)),
			})
		}
	}
	for _, i := range res.unBankIdx {
		mark(bankSeen, i, CheckBankPartition)
	}
	for _, i := range res.unHotelIdx {
		mark(hotelSeen, i, CheckHotelPartition)
	}

	vs = append(vs, countViolations(bankSeen, CheckBankPartition)...)
	vs = append(vs, countViolations(hotelSeen, CheckHotelPartition)...)
	return vs
}

func countViolations(seen []int, check Check) []Violation {
	var vs []Violation
	for i, n := range seen {
		if n != 1 {
			vs = append(vs, Violation{
				Check:       check,
				Index:       i,
				Description: fmt.Sprintf("appears %d times, want 1", n),
			})
		}
	}
	return vs
}
