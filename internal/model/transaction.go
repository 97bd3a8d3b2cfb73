package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is one line item of a bank merchant-settlement statement.
type BankTransaction struct {
	Date       string // DD/MM/YYYY as printed
	Time       string // HH:MM as printed
	MerchantID string
	Reference  string // invoice no / RRN
	CardNumber string // partially masked
	CardType   CardType
	Gross      decimal.Decimal
	Commission decimal.Decimal
	Net        decimal.Decimal
	TerminalID string
	Timestamp  time.Time // zero when Date/Time did not parse
}

// HasTimestamp reports whether Date and Time combined into a valid timestamp.
func (t BankTransaction) HasTimestamp() bool { return !t.Timestamp.IsZero() }

// CardSuffix returns the last four characters of the card number.
func (t BankTransaction) CardSuffix() string { return LastFour(t.CardNumber) }

// HotelTransaction is one line item of a hotel PMS settlement statement.
// CardReference may be assembled from up to three physical lines.
type HotelTransaction struct {
	Date          string // DD/MM/YY as printed
	Time          string
	RoomNo        string
	Name          string
	CardReference string
	CardType      string // raw, e.g. "POS - Visa Card"
	Amount        decimal.Decimal
	CashierID     string
	Timestamp     time.Time
}

// HasTimestamp reports whether Date and Time combined into a valid timestamp.
func (t HotelTransaction) HasTimestamp() bool { return !t.Timestamp.IsZero() }

// LastFour returns the last four bytes of s, or s itself when shorter.
func LastFour(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
