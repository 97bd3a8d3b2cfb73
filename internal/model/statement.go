package model

import "time"

// BankStatement is the parsed form of one bank statement.
type BankStatement struct {
	MerchantID   string
	TerminalID   string
	Transactions []BankTransaction
}

// Period returns the earliest and latest valid timestamps in the statement.
// ok is false when no transaction carries a timestamp.
func (s BankStatement) Period() (first, last time.Time, ok bool) {
	for _, t := range s.Transactions {
		if !t.HasTimestamp() {
			continue
		}
		if !ok || t.Timestamp.Before(first) {
			first = t.Timestamp
		}
		if !ok || t.Timestamp.After(last) {
			last = t.Timestamp
		}
		ok = true
	}
	return first, last, ok
}

// UnmatchedLine is a statement line no pattern recognised.
type UnmatchedLine struct {
	Line int // 1-based
	Text string
}

// HotelStatement is the parsed form of one hotel settlement statement.
type HotelStatement struct {
	Transactions []HotelTransaction
	Unmatched    []UnmatchedLine
}

// BankColumns is the column schema of bank record sets.
var BankColumns = []string{
	"Transaction Date", "Time", "Merchant ID", "Invoice No / RRN",
	"Card Number", "Card Type (On us/Off us)", "Gross Amount", "Commission", "Net Amount", "Terminal ID",
}

// HotelColumns is the column schema of hotel record sets.
var HotelColumns = []string{
	"Transaction Date", "Time", "Room No", "Name", "Card Reference", "Card Type", "Amount", "Cashier ID",
}
