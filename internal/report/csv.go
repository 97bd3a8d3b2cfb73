// Package report renders a categorized reconciliation as CSV sheets and a
// terminal summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cardrecon/internal/categorize"
	"github.com/cleared-dev/cardrecon/internal/model"
)

const (
	bankFields     = 10
	colBankDate    = 0
	colBankTime    = 1
	colBankMerch   = 2
	colBankRef     = 3
	colBankCard    = 4
	colBankType    = 5
	colBankGross   = 6
	colBankComm    = 7
	colBankNet     = 8
	colBankTermID  = 9
	hotelFields    = 8
	colHotelDate   = 0
	colHotelTime   = 1
	colHotelRoom   = 2
	colHotelName   = 3
	colHotelRef    = 4
	colHotelType   = 5
	colHotelAmount = 6
	colHotelCashr  = 7
)

const (
	noRecords = "No Records"
	totalCell = "TOTAL"
)

// MarshalBank converts a bank transaction to a CSV row in model.BankColumns
// order.
func MarshalBank(t model.BankTransaction) []string {
	row := make([]string, bankFields)
	row[colBankDate] = t.Date
	row[colBankTime] = t.Time
	row[colBankMerch] = t.MerchantID
	row[colBankRef] = t.Reference
	row[colBankCard] = t.CardNumber
	row[colBankType] = string(t.CardType)
	row[colBankGross] = t.Gross.StringFixed(2)
	row[colBankComm] = t.Commission.StringFixed(2)
	row[colBankNet] = t.Net.StringFixed(2)
	row[colBankTermID] = t.TerminalID
	return row
}

// MarshalHotel converts a hotel transaction to a CSV row in
// model.HotelColumns order.
func MarshalHotel(t model.HotelTransaction) []string {
	row := make([]string, hotelFields)
	row[colHotelDate] = t.Date
	row[colHotelTime] = t.Time
	row[colHotelRoom] = t.RoomNo
	row[colHotelName] = t.Name
	row[colHotelRef] = t.CardReference
	row[colHotelType] = t.CardType
	row[colHotelAmount] = t.Amount.StringFixed(2)
	row[colHotelCashr] = t.CashierID
	return row
}

// AttachmentRows lays out one attachment: the three titles, a blank row, the
// column header, the records and a TOTAL row. An empty bucket gets a single
// "No Records" row and no total.
func AttachmentRows(a categorize.Attachment) [][]string {
	var rows [][]string
	for _, t := range a.Titles() {
		rows = append(rows, []string{t})
	}
	rows = append(rows, []string{})

	b := a.Bucket
	if b.Side == categorize.SideBank {
		rows = append(rows, model.BankColumns)
		if len(b.Bank) == 0 {
			return append(rows, emptyRow(bankFields))
		}
		for _, t := range b.Bank {
			rows = append(rows, MarshalBank(t))
		}
		total := make([]string, bankFields)
		total[colBankType] = totalCell
		total[colBankGross] = b.Amount.StringFixed(2)
		total[colBankComm] = b.Commission.StringFixed(2)
		total[colBankNet] = b.Net.StringFixed(2)
		return append(rows, total)
	}

	rows = append(rows, model.HotelColumns)
	if len(b.Hotel) == 0 {
		return append(rows, emptyRow(hotelFields))
	}
	for _, t := range b.Hotel {
		rows = append(rows, MarshalHotel(t))
	}
	total := make([]string, hotelFields)
	total[colHotelType] = totalCell
	total[colHotelAmount] = b.Amount.StringFixed(2)
	return append(rows, total)
}

func emptyRow(n int) []string {
	row := make([]string, n)
	row[0] = noRecords
	return row
}

// Header is the identifying block at the top of the summary sheet.
type Header struct {
	CompanyName   string
	AccountName   string
	AccountNumber string
	BankName      string
	GLAccount     string
}

const summaryDateLayout = "02-Jan-2006"

// SummaryRows lays out the bank account summary sheet. Every row has nine
// cells: the bank side in the first five, the ledger side in the last four.
func SummaryRows(c *categorize.Categorization, h Header, date time.Time) [][]string {
	s := c.Summary
	rows := [][]string{
		row9(h.CompanyName),
		row9("Credit Card Reconciliation"),
		row9(),
		row9("Reconciliation Date", "", date.Format(summaryDateLayout)),
		row9("Account Name:", "", h.AccountName),
		row9("Account Number:", "", h.AccountNumber),
		row9("Bank Name:", "", h.BankName),
		row9("General Ledger Account #", "", h.GLAccount),
		row9(),
		row9("Ending Balance as per Bank Statement", "", "Reference", "Entries", "Amount",
			"Ending Balance as per General Ledger", "Reference", "Entries", "Amount"),
		row9("", "", "", strconv.Itoa(s.BankEntries), FormatAmount(s.BankBalance),
			"", "", strconv.Itoa(s.HotelEntries), FormatAmount(s.HotelBalance)),
	}

	rows = append(rows, row9("Reconciled Transactions:", "", "", "", "", "Reconciled Transactions:"))
	for _, ct := range c.Universe {
		rows = append(rows, summaryLine(c, ct, categorize.StatusReconciled))
	}

	rows = append(rows, row9(),
		row9("Credited Amounts not Recorded in Opera PMS", "", "", "", "", "Outstanding Amounts not Credited in Bank"))
	for _, ct := range c.Universe {
		rows = append(rows, summaryLine(c, ct, categorize.StatusUnreconciled))
	}

	return append(rows,
		row9(),
		row9("Variance", "", "", "0", "-", "Ending Actual Net Cash Balance", "", "0", "-"),
		row9(),
		row9("Reviewed BY", "", "", "", "", "Approved BY"),
		row9("______________", "", "", "", "", "______________"),
	)
}

func summaryLine(c *categorize.Categorization, ct model.CardType, status categorize.Status) []string {
	bank := c.Bucket(ct, categorize.SideBank, status)
	hotel := c.Bucket(ct, categorize.SideHotel, status)
	return row9(
		string(ct), "",
		attachmentRef(c.AttachmentFor(ct, categorize.SideBank, status)),
		strconv.Itoa(bank.Count()), FormatSummaryAmount(bank.Amount),
		string(ct),
		attachmentRef(c.AttachmentFor(ct, categorize.SideHotel, status)),
		strconv.Itoa(hotel.Count()), FormatSummaryAmount(hotel.Amount),
	)
}

func attachmentRef(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("Attachment %d", n)
}

const summaryFields = 9

func row9(cells ...string) []string {
	row := make([]string, summaryFields)
	copy(row, cells)
	return row
}

// WriteRows writes rows as CSV. Rows may have different lengths.
func WriteRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// sumOf is the sum of the amounts shown on one side of a status section.
func sumOf(c *categorize.Categorization, side categorize.Side, status categorize.Status) (int, decimal.Decimal) {
	n, sum := 0, decimal.Zero
	for _, ct := range c.Universe {
		b := c.Bucket(ct, side, status)
		n += b.Count()
		sum = sum.Add(b.Amount)
	}
	return n, sum
}
