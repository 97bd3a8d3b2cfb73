package importer

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/cleared-dev/cardrecon/internal/model"
	"github.com/cleared-dev/cardrecon/internal/normalize"
)

// OperaParser parses hotel PMS credit-card settlement reports.
//
// A transaction line may be followed by up to two continuation lines that
// belong to its card reference:
//
//	01/06/24 10:15 305 Smith John 90001 POS - Visa Card QAR 0.00 100.00 CSH01
//	CHECK# 55 [2]
//	411111XXXXXX1234
type OperaParser struct {
	Logger *slog.Logger
}

// Format returns the parser name.
func (p *OperaParser) Format() string { return "opera" }

const cardReferenceSep = " / "

var (
	// DATE TIME ROOM NAME CODE CARD [REF] QAR DEBIT CREDIT CASHIER
	operaLinePattern = regexp.MustCompile(
		`^(\d{2}/\d{2}/\d{2})\s+(\d{2}:\d{2})\s+(\S+)\s+(.*?)\s*(\d{5})\s+` +
			`((?:POS - )?(?:Visa|Master|Amex|NAPS|GCCNET|Other)(?: Card)?)\s+` +
			`(?:(\S+)\s*)?QAR\s+([\d,]+\.\d{2})\s*(?:-?\s*)?([\d,]+\.\d{2})\s*(\S+)$`,
	)
	checkRefPattern        = regexp.MustCompile(`CHECK#\s*(\d+)\s*\[(\d+)\]`)
	checkRefLeadingPattern = regexp.MustCompile(`^CHECK#\s*(\d+)\s*\[(\d+)\]`)
	// 4 leading characters, a run of X, 4 digits. OCR may split the X run with
	// single spaces or put one space before the digits.
	maskedCardPattern = regexp.MustCompile(`^(\S{4}X+(?: X+)*\s?\d{4})`)
)

const (
	operaColDate = iota + 1
	operaColTime
	operaColRoom
	operaColName
	operaColCode
	operaColCard
	operaColRef
	operaColDebit
	operaColCredit
	operaColCashier
)

// ParseHotel parses a settlement report. Continuation lines are consumed by
// the transaction they follow and never parsed on their own.
func (p *OperaParser) ParseHotel(lines []string) model.HotelStatement {
	var stmt model.HotelStatement
	for i := 0; i < len(lines); {
		if txn, consumed, ok := parseOperaEntry(lines, i); ok {
			stmt.Transactions = append(stmt.Transactions, txn)
			i += consumed
			continue
		}

		line := strings.TrimSpace(lines[i])
		if line != "" && !checkRefLeadingPattern.MatchString(line) && !maskedCardPattern.MatchString(line) {
			stmt.Unmatched = append(stmt.Unmatched, model.UnmatchedLine{Line: i + 1, Text: line})
			p.logger().Warn("unrecognised hotel statement line", "line", i+1, "text", line)
		}
		i++
	}
	return stmt
}

// parseOperaEntry parses the transaction starting at lines[i] and returns the
// number of lines it spans (1 to 3).
func parseOperaEntry(lines []string, i int) (model.HotelTransaction, int, bool) {
	m := operaLinePattern.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if m == nil {
		return model.HotelTransaction{}, 0, false
	}

	var refs []string
	if ref := m[operaColRef]; ref != "" {
		if c := checkRefPattern.FindStringSubmatch(ref); c != nil {
			refs = append(refs, "CHECK# "+c[1]+" ["+c[2]+"]")
		} else {
			refs = append(refs, ref)
		}
	}

	consumed := 1
	if next, ok := lineAt(lines, i+consumed); ok && isCheckContinuation(next) {
		refs = append(refs, next)
		consumed++
	}
	if next, ok := lineAt(lines, i+consumed); ok {
		if c := maskedCardPattern.FindStringSubmatch(next); c != nil {
			refs = append(refs, c[1])
			consumed++
		}
	}

	txn := model.HotelTransaction{
		Date:          m[operaColDate],
		Time:          m[operaColTime],
		RoomNo:        m[operaColRoom],
		Name:          strings.TrimSpace(m[operaColName]),
		CardReference: strings.Join(refs, cardReferenceSep),
		CardType:      m[operaColCard],
		Amount:        normalize.Amount(m[operaColCredit]),
		CashierID:     m[operaColCashier],
	}
	txn.Timestamp, _ = normalize.Timestamp(txn.Date, txn.Time, normalize.HotelDateLayout)
	return txn, consumed, true
}

// isCheckContinuation reports whether line is a check reference on its own
// line. A full transaction line carrying an inline reference is not one.
func isCheckContinuation(line string) bool {
	return checkRefPattern.MatchString(line) && !operaLinePattern.MatchString(line)
}

func lineAt(lines []string, i int) (string, bool) {
	if i >= len(lines) {
		return "", false
	}
	return strings.TrimSpace(lines[i]), true
}

func (p *OperaParser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
