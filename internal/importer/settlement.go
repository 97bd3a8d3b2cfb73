package importer

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/cardrecon/internal/model"
	"github.com/cleared-dev/cardrecon/internal/normalize"
)

// SettlementParser parses acquiring-bank merchant settlement statements.
//
// Layout:
//
//	MERCHANT ID 100200300
//	TERMINAL ID T9001
//	ON-US VISA
//	1 01/06/2024 10:00 05 415210000001 411111XXXXXX1234 100.00 2.50 97.50
//
// Transaction lines take their card type from the nearest network header above
// them, except for known GCCNET card suffixes.
type SettlementParser struct {
	gccnet map[string]bool
}

// NewSettlementParser creates a parser that forces card numbers ending in one
// of suffixes to GCCNET.
func NewSettlementParser(suffixes []string) *SettlementParser {
	set := make(map[string]bool, len(suffixes))
	for _, s := range suffixes {
		set[s] = true
	}
	return &SettlementParser{gccnet: set}
}

// Format returns the parser name.
func (p *SettlementParser) Format() string { return "merchant-settlement" }

// Identifiers are only looked for in the statement preamble.
const preambleLines = 20

var (
	terminalIDPattern    = regexp.MustCompile(`TERMINAL ID (\S+)`)
	merchantIDPattern    = regexp.MustCompile(`ID (\S+)`)
	networkHeaderPattern = regexp.MustCompile(`(?i)(ON-US|OFF-US)\s+(VISA|MASTERCARD|NAPS|GCCNET|AMEX|DINERS|JCB)`)

	// SEQ DATE TIME TC RRN CARD GROSS COMMISSION NET
	settlementLinePattern = regexp.MustCompile(
		`^\d+\s+(\d{2}/\d{2}/\d{4})\s+(\d{2}:\d{2})\s+\d{2}\s+(\S+)\s+(\S+)\s+` +
			`([\d,]+\.\d{2})\s+([\d,]+\.\d{2})\s+([\d,]+\.\d{2})$`,
	)
)

// settlementScan is the context carried from line to line.
type settlementScan struct {
	merchantID string
	terminalID string
	cardType   model.CardType
}

// ParseBank parses a settlement statement. It never fails; unrecognised lines
// are ignored.
func (p *SettlementParser) ParseBank(lines []string) model.BankStatement {
	st := settlementScan{cardType: model.CardUnknown}
	st.scanPreamble(lines)

	stmt := model.BankStatement{MerchantID: st.merchantID, TerminalID: st.terminalID}
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if m := networkHeaderPattern.FindStringSubmatch(line); m != nil {
			st.cardType = model.CardType(strings.ToUpper(m[2]))
			continue
		}

		m := settlementLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		txn := model.BankTransaction{
			Date:       m[1],
			Time:       m[2],
			MerchantID: st.merchantID,
			Reference:  m[3],
			CardNumber: m[4],
			CardType:   st.cardType,
			Gross:      normalize.Amount(m[5]),
			Commission: normalize.Amount(m[6]),
			Net:        normalize.Amount(m[7]),
			TerminalID: st.terminalID,
		}
		if p.gccnet[model.LastFour(txn.CardNumber)] {
			txn.CardType = model.CardGCCNET
		}
		txn.Timestamp, _ = normalize.Timestamp(txn.Date, txn.Time, normalize.BankDateLayout)
		stmt.Transactions = append(stmt.Transactions, txn)
	}
	return stmt
}

// scanPreamble picks up the merchant and terminal identifiers. A later match
// overrides an earlier one. The terminal clause is removed before looking for
// the merchant ID so "TERMINAL ID x" never sets the merchant.
func (st *settlementScan) scanPreamble(lines []string) {
	if len(lines) > preambleLines {
		lines = lines[:preambleLines]
	}
	for _, line := range lines {
		if m := terminalIDPattern.FindStringSubmatch(line); m != nil {
			st.terminalID = m[1]
			line = terminalIDPattern.ReplaceAllString(line, "")
		}
		if m := merchantIDPattern.FindStringSubmatch(line); m != nil {
			st.merchantID = m[1]
		}
	}
}
