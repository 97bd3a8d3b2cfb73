package importer

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cardrecon/internal/model"
)

const operaVisaLine = "01/06/24 10:15 305 Smith John 90001 POS - Visa Card QAR 0.00 100.00 CSH01"

func TestOperaParser_Testdata(t *testing.T) {
	var logs bytes.Buffer
	p := &OperaParser{Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	stmt := p.ParseHotel(readLines(t, "../../testdata/hotel_statement.txt"))

	require.Len(t, stmt.Transactions, 7)

	first := stmt.Transactions[0]
	assert.Equal(t, "01/06/24", first.Date)
	assert.Equal(t, "10:15", first.Time)
	assert.Equal(t, "305", first.RoomNo)
	assert.Equal(t, "Smith John", first.Name)
	assert.Equal(t, "CHECK# 55 [2] / 4111XXXXXXXX1234", first.CardReference)
	assert.Equal(t, "POS - Visa Card", first.CardType)
	assert.Equal(t, "100.00", first.Amount.StringFixed(2))
	assert.Equal(t, "CSH01", first.CashierID)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 15, 0, 0, time.UTC), first.Timestamp)

	assert.Equal(t, "CHECK# 56 [1]", stmt.Transactions[1].CardReference)
	assert.Equal(t, "5555XXXXXXXX4444", stmt.Transactions[2].CardReference)
	assert.Equal(t, "1200.00", stmt.Transactions[2].Amount.StringFixed(2))
	assert.Equal(t, "", stmt.Transactions[3].CardReference)
	assert.Equal(t, "NAPS", stmt.Transactions[4].CardType)
	assert.Equal(t, "4666XXXXXXXX3210", stmt.Transactions[6].CardReference)

	require.Len(t, stmt.Unmatched, 4)
	assert.Equal(t, model.UnmatchedLine{Line: 1, Text: "EXAMPLE HOTEL LLC"}, stmt.Unmatched[0])
	assert.Equal(t, "Balance carried forward 2,030.50", stmt.Unmatched[3].Text)
	assert.Contains(t, logs.String(), "unrecognised hotel statement line")
}

func TestOperaParser_ContinuationLines(t *testing.T) {
	stmt := (&OperaParser{}).ParseHotel([]string{
		operaVisaLine,
		"CHECK# 55 [2]",
		"1234X XXXX5678",
	})
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "CHECK# 55 [2] / 1234X XXXX5678", stmt.Transactions[0].CardReference)
	assert.Empty(t, stmt.Unmatched)
}

func TestOperaParser_InlineReferenceNormalized(t *testing.T) {
	stmt := (&OperaParser{}).ParseHotel([]string{
		"01/06/24 10:15 305 Smith John 90001 POS - Visa Card CHECK#7[3] QAR 0.00 100.00 CSH01",
		"CHECK# 8 [1]",
		"4111XXXXXXXX1234",
	})
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "CHECK# 7 [3] / CHECK# 8 [1] / 4111XXXXXXXX1234", stmt.Transactions[0].CardReference)
}

func TestOperaParser_InlineReferenceVerbatim(t *testing.T) {
	stmt := (&OperaParser{}).ParseHotel([]string{
		"01/06/24 10:15 305 Smith John 90001 POS - Visa Card REF-991 QAR 0.00 100.00 CSH01",
	})
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "REF-991", stmt.Transactions[0].CardReference)
}

func TestOperaParser_CardLineWithoutCheck(t *testing.T) {
	stmt := (&OperaParser{}).ParseHotel([]string{
		operaVisaLine,
		"4111XXXXXXXX1234",
		"CHECK# 55 [2]",
	})
	require.Len(t, stmt.Transactions, 1)
	// The check line after the card line is not a continuation; it is
	// neither a transaction nor reported as unmatched.
	assert.Equal(t, "4111XXXXXXXX1234", stmt.Transactions[0].CardReference)
	assert.Empty(t, stmt.Unmatched)
}

func TestOperaParser_MaskedCardShape(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"4111XXXXXXXX1234", true},
		{"1234X XXXX5678", true},
		{"1234XXXXXXXX 5678", true},
		{"ABCDX  9999 is not a card", false},
		{"1234 XXXX5678", false},
		{"1234XXXX567", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, maskedCardPattern.MatchString(tt.line))
		})
	}
}

func TestOperaParser_LooseCardLineUnmatched(t *testing.T) {
	stmt := (&OperaParser{}).ParseHotel([]string{
		operaVisaLine,
		"ABCDX  9999 is not a card",
	})
	require.Len(t, stmt.Transactions, 1)
	assert.Empty(t, stmt.Transactions[0].CardReference)
	require.Len(t, stmt.Unmatched, 1)
	assert.Equal(t, model.UnmatchedLine{Line: 2, Text: "ABCDX  9999 is not a card"}, stmt.Unmatched[0])
}

func TestOperaParser_ContinuationConsumedOnce(t *testing.T) {
	second := "01/06/24 11:00 306 Doe Jane 90002 POS - Master Card QAR 0.00 50.00 CSH01"
	stmt := (&OperaParser{}).ParseHotel([]string{
		operaVisaLine,
		"CHECK# 55 [2]",
		second,
		"5555XXXXXXXX4444",
	})
	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "CHECK# 55 [2]", stmt.Transactions[0].CardReference)
	assert.Equal(t, "5555XXXXXXXX4444", stmt.Transactions[1].CardReference)
}

func TestOperaParser_TransactionLineNotSwallowed(t *testing.T) {
	inline := "01/06/24 11:00 306 Doe Jane 90002 POS - Visa Card CHECK#9[1] QAR 0.00 50.00 CSH01"
	stmt := (&OperaParser{}).ParseHotel([]string{operaVisaLine, inline})
	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, "", stmt.Transactions[0].CardReference)
	assert.Equal(t, "CHECK# 9 [1]", stmt.Transactions[1].CardReference)
}

func TestOperaParser_CreditedAmount(t *testing.T) {
	stmt := (&OperaParser{}).ParseHotel([]string{
		"01/06/24 10:15 305 Smith John 90001 Visa QAR 12.00 - 1,500.00 CSH01",
	})
	require.Len(t, stmt.Transactions, 1)
	assert.Equal(t, "1500.00", stmt.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "Visa", stmt.Transactions[0].CardType)
}

func TestOperaParser_InvalidTimestamp(t *testing.T) {
	stmt := (&OperaParser{}).ParseHotel([]string{
		"45/13/24 10:15 305 Smith John 90001 POS - Visa Card QAR 0.00 100.00 CSH01",
	})
	require.Len(t, stmt.Transactions, 1)
	assert.False(t, stmt.Transactions[0].HasTimestamp())
}
