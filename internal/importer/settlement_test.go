package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cardrecon/internal/model"
)

func TestSettlementParser_Testdata(t *testing.T) {
	p := NewSettlementParser(model.DefaultGCCNETSuffixes)
	stmt := p.ParseBank(readLines(t, "../../testdata/bank_statement.txt"))

	assert.Equal(t, "100200300", stmt.MerchantID)
	assert.Equal(t, "T9001", stmt.TerminalID)
	require.Len(t, stmt.Transactions, 7)

	first := stmt.Transactions[0]
	assert.Equal(t, "01/06/2024", first.Date)
	assert.Equal(t, "10:00", first.Time)
	assert.Equal(t, "100200300", first.MerchantID)
	assert.Equal(t, "415210000001", first.Reference)
	assert.Equal(t, "411111XXXXXX1234", first.CardNumber)
	assert.Equal(t, model.CardVisa, first.CardType)
	assert.Equal(t, "100.00", first.Gross.StringFixed(2))
	assert.Equal(t, "2.50", first.Commission.StringFixed(2))
	assert.Equal(t, "97.50", first.Net.StringFixed(2))
	assert.Equal(t, "T9001", first.TerminalID)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), first.Timestamp)

	wantTypes := []model.CardType{
		model.CardVisa, model.CardGCCNET, model.CardMastercard, model.CardMastercard,
		model.CardNAPS, model.CardGCCNET, model.CardAmex,
	}
	for i, want := range wantTypes {
		assert.Equal(t, want, stmt.Transactions[i].CardType, "transaction %d", i)
	}

	assert.Equal(t, "1200.00", stmt.Transactions[2].Gross.StringFixed(2))
	assert.Equal(t, "1170.00", stmt.Transactions[2].Net.StringFixed(2))
}

func TestSettlementParser_GCCNETOverride(t *testing.T) {
	lines := []string{
		"ON-US VISA",
		"1 01/06/2024 12:30 05 RRN1 422222XXXXXX0580 250.00 6.25 243.75",
		"2 01/06/2024 12:31 05 RRN2 422222XXXXXX0581 250.00 6.25 243.75",
	}
	stmt := NewSettlementParser([]string{"0580"}).ParseBank(lines)
	require.Len(t, stmt.Transactions, 2)
	assert.Equal(t, model.CardGCCNET, stmt.Transactions[0].CardType)
	assert.Equal(t, model.CardVisa, stmt.Transactions[1].CardType)
}

func TestSettlementParser_HeaderContext(t *testing.T) {
	lines := []string{
		"1 01/06/2024 08:00 05 RRN0 400000XXXXXX0001 10.00 0.10 9.90",
		"off-us mastercard",
		"2 01/06/2024 09:00 05 RRN1 500000XXXXXX0002 20.00 0.20 19.80",
		"ON-US DINERS",
		"3 01/06/2024 10:00 05 RRN2 360000XXXXXX0003 30.00 0.30 29.70",
	}
	stmt := NewSettlementParser(nil).ParseBank(lines)
	require.Len(t, stmt.Transactions, 3)
	assert.Equal(t, model.CardUnknown, stmt.Transactions[0].CardType)
	assert.Equal(t, model.CardMastercard, stmt.Transactions[1].CardType)
	assert.Equal(t, model.CardDiners, stmt.Transactions[2].CardType)
}

func TestSettlementParser_IgnoresNoise(t *testing.T) {
	lines := []string{
		"",
		"TOTAL 2,485.50 59.24 2,426.26",
		"1 01/06/2024 10:00 05 RRN1 CARD 100.00 2.50",
		"1 01/06/2024 10:00 05 RRN1 CARD 100.00 2.50 97.50 EXTRA",
		"PAGE 1 OF 1",
	}
	stmt := NewSettlementParser(nil).ParseBank(lines)
	assert.Empty(t, stmt.Transactions)
}

func TestSettlementParser_InvalidDateKeepsRecord(t *testing.T) {
	lines := []string{"1 31/02/2024 10:00 05 RRN1 400000XXXXXX0001 10.00 0.10 9.90"}
	stmt := NewSettlementParser(nil).ParseBank(lines)
	require.Len(t, stmt.Transactions, 1)
	assert.False(t, stmt.Transactions[0].HasTimestamp())
}

func TestSettlementParser_PreambleOnly(t *testing.T) {
	lines := make([]string, 0, 25)
	for i := 0; i < 20; i++ {
		lines = append(lines, "HEADER")
	}
	lines = append(lines, "MERCHANT ID LATE", "1 01/06/2024 10:00 05 RRN1 400000XXXXXX0001 10.00 0.10 9.90")

	stmt := NewSettlementParser(nil).ParseBank(lines)
	assert.Empty(t, stmt.MerchantID)
	require.Len(t, stmt.Transactions, 1)
	assert.Empty(t, stmt.Transactions[0].MerchantID)
}

func TestSettlementParser_TerminalDoesNotSetMerchant(t *testing.T) {
	lines := []string{
		"MERCHANT ID M1 TERMINAL ID T1",
		"TERMINAL ID T2",
	}
	stmt := NewSettlementParser(nil).ParseBank(lines)
	assert.Equal(t, "M1", stmt.MerchantID)
	assert.Equal(t, "T2", stmt.TerminalID)
}
