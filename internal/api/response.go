package api

import (
	"github.com/cleared-dev/cardrecon/internal/categorize"
	"github.com/cleared-dev/cardrecon/internal/model"
	"github.com/cleared-dev/cardrecon/internal/recon"
	"github.com/cleared-dev/cardrecon/internal/report"
)

// ReconcileResponse is the JSON response from the /api/reconcile endpoint.
type ReconcileResponse struct {
	Success           bool       `json:"success"`
	Error             string     `json:"error,omitempty"`
	RunID             string     `json:"runId,omitempty"`
	Client            string     `json:"client,omitempty"`
	ReportDir         string     `json:"reportDir,omitempty"`
	Summary           *Summary   `json:"summary,omitempty"`
	Grid              []GridRow  `json:"grid,omitempty"`
	ReconciledBank    *RecordSet `json:"reconciledBank,omitempty"`
	ReconciledHotel   *RecordSet `json:"reconciledHotel,omitempty"`
	UnreconciledBank  *RecordSet `json:"unreconciledBank,omitempty"`
	UnreconciledHotel *RecordSet `json:"unreconciledHotel,omitempty"`
	UnmatchedLines    []string   `json:"unmatchedLines,omitempty"`
}

// Summary holds the scalar aggregates. Amounts are decimal strings.
type Summary struct {
	BankEntries  int    `json:"bankEntries"`
	BankBalance  string `json:"bankBalance"`
	HotelEntries int    `json:"hotelEntries"`
	HotelBalance string `json:"hotelBalance"`
	Reconciled   int    `json:"reconciled"`
	Unreconciled int    `json:"unreconciled"`
}

// GridRow is one card type of the attachment grid.
type GridRow struct {
	CardType          model.CardType `json:"cardType"`
	ReconciledBank    GridCell       `json:"reconciledBank"`
	ReconciledHotel   GridCell       `json:"reconciledHotel"`
	UnreconciledBank  GridCell       `json:"unreconciledBank"`
	UnreconciledHotel GridCell       `json:"unreconciledHotel"`
}

// GridCell describes one attachment.
type GridCell struct {
	Attachment int    `json:"attachment"`
	Count      int    `json:"count"`
	Amount     string `json:"amount"`
}

// RecordSet is a table of records with its column header.
type RecordSet struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func newReconcileResponse(out *recon.Outcome) ReconcileResponse {
	c := out.Categorization
	sum := c.Summary
	resp := ReconcileResponse{
		Success: true,
		RunID:   out.RunID,
		Client:  out.Client,
		Summary: &Summary{
			BankEntries:  sum.BankEntries,
			BankBalance:  sum.BankBalance.StringFixed(2),
			HotelEntries: sum.HotelEntries,
			HotelBalance: sum.HotelBalance.StringFixed(2),
			Reconciled:   sum.Reconciled,
			Unreconciled: sum.Unreconciled,
		},
		ReconciledBank:    bankSet(out.Result.ReconciledBank()),
		ReconciledHotel:   hotelSet(out.Result.ReconciledHotel()),
		UnreconciledBank:  bankSet(out.Result.UnreconciledBank),
		UnreconciledHotel: hotelSet(out.Result.UnreconciledHotel),
	}
	if out.Report != nil {
		resp.ReportDir = out.Report.Dir
	}
	for _, ct := range c.Universe {
		resp.Grid = append(resp.Grid, GridRow{
			CardType:          ct,
			ReconciledBank:    gridCell(c, ct, categorize.SideBank, categorize.StatusReconciled),
			ReconciledHotel:   gridCell(c, ct, categorize.SideHotel, categorize.StatusReconciled),
			UnreconciledBank:  gridCell(c, ct, categorize.SideBank, categorize.StatusUnreconciled),
			UnreconciledHotel: gridCell(c, ct, categorize.SideHotel, categorize.StatusUnreconciled),
		})
	}
	for _, l := range out.Hotel.Unmatched {
		resp.UnmatchedLines = append(resp.UnmatchedLines, l.Text)
	}
	return resp
}

func gridCell(c *categorize.Categorization, ct model.CardType, side categorize.Side, status categorize.Status) GridCell {
	b := c.Bucket(ct, side, status)
	return GridCell{
		Attachment: c.AttachmentFor(ct, side, status),
		Count:      b.Count(),
		Amount:     report.FormatAmount(b.Amount),
	}
}

func bankSet(txns []model.BankTransaction) *RecordSet {
	rs := &RecordSet{Columns: model.BankColumns, Rows: [][]string{}}
	for _, t := range txns {
		rs.Rows = append(rs.Rows, report.MarshalBank(t))
	}
	return rs
}

func hotelSet(txns []model.HotelTransaction) *RecordSet {
	rs := &RecordSet{Columns: model.HotelColumns, Rows: [][]string{}}
	for _, t := range txns {
		rs.Rows = append(rs.Rows, report.MarshalHotel(t))
	}
	return rs
}
