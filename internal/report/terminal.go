package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cleared-dev/cardrecon/internal/categorize"
)

var (
	colorBlue     = lipgloss.Color("#89b4fa")
	colorGreen    = lipgloss.Color("#a6e3a1")
	colorRed      = lipgloss.Color("#f38ba8")
	colorOverlay1 = lipgloss.Color("#7f849c")

	titleStyle  = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(colorOverlay1).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// RenderTerminal returns a boxed per-card-type grid of the run for a
// terminal.
func RenderTerminal(c *categorize.Categorization) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorOverlay1)).
		Headers("Card", "Rec bank", "Rec hotel", "Unrec bank", "Unrec hotel").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, ct := range c.Universe {
		cells := []string{string(ct)}
		for _, k := range []struct {
			side   categorize.Side
			status categorize.Status
		}{
			{categorize.SideBank, categorize.StatusReconciled},
			{categorize.SideHotel, categorize.StatusReconciled},
			{categorize.SideBank, categorize.StatusUnreconciled},
			{categorize.SideHotel, categorize.StatusUnreconciled},
		} {
			b := c.Bucket(ct, k.side, k.status)
			cells = append(cells, bucketCell(b.Count(), FormatSummaryAmount(b.Amount)))
		}
		t.Row(cells...)
	}

	recN, recSum := sumOf(c, categorize.SideBank, categorize.StatusReconciled)
	s := c.Summary

	var b strings.Builder
	b.WriteString(titleStyle.Render("Credit Card Reconciliation"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Bank:  %d entries, %s\n", s.BankEntries, FormatAmount(s.BankBalance))
	fmt.Fprintf(&b, "Hotel: %d entries, %s\n", s.HotelEntries, FormatAmount(s.HotelBalance))
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(okStyle.Render(fmt.Sprintf("%d reconciled (%d bank lines, %s)", s.Reconciled, recN, FormatAmount(recSum))))
	b.WriteString("\n")
	status := okStyle
	if s.Unreconciled > 0 {
		status = warnStyle
	}
	b.WriteString(status.Render(strconv.Itoa(s.Unreconciled) + " unreconciled"))
	b.WriteString("\n")
	return b.String()
}

func bucketCell(n int, amount string) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d / %s", n, amount)
}
