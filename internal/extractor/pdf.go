package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfTextLines reads the text layer row by row. The pdf library panics on
// some malformed files; that is reported as an error.
func pdfTextLines(path string) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines, err = nil, fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var text []string
		for _, row := range rows {
			var words []string
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			text = append(text, strings.Join(words, " "))
		}
		pages = append(pages, strings.Join(text, "\n"))
	}
	return splitLines(pages), nil
}
