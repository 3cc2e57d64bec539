package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
)

// WritePDF writes a printable A4 build sheet with one page per report.
func WritePDF(w io.Writer, reports ...*Report) error {
	if len(reports) == 0 {
		return fmt.Errorf("report: no reports to write")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Build sheet", true)
	for _, r := range reports {
		if r == nil {
			continue
		}
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Cell(0, 10, r.Title)
		pdf.Ln(10)
		pdf.SetFont("Helvetica", "", 9)
		pdf.Cell(0, 5, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02")))
		pdf.Ln(8)
		for _, e := range r.Entries {
			switch e.Kind {
			case EntrySection:
				pdf.Ln(2)
				pdf.SetFont("Helvetica", "B", 12)
				pdf.Cell(0, 7, e.Text)
				pdf.Ln(7)
			case EntryNote:
				pdf.SetFont("Helvetica", "I", 10)
				pdf.MultiCell(0, 5, e.Text, "", "L", false)
			default:
				pdf.SetFont("Helvetica", "", 11)
				pdf.CellFormat(70, 6, e.Label, "B", 0, "L", false, 0, "")
				pdf.CellFormat(0, 6, e.Formatted(), "B", 1, "L", false, 0, "")
			}
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write pdf: %w", err)
	}
	return nil
}
