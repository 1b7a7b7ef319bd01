// Package export renders story transcripts for download.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"story_adventure/store"
)

// PDF writes the transcript of s as a PDF document. The hidden arc is never
// included.
func PDF(w io.Writer, s store.Story) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Your Adventure", true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr("Your Adventure"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "I", 11)
	if len(s.Genres) > 0 {
		pdf.CellFormat(0, 7, tr(strings.Join(s.Genres, ", ")), "", 1, "C", false, 0, "")
	}
	if s.Prompt != "" {
		pdf.MultiCell(0, 6, tr(s.Prompt), "", "C", false)
	}
	pdf.Ln(6)

	for i, st := range s.Steps {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, fmt.Sprintf("Scene %d", i+1), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(st.NarratorPrompt), "", "L", false)

		if st.Choice != "" {
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 6, tr("You chose: "+st.Choice), "", "L", false)
		}
		pdf.Ln(5)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
