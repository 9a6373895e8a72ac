package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"ventas/internal/core"
)

const PDFContentType = "application/pdf"

// WritePDF renders the summary tiles and the model table on one A4 page.
func WritePDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Resumen de Oportunidades", true)
	pdf.SetCreator("ventas", true)
	// Core fonts are cp1252; accented names need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Resumen de Oportunidades"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr("Vendedor: "+r.SalespersonLabel()))
	pdf.Ln(6)
	if r.Filter.BySearch() {
		pdf.Cell(0, 6, tr("Búsqueda: "+r.Filter.Search))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Filas: %d", r.Summary.Rows))
	pdf.Ln(6)
	if !r.GeneratedAt.IsZero() {
		pdf.Cell(0, 6, "Generado: "+r.GeneratedAt.Format("2006-01-02 15:04 MST"))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	for _, t := range r.Summary.Tiles() {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(110, 8, tr(t.Label), "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(60, 8, t.Value, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(110, 8, "Modelo", "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Oportunidad Refacciones", "1", 1, "R", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, m := range r.Summary.ByModel {
		pdf.CellFormat(110, 8, tr(m.Model), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, core.FormatCurrency(m.Total), "1", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
