package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ventas/internal/core"
)

const (
	LinesSheet   = "Lineas"
	SummarySheet = "Resumen"

	// numFmtAmount is the built-in "#,##0.00" format.
	numFmtAmount = 4

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteXLSX writes the detail table and the summary as a two-sheet workbook.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LinesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	if err := writeLines(f, r.Lines, bold, amount); err != nil {
		return err
	}
	if err := writeSummary(f, r, bold, amount); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeLines(f *excelize.File, lines []core.InvoiceLine, bold, amount int) error {
	sw, err := f.NewStreamWriter(LinesSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, 1, 12); err != nil {
		return err
	}
	if err := sw.SetColWidth(2, 3, 32); err != nil {
		return err
	}

	header := make([]any, 0, len(DetailColumns)+1)
	for _, c := range DetailColumns {
		header = append(header, c)
	}
	header = append(header, "Vendedor")
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, l := range lines {
		row := []any{
			l.Date,
			l.Client,
			l.ProductName,
			core.OrPlaceholder(l.Model),
			core.OrPlaceholder(l.ProductType),
			l.Quantity.InexactFloat64(),
			l.Unit,
			excelize.Cell{StyleID: amount, Value: core.ValueOrZero(l.Subtotal).InexactFloat64()},
			l.Currency,
			l.Owner,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write line %d: %w", i+1, err)
		}
	}
	return sw.Flush()
}

func writeSummary(f *excelize.File, r Report, bold, amount int) error {
	rows := [][]any{
		{"Vendedor", r.SalespersonLabel()},
		{"Búsqueda", r.Filter.Search},
		{"Filas", r.Summary.Rows},
		{},
	}
	for _, t := range r.Summary.Tiles() {
		rows = append(rows, []any{t.Label, t.Value})
	}
	rows = append(rows, []any{}, []any{"Modelo", "Oportunidad Refacciones"})
	modelStart := len(rows) + 1
	for _, m := range r.Summary.ByModel {
		rows = append(rows, []any{m.Model, m.Total.InexactFloat64()})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 34); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 24); err != nil {
		return err
	}
	headerRow := modelStart - 1
	if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("B%d", headerRow), bold); err != nil {
		return err
	}
	if n := len(r.Summary.ByModel); n > 0 {
		if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("B%d", modelStart), fmt.Sprintf("B%d", modelStart+n-1), amount); err != nil {
			return err
		}
	}
	return nil
}
