// Package xlsxfile reads and writes datasets as Excel workbooks. The sheet
// starts with a header row: a "vendedor" column plus invoice line fields
// named as in the JSON dataset.
package xlsxfile

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"ventas/internal/core"
	ports "ventas/internal/dataset"
)

// DefaultSheet is the sheet written by Write.
const DefaultSheet = "Facturas"

var (
	_ ports.Source    = (*Source)(nil)
	_ ports.Watchable = (*Source)(nil)
)

type Source struct {
	path  string
	sheet string
}

// New returns a source reading sheet from the workbook at path. An empty
// sheet name selects the first sheet.
func New(path, sheet string) *Source {
	return &Source{path: path, sheet: sheet}
}

func (s *Source) Name() string { return "xlsx:" + s.path }

func (s *Source) Path() string { return s.path }

func (s *Source) Load(ctx context.Context) (*core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return read(f, s.sheet)
}

// Read parses the first sheet of the workbook in r.
func Read(r io.Reader) (*core.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return read(f, "")
}

func read(f *excelize.File, sheet string) (*core.Dataset, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("%w: no sheet found", core.ErrMalformedDataset)
		}
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	d, err := ports.ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	return d, nil
}

// Write streams d into a single-sheet workbook.
func Write(w io.Writer, d *core.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", DefaultSheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(DefaultSheet)
	if err != nil {
		return err
	}
	for i, row := range ports.Rows(d) {
		cells := make([]any, len(row))
		for j, v := range row {
			// Numbers become real numeric cells.
			if dv, ok := v.(decimal.Decimal); ok {
				cells[j] = dv.InexactFloat64()
				continue
			}
			cells[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	_ = f.SetColWidth(DefaultSheet, "A", "A", 22)
	_ = f.SetColWidth(DefaultSheet, "B", "P", 16)

	_, err = f.WriteTo(w)
	return err
}
