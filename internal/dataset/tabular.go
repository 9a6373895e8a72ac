package dataset

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ventas/internal/core"
)

// SalespersonColumn names the owner column of a tabular dataset.
const SalespersonColumn = "vendedor"

// Columns is the header row written for tabular datasets. Columns other
// than the salesperson use the JSON field names of an invoice line.
var Columns = []string{
	SalespersonColumn,
	"numero_factura",
	"cliente",
	"fecha",
	"referencia",
	"referencia_producto",
	"nombre_producto",
	"cantidad",
	"precio_unitario",
	"subtotal",
	"divisa",
	"unidad_medida",
	"categoria_producto",
	"modelo",
	"tipo_producto",
	"oportunidad_refacciones",
}

// ParseRows builds a dataset from a header row followed by one row per
// invoice line. Salespeople keep the order of their first row. A row with a
// salesperson and nothing else registers that salesperson with no lines.
// Blank rows are skipped.
func ParseRows(rows [][]string) (*core.Dataset, error) {
	b := core.NewBuilder()
	if len(rows) == 0 {
		return b.Build(), nil
	}

	headers := rows[0]
	owner := indexOf(headers, SalespersonColumn)
	if owner == -1 {
		return nil, fmt.Errorf("%w: missing %q column; got headers=%v", core.ErrMalformedDataset, SalespersonColumn, headers)
	}
	col := make(map[string]int, len(Columns))
	for _, name := range Columns[1:] {
		col[name] = indexOf(headers, name)
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		name := strings.TrimSpace(safeGet(row, owner))
		if name == "" {
			return nil, fmt.Errorf("row %d: %w", i+1, core.ErrEmptySalesperson)
		}
		if onlyOwner(row, owner) {
			b.Add(name)
			continue
		}

		get := func(field string) string { return strings.TrimSpace(safeGet(row, col[field])) }
		var err error
		num := func(field string) decimal.Decimal {
			if err != nil {
				return decimal.Zero
			}
			var n decimal.NullDecimal
			n, err = parseDecimal(get(field))
			if err != nil {
				err = fmt.Errorf("%w: row %d column %s: %v", core.ErrMalformedDataset, i+1, field, err)
			}
			return core.ValueOrZero(n)
		}
		nullNum := func(field string) decimal.NullDecimal {
			if err != nil {
				return decimal.NullDecimal{}
			}
			var n decimal.NullDecimal
			n, err = parseDecimal(get(field))
			if err != nil {
				err = fmt.Errorf("%w: row %d column %s: %v", core.ErrMalformedDataset, i+1, field, err)
			}
			return n
		}

		line := core.InvoiceLine{
			InvoiceNumber:    get("numero_factura"),
			Client:           get("cliente"),
			Date:             get("fecha"),
			Reference:        get("referencia"),
			ProductReference: get("referencia_producto"),
			ProductName:      get("nombre_producto"),
			Quantity:         num("cantidad"),
			UnitPrice:        num("precio_unitario"),
			Subtotal:         nullNum("subtotal"),
			Currency:         get("divisa"),
			Unit:             get("unidad_medida"),
			Category:         get("categoria_producto"),
			Model:            get("modelo"),
			ProductType:      get("tipo_producto"),
			Opportunity:      nullNum("oportunidad_refacciones"),
		}
		if err != nil {
			return nil, err
		}
		b.Add(name, line)
	}
	return b.Build(), nil
}

// Rows flattens d into tabular cells matching Columns. Text columns hold
// strings, numeric columns hold decimals and null numbers are nil.
// A salesperson without lines gets a row with only its name.
func Rows(d *core.Dataset) [][]any {
	out := make([][]any, 0, d.Len()+1)
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	out = append(out, header)

	for _, name := range d.Salespeople() {
		lines := d.Lines(name)
		if len(lines) == 0 {
			out = append(out, []any{name})
			continue
		}
		for _, l := range lines {
			out = append(out, []any{
				name,
				l.InvoiceNumber,
				l.Client,
				l.Date,
				l.Reference,
				l.ProductReference,
				l.ProductName,
				l.Quantity,
				l.UnitPrice,
				nullable(l.Subtotal),
				l.Currency,
				l.Unit,
				l.Category,
				l.Model,
				l.ProductType,
				nullable(l.Opportunity),
			})
		}
	}
	return out
}

func nullable(n decimal.NullDecimal) any {
	if !n.Valid {
		return nil
	}
	return n.Decimal
}

// parseDecimal accepts plain and dollar-formatted numbers ("$1,234.50").
// An empty cell is null.
func parseDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	neg := false
	if strings.HasPrefix(s, "-$") {
		neg, s = true, s[2:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if neg {
		d = d.Neg()
	}
	return decimal.NewNullDecimal(d), nil
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func onlyOwner(row []string, owner int) bool {
	for i, v := range row {
		if i != owner && strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
