// Package export renders the filtered dashboard as downloadable files.
package export

import (
	"time"

	"ventas/internal/core"
)

// AllSalespeople labels an inactive salesperson filter.
const AllSalespeople = "Todos los Vendedores"

// Report is one filtered view of a snapshot.
type Report struct {
	Filter      core.Filter
	Source      string
	SnapshotID  string
	GeneratedAt time.Time
	Lines       []core.InvoiceLine
	Summary     core.Summary
}

// SalespersonLabel returns the selected salesperson or the "all" label.
func (r Report) SalespersonLabel() string {
	if !r.Filter.BySalesperson() {
		return AllSalespeople
	}
	return r.Filter.Salesperson
}

// DetailColumns are the headers of the detail table.
var DetailColumns = []string{
	"Fecha", "Cliente", "Producto", "Modelo", "Tipo",
	"Cantidad", "Unidad", "Subtotal", "Divisa",
}
