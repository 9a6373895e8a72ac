package http

import (
	"ventas/internal/core"
	"ventas/internal/export"
	"ventas/internal/services"
)

// pageData is what the index and dashboard templates render.
type pageData struct {
	Salespeople   []string
	Filter        core.Filter
	SearchDelayMs int64
	SnapshotID    string
	// Query is the filter as a query string, appended to export links.
	Query   string
	Tiles   []core.Tile
	Summary core.Summary
	Columns []string
	Lines   []core.InvoiceLine
}

func (s *Server) newPageData(d *services.Dashboard) pageData {
	return pageData{
		Salespeople:   d.Salespeople,
		Filter:        d.Filter,
		SearchDelayMs: s.searchDebounce.Milliseconds(),
		SnapshotID:    d.SnapshotID,
		Query:         FilterQuery(d.Filter),
		Tiles:         d.Summary.Tiles(),
		Summary:       d.Summary,
		Columns:       export.DetailColumns,
		Lines:         d.Lines,
	}
}

// JSON shapes of the API. Keys follow the dataset's Spanish field names.
type (
	filterJSON struct {
		Salesperson string `json:"vendedor"`
		Search      string `json:"q"`
	}

	modelJSON struct {
		Model string `json:"modelo"`
		Total string `json:"total"`
	}

	summaryJSON struct {
		Rows           int         `json:"filas"`
		Clients        int         `json:"total_clientes"`
		Opportunities  int         `json:"con_oportunidades"`
		Maintenance    int         `json:"oportunidades_mantenimiento"`
		RefaccionTotal string      `json:"oportunidad_refacciones"`
		SalesUSD       string      `json:"total_ventas_usd"`
		ByModel        []modelJSON `json:"por_modelo"`
	}

	lineJSON struct {
		core.InvoiceLine
		Salesperson string `json:"vendedor"`
	}

	dashboardJSON struct {
		SnapshotID  string      `json:"snapshot"`
		Source      string      `json:"fuente"`
		Filter      filterJSON  `json:"filtro"`
		Salespeople []string    `json:"vendedores"`
		Summary     summaryJSON `json:"resumen"`
		Lines       []lineJSON  `json:"lineas"`
	}
)

// Amounts are rendered as fixed two-decimal strings so clients never see
// binary-float rounding.
func newDashboardJSON(d *services.Dashboard) dashboardJSON {
	byModel := make([]modelJSON, 0, len(d.Summary.ByModel))
	for _, m := range d.Summary.ByModel {
		byModel = append(byModel, modelJSON{Model: m.Model, Total: m.Total.StringFixed(2)})
	}
	lines := make([]lineJSON, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, lineJSON{InvoiceLine: l, Salesperson: l.Owner})
	}
	salespeople := d.Salespeople
	if salespeople == nil {
		salespeople = []string{}
	}
	return dashboardJSON{
		SnapshotID:  d.SnapshotID,
		Source:      d.Source,
		Filter:      filterJSON{Salesperson: d.Filter.Salesperson, Search: d.Filter.Search},
		Salespeople: salespeople,
		Summary: summaryJSON{
			Rows:           d.Summary.Rows,
			Clients:        d.Summary.Clients,
			Opportunities:  d.Summary.Opportunities,
			Maintenance:    d.Summary.Maintenance,
			RefaccionTotal: d.Summary.RefaccionTotal.StringFixed(2),
			SalesUSD:       d.Summary.SalesUSD.StringFixed(2),
			ByModel:        byModel,
		},
		Lines: lines,
	}
}
