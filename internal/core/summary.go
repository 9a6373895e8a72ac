package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	CategoryOpportunity = "oportunidad"
	CategoryMaintenance = "mantenimiento"
	CurrencyUSD         = "USD"
)

// ModelOpportunity is the refaccion opportunity summed for one model.
type ModelOpportunity struct {
	Model string
	Total decimal.Decimal
}

// Summary holds the dashboard tiles and the per-model opportunity table for
// a set of lines.
type Summary struct {
	Rows           int
	Clients        int
	Opportunities  int
	Maintenance    int
	SalesUSD       decimal.Decimal
	RefaccionTotal decimal.Decimal
	// ByModel lists models in order of first appearance.
	ByModel []ModelOpportunity
}

// ValueOrZero returns the value of n, or zero when n is null.
func ValueOrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}

// Summarize computes the summary of lines. It never fails: missing numbers
// count as zero and missing categories match nothing.
func Summarize(lines []InvoiceLine) Summary {
	lower := cases.Lower(language.Und)
	s := Summary{
		Rows:           len(lines),
		SalesUSD:       decimal.Zero,
		RefaccionTotal: decimal.Zero,
		ByModel:        []ModelOpportunity{},
	}

	clients := make(map[string]struct{})
	modelIdx := make(map[string]int)
	for _, l := range lines {
		clients[l.Client] = struct{}{}

		if l.Category != "" {
			cat := lower.String(l.Category)
			if strings.Contains(cat, CategoryOpportunity) {
				s.Opportunities++
			}
			if strings.Contains(cat, CategoryMaintenance) {
				s.Maintenance++
			}
		}

		if l.Currency == CurrencyUSD {
			s.SalesUSD = s.SalesUSD.Add(ValueOrZero(l.Subtotal))
		}
		s.RefaccionTotal = s.RefaccionTotal.Add(ValueOrZero(l.Opportunity))

		if l.Model == "" || !l.Opportunity.Valid {
			continue
		}
		i, ok := modelIdx[l.Model]
		if !ok {
			i = len(s.ByModel)
			modelIdx[l.Model] = i
			s.ByModel = append(s.ByModel, ModelOpportunity{Model: l.Model, Total: decimal.Zero})
		}
		s.ByModel[i].Total = s.ByModel[i].Total.Add(l.Opportunity.Decimal)
	}
	s.Clients = len(clients)
	return s
}

// Tile is one labelled summary figure, already formatted for display.
type Tile struct {
	Label string
	Value string
}

// Tiles returns the five dashboard tiles of s in display order.
func (s Summary) Tiles() []Tile {
	return []Tile{
		{Label: "Total Clientes", Value: strconv.Itoa(s.Clients)},
		{Label: "Con Oportunidades", Value: strconv.Itoa(s.Opportunities)},
		{Label: "Oport. Mantenimiento", Value: strconv.Itoa(s.Maintenance)},
		{Label: "Oport. Refacciones por impresora", Value: FormatCurrency(s.RefaccionTotal)},
		{Label: "Total Ventas (USD)", Value: FormatCurrency(s.SalesUSD)},
	}
}
