package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Filter is the dashboard's selection state. Empty or whitespace-only fields
// select everything.
type Filter struct {
	Salesperson string
	Search      string
}

// BySalesperson reports whether the salesperson filter is active.
func (f Filter) BySalesperson() bool {
	return strings.TrimSpace(f.Salesperson) != ""
}

// BySearch reports whether the text search is active.
func (f Filter) BySearch() bool {
	return strings.TrimSpace(f.Search) != ""
}

// IsZero reports whether the filter selects every line.
func (f Filter) IsZero() bool {
	return !f.BySalesperson() && !f.BySearch()
}

// Apply returns the lines matching both filters, in input order. The input is
// never modified and the result is never nil.
//
// Trimming only decides whether a filter is active: the salesperson key and
// the search text are matched exactly as given.
func (f Filter) Apply(lines []InvoiceLine) []InvoiceLine {
	bySalesperson := f.BySalesperson()
	bySearch := f.BySearch()

	if !bySalesperson && !bySearch {
		return append(make([]InvoiceLine, 0, len(lines)), lines...)
	}

	lower := cases.Lower(language.Und)
	needle := ""
	if bySearch {
		needle = lower.String(f.Search)
	}

	out := make([]InvoiceLine, 0)
	for _, l := range lines {
		if bySalesperson && l.Owner != f.Salesperson {
			continue
		}
		if bySearch &&
			!strings.Contains(lower.String(l.Client), needle) &&
			!strings.Contains(lower.String(l.ProductName), needle) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterLines is a shorthand for Filter{salesperson, search}.Apply(lines).
func FilterLines(lines []InvoiceLine, salesperson, search string) []InvoiceLine {
	return Filter{Salesperson: salesperson, Search: search}.Apply(lines)
}
