package dataset

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"ventas/internal/core"
)

func TestParseRows(t *testing.T) {
	rows := [][]string{
		{"Vendedor", "cliente", "nombre_producto", "subtotal", "divisa", "modelo", "oportunidad_refacciones", "cantidad"},
		{"Luis", "Acme", "Impresora", "$1,200.50", "USD", "M1", "50", "2"},
		{"", "", "", "", "", "", "", ""},
		{"Ana", "Beta", "Toner", "", "MXN"},
		{"Sofia"},
		{"Luis", "Gamma", "Papel", "-$3.00", "USD", "", "", ""},
	}
	d, err := ParseRows(rows)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if got := d.Salespeople(); !reflect.DeepEqual(got, []string{"Luis", "Ana", "Sofia"}) {
		t.Fatalf("salespeople = %v", got)
	}
	if len(d.Lines("Sofia")) != 0 {
		t.Fatalf("Sofia should have no lines")
	}

	luis := d.Lines("Luis")
	if len(luis) != 2 {
		t.Fatalf("Luis lines = %d", len(luis))
	}
	first := luis[0]
	if first.Client != "Acme" || !first.Subtotal.Valid || !first.Subtotal.Decimal.Equal(decimal.RequireFromString("1200.50")) {
		t.Fatalf("first line = %+v", first)
	}
	if !first.Quantity.Equal(decimal.NewFromInt(2)) || first.Model != "M1" {
		t.Fatalf("first line = %+v", first)
	}
	if !luis[1].Subtotal.Decimal.Equal(decimal.NewFromInt(-3)) || luis[1].Opportunity.Valid {
		t.Fatalf("second line = %+v", luis[1])
	}

	ana := d.Lines("Ana")
	if len(ana) != 1 || ana[0].Subtotal.Valid || ana[0].Currency != "MXN" {
		t.Fatalf("ana = %+v", ana)
	}
}

func TestParseRows_Errors(t *testing.T) {
	cases := []struct {
		name string
		rows [][]string
		want error
	}{
		{"missing owner column", [][]string{{"cliente"}, {"X"}}, core.ErrMalformedDataset},
		{"empty owner", [][]string{{"vendedor", "cliente"}, {"", "X"}}, core.ErrEmptySalesperson},
		{"bad number", [][]string{{"vendedor", "subtotal"}, {"Ana", "abc"}}, core.ErrMalformedDataset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRows(tc.rows)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseRows_Empty(t *testing.T) {
	d, err := ParseRows(nil)
	if err != nil || d.Len() != 0 || len(d.Salespeople()) != 0 {
		t.Fatalf("expected empty dataset, got %v %v", d, err)
	}
}

func TestRowsRoundTrip(t *testing.T) {
	b := core.NewBuilder()
	b.Add("Ana", core.InvoiceLine{
		Client:      "X",
		ProductName: "Printer",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString("99.95"),
		Subtotal:    decimal.NewNullDecimal(decimal.RequireFromString("99.95")),
		Currency:    "USD",
		Model:       "M1",
		Opportunity: decimal.NewNullDecimal(decimal.NewFromInt(50)),
	})
	b.Add("Luis")
	src := b.Build()

	cells := Rows(src)
	if len(cells) != 3 {
		t.Fatalf("rows = %d", len(cells))
	}
	str := make([][]string, len(cells))
	for i, r := range cells {
		str[i] = make([]string, len(r))
		for j, v := range r {
			if v != nil {
				str[i][j] = fmt.Sprint(v)
			}
		}
	}

	back, err := ParseRows(str)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(back.Salespeople(), []string{"Ana", "Luis"}) {
		t.Fatalf("salespeople = %v", back.Salespeople())
	}
	l := back.Lines("Ana")[0]
	if !l.UnitPrice.Equal(decimal.RequireFromString("99.95")) || !l.Opportunity.Valid || l.Model != "M1" {
		t.Fatalf("line = %+v", l)
	}
}

func TestNewSnapshot(t *testing.T) {
	d := core.NewBuilder().Build()
	a := NewSnapshot("json", d)
	b := NewSnapshot("json", d)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("snapshot ids must be unique: %q %q", a.ID, b.ID)
	}
	if a.Source != "json" || a.LoadedAt.IsZero() || a.Data != d {
		t.Fatalf("snapshot = %+v", a)
	}
}
