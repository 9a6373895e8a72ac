package core

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeDataset_PreservesKeyOrder(t *testing.T) {
	d := sampleDataset(t)
	want := []string{"Ana", "Luis", "Sofia"}
	if got := d.Salespeople(); !reflect.DeepEqual(got, want) {
		t.Fatalf("salespeople = %v, want %v", got, want)
	}
	if d.Len() != 4 {
		t.Fatalf("len = %d, want 4", d.Len())
	}
	if !d.Has("Sofia") || len(d.Lines("Sofia")) != 0 {
		t.Fatalf("expected Sofia with no lines")
	}
	if d.Has("Pedro") {
		t.Fatalf("unexpected key Pedro")
	}
}

func TestDecodeDataset_FlattenedIsConcatenation(t *testing.T) {
	d := sampleDataset(t)
	var concat []InvoiceLine
	for _, name := range d.Salespeople() {
		for i, l := range d.Lines(name) {
			if l.Owner != name || l.Position != i {
				t.Fatalf("line %s/%d tagged %s/%d", name, i, l.Owner, l.Position)
			}
			concat = append(concat, l)
		}
	}
	if !reflect.DeepEqual(concat, d.All()) {
		t.Fatalf("All() is not the ordered concatenation of every salesperson")
	}
}

func TestDecodeDataset_DuplicateKeyLastWinsFirstPosition(t *testing.T) {
	doc := `{"B": [{"cliente": "old"}], "A": [], "B": [{"cliente": "new1"}, {"cliente": "new2"}]}`
	d, err := DecodeDataset(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := d.Salespeople(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("salespeople = %v", got)
	}
	lines := d.Lines("B")
	if len(lines) != 2 || lines[0].Client != "new1" || lines[1].Client != "new2" {
		t.Fatalf("B lines = %+v", lines)
	}
	if d.All()[0].Client != "new1" {
		t.Fatalf("flattened order broken: %+v", d.All())
	}
}

func TestDecodeDataset_OptionalAndNullFields(t *testing.T) {
	doc := `{"Ana": [{"cliente": "X", "subtotal": null}]}`
	d, err := DecodeDataset(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	l := d.All()[0]
	if l.Subtotal.Valid || l.Opportunity.Valid {
		t.Fatalf("expected null subtotal and opportunity, got %+v", l)
	}
	if l.Category != "" || l.Model != "" || l.ProductType != "" {
		t.Fatalf("expected empty optional strings, got %+v", l)
	}
	if !l.Quantity.IsZero() {
		t.Fatalf("missing quantity should be zero, got %s", l.Quantity)
	}
}

func TestDecodeDataset_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":        ``,
		"array":        `[]`,
		"scalar value": `{"Ana": 3}`,
		"wrong type":   `{"Ana": [{"cliente": 5}]}`,
		"truncated":    `{"Ana": [`,
		"not json":     `hello`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDataset(strings.NewReader(doc))
			if !errors.Is(err, ErrMalformedDataset) {
				t.Fatalf("expected ErrMalformedDataset, got %v", err)
			}
		})
	}
}

func TestEncodeDataset_RoundTrip(t *testing.T) {
	d := sampleDataset(t)
	var buf bytes.Buffer
	if err := EncodeDataset(&buf, d); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"subtotal": null`) {
		t.Fatalf("null subtotal not preserved:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), `"precio_unitario": 10.5`) {
		t.Fatalf("numbers should be bare JSON numbers:\n%s", buf.String())
	}

	back, err := DecodeDataset(&buf)
	if err != nil {
		t.Fatalf("decode encoded: %v", err)
	}
	if !reflect.DeepEqual(back.Salespeople(), d.Salespeople()) {
		t.Fatalf("order changed: %v", back.Salespeople())
	}
	if back.Len() != d.Len() {
		t.Fatalf("len = %d, want %d", back.Len(), d.Len())
	}
	for i, l := range back.All() {
		orig := d.All()[i]
		if l.Client != orig.Client || !l.UnitPrice.Equal(orig.UnitPrice) || l.Subtotal.Valid != orig.Subtotal.Valid {
			t.Fatalf("line %d differs: %+v vs %+v", i, l, orig)
		}
	}
}

func TestBuilder_AddRegistersEmptySalesperson(t *testing.T) {
	b := NewBuilder()
	b.Add("Ana")
	b.Add("Luis", InvoiceLine{Client: "X"})
	b.Add("Ana", InvoiceLine{Client: "Y"}, InvoiceLine{Client: "Z"})
	d := b.Build()

	if got := d.Salespeople(); !reflect.DeepEqual(got, []string{"Ana", "Luis"}) {
		t.Fatalf("salespeople = %v", got)
	}
	if got := d.Lines("Ana"); len(got) != 2 || got[1].Position != 1 {
		t.Fatalf("Ana lines = %+v", got)
	}
}

func TestDataset_LinesReturnsCopy(t *testing.T) {
	d := sampleDataset(t)
	lines := d.Lines("Ana")
	lines[0].Client = "mutated"
	if d.Lines("Ana")[0].Client == "mutated" {
		t.Fatalf("Lines must not expose internal storage")
	}
}
