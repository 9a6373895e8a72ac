package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Dataset files carry bare JSON numbers, not quoted decimals.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var (
	ErrMalformedDataset = errors.New("malformed dataset")
	ErrEmptySalesperson = errors.New("empty salesperson name")
)

type (
	// InvoiceLine is one product line of a customer invoice.
	InvoiceLine struct {
		InvoiceNumber    string              `json:"numero_factura"`
		Client           string              `json:"cliente"`
		Date             string              `json:"fecha"`
		Reference        string              `json:"referencia"`
		ProductReference string              `json:"referencia_producto"`
		ProductName      string              `json:"nombre_producto"`
		Quantity         decimal.Decimal     `json:"cantidad"`
		UnitPrice        decimal.Decimal     `json:"precio_unitario"`
		Subtotal         decimal.NullDecimal `json:"subtotal"`
		Currency         string              `json:"divisa"`
		Unit             string              `json:"unidad_medida"`
		Category         string              `json:"categoria_producto,omitempty"` // optional
		Model            string              `json:"modelo,omitempty"`             // optional
		ProductType      string              `json:"tipo_producto,omitempty"`      // optional
		Opportunity      decimal.NullDecimal `json:"oportunidad_refacciones"`

		// Owner is the salesperson key the line was loaded under.
		Owner string `json:"-"`
		// Position is the index of the line inside its owner's sequence.
		Position int `json:"-"`
	}

	// Dataset maps salesperson names to their invoice lines. It is built once
	// and never modified afterwards.
	Dataset struct {
		names []string
		lines map[string][]InvoiceLine
		all   []InvoiceLine
	}

	// Builder collects salesperson sequences in insertion order.
	Builder struct {
		names []string
		lines map[string][]InvoiceLine
	}
)

// NewBuilder returns an empty dataset builder.
func NewBuilder() *Builder {
	return &Builder{lines: make(map[string][]InvoiceLine)}
}

// Set replaces the lines of name. A name seen before keeps its first position.
func (b *Builder) Set(name string, lines []InvoiceLine) {
	if _, ok := b.lines[name]; !ok {
		b.names = append(b.names, name)
	}
	b.lines[name] = append([]InvoiceLine(nil), lines...)
}

// Add appends lines to name, registering the name if needed. Calling Add with
// no lines registers a salesperson with an empty sequence.
func (b *Builder) Add(name string, lines ...InvoiceLine) {
	if _, ok := b.lines[name]; !ok {
		b.names = append(b.names, name)
		b.lines[name] = nil
	}
	b.lines[name] = append(b.lines[name], lines...)
}

// Build tags every line with its owner and position and flattens the
// sequences in salesperson order.
func (b *Builder) Build() *Dataset {
	d := &Dataset{
		names: append([]string(nil), b.names...),
		lines: make(map[string][]InvoiceLine, len(b.names)),
	}
	total := 0
	for _, name := range b.names {
		total += len(b.lines[name])
	}
	d.all = make([]InvoiceLine, 0, total)
	for _, name := range b.names {
		src := b.lines[name]
		seq := make([]InvoiceLine, len(src))
		for i, l := range src {
			l.Owner = name
			l.Position = i
			seq[i] = l
		}
		d.lines[name] = seq
		d.all = append(d.all, seq...)
	}
	return d
}

// Salespeople returns the salesperson names in source order.
func (d *Dataset) Salespeople() []string {
	return append([]string(nil), d.names...)
}

// Has reports whether name is a key of the dataset.
func (d *Dataset) Has(name string) bool {
	_, ok := d.lines[name]
	return ok
}

// Lines returns a copy of the sequence loaded under name.
func (d *Dataset) Lines(name string) []InvoiceLine {
	return append([]InvoiceLine(nil), d.lines[name]...)
}

// All returns every line, concatenated in salesperson order. The returned
// slice is shared and must not be modified.
func (d *Dataset) All() []InvoiceLine {
	return d.all
}

// Len returns the total number of lines.
func (d *Dataset) Len() int {
	return len(d.all)
}

// DecodeDataset reads a JSON object mapping salesperson names to arrays of
// invoice lines. Key order is kept as written; a repeated key takes the last
// value but keeps its first position.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top level must be an object", ErrMalformedDataset)
	}

	b := NewBuilder()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrMalformedDataset, tok)
		}
		var lines []InvoiceLine
		if err := dec.Decode(&lines); err != nil {
			return nil, fmt.Errorf("%w: salesperson %q: %v", ErrMalformedDataset, name, err)
		}
		b.Set(name, lines)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	return b.Build(), nil
}

// EncodeDataset writes d as an indented JSON object in salesperson order.
func EncodeDataset(w io.Writer, d *Dataset) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("encode salesperson %q: %w", name, err)
		}
		lines := d.lines[name]
		if lines == nil {
			lines = []InvoiceLine{}
		}
		val, err := json.Marshal(lines)
		if err != nil {
			return fmt.Errorf("encode lines of %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Errorf("indent dataset: %w", err)
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}
