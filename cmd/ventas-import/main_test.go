package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ventas/internal/dataset/jsonfile"
	"ventas/internal/dataset/xlsxfile"
	"ventas/internal/log"
)

const sampleDoc = `{
  "Ana": [
    {"numero_factura": "F-1", "cliente": "Acme", "nombre_producto": "Impresora", "cantidad": 1, "subtotal": 100, "divisa": "USD", "categoria_producto": "Oportunidad", "modelo": "M1", "oportunidad_refacciones": 50},
    {"numero_factura": "F-2", "cliente": "Beta", "nombre_producto": "Toner", "cantidad": 2, "subtotal": 21, "divisa": "MXN", "categoria_producto": "Mantenimiento"}
  ],
  "Luis": [
    {"numero_factura": "F-3", "cliente": "Acme", "nombre_producto": "Papel", "cantidad": 10, "subtotal": 10, "divisa": "USD", "modelo": "M2", "oportunidad_refacciones": 12.5}
  ],
  "Sofia": []
}`

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(log.New(log.Config{Output: io.Discard}))
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.RunContext(context.Background(), append([]string{"ventas-import"}, args...))
	return out.String(), err
}

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "facturas.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportExportStats(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ventas.db")
	src := writeSample(t, dir)

	out, err := runApp(t, "--db", db, "json", src)
	if err != nil {
		t.Fatalf("json import: %v", err)
	}
	if !strings.Contains(out, "Imported 3 lines for 3 salespeople") {
		t.Errorf("import output = %q", out)
	}

	jsonOut := filepath.Join(dir, "out.json")
	if _, err := runApp(t, "--db", db, "export", jsonOut); err != nil {
		t.Fatalf("export json: %v", err)
	}
	d, err := jsonfile.New(jsonOut).Load(context.Background())
	if err != nil {
		t.Fatalf("load exported json: %v", err)
	}
	if got := strings.Join(d.Salespeople(), ","); got != "Ana,Luis,Sofia" {
		t.Errorf("exported salespeople = %s", got)
	}
	if d.Len() != 3 {
		t.Errorf("exported lines = %d", d.Len())
	}

	xlsxOut := filepath.Join(dir, "out.xlsx")
	if _, err := runApp(t, "--db", db, "export", xlsxOut); err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	x, err := xlsxfile.New(xlsxOut, "").Load(context.Background())
	if err != nil {
		t.Fatalf("load exported xlsx: %v", err)
	}
	if x.Len() != 3 {
		t.Errorf("xlsx lines = %d", x.Len())
	}

	out, err = runApp(t, "--db", db, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Salespeople: 3", "Lines: 3", "Last import: ", "Total Clientes:", "$62.50", "$110.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestImportXLSX(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ventas.db")

	// build a workbook through the store
	if _, err := runApp(t, "--db", db, "json", writeSample(t, dir)); err != nil {
		t.Fatal(err)
	}
	book := filepath.Join(dir, "book.xlsx")
	if _, err := runApp(t, "--db", db, "export", book); err != nil {
		t.Fatal(err)
	}

	other := filepath.Join(dir, "other.db")
	out, err := runApp(t, "--db", other, "xlsx", book)
	if err != nil {
		t.Fatalf("xlsx import: %v", err)
	}
	if !strings.Contains(out, "Imported 3 lines") {
		t.Errorf("import output = %q", out)
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "ventas.db")
	src := writeSample(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file argument", []string{"--db", db, "json"}},
		{"missing input file", []string{"--db", db, "json", filepath.Join(dir, "nope.json")}},
		{"unknown export format", []string{"--db", db, "export", filepath.Join(dir, "out.csv")}},
		{"notify without broker", []string{"--db", db, "--notify", "--amqp-url", "", "json", src}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runApp(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
