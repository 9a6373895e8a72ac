package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// sampleDataset returns three salespeople, one of them with no lines.
func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	const doc = `{
  "Ana": [
    {"numero_factura": "F-1", "cliente": "Acme", "nombre_producto": "Impresora Láser", "cantidad": 1, "precio_unitario": 100, "subtotal": 100, "divisa": "USD", "categoria_producto": "Oportunidad Refacciones", "modelo": "M1", "oportunidad_refacciones": 50},
    {"numero_factura": "F-2", "cliente": "Beta", "nombre_producto": "Tóner", "cantidad": 2, "precio_unitario": 10.5, "subtotal": 21, "divisa": "MXN", "categoria_producto": "Mantenimiento", "oportunidad_refacciones": null}
  ],
  "Luis": [
    {"numero_factura": "F-3", "cliente": "Acme", "nombre_producto": "Papel", "cantidad": 10, "precio_unitario": 1.25, "subtotal": null, "divisa": "USD", "modelo": "M2", "oportunidad_refacciones": 12.5},
    {"numero_factura": "F-4", "cliente": "ÉLITE SA", "nombre_producto": "Impresora", "cantidad": 1, "precio_unitario": 900, "subtotal": 900, "divisa": "USD", "categoria_producto": "oportunidad", "modelo": "M1", "oportunidad_refacciones": 25}
  ],
  "Sofia": []
}`
	d, err := DecodeDataset(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	return d
}
