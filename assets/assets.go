// Package assets bundles the sample dataset served when no dataset file is
// configured.
package assets

import _ "embed"

// SampleDataset is the bundled facturas_por_vendedor.json.
//
//go:embed data/facturas_por_vendedor.json
var SampleDataset []byte
