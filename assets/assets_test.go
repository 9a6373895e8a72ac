package assets

import (
	"bytes"
	"testing"

	"ventas/internal/core"
)

func TestSampleDatasetDecodes(t *testing.T) {
	d, err := core.DecodeDataset(bytes.NewReader(SampleDataset))
	if err != nil {
		t.Fatalf("DecodeDataset() error = %v", err)
	}

	names := d.Salespeople()
	want := []string{"Ana Torres", "Carlos Méndez", "Lucía Ramírez", "Jorge Salinas"}
	if len(names) != len(want) {
		t.Fatalf("salespeople = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("salespeople[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if d.Len() != 7 {
		t.Errorf("lines = %d, want 7", d.Len())
	}
	if len(d.Lines("Jorge Salinas")) != 0 {
		t.Error("Jorge Salinas should have no lines")
	}
}
