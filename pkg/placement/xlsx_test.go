package placement

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

func TestExportImport(t *testing.T) {
	src := NewMemoryStore()
	src.Set("C1", Override{Offset: &Triple{0.5, -1.25, 0}})
	src.Set("C2", Override{Rotation: &Triple{0, 0, 90}, Scale: &Triple{2, 2, 2}})

	path := filepath.Join(t.TempDir(), "overrides.xlsx")
	n, err := Export(src, path)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Export wrote %d rows, want 2", n)
	}

	dst := NewMemoryStore()
	n, err = Import(dst, path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Import read %d rows, want 2", n)
	}
	want, _ := src.List()
	got, _ := dst.List()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("imported overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestImportHandWrittenSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hand.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"id", "offset_x", "offset_y", "offset_z", "rotation_x", "rotation_y", "rotation_z"},
		{"c9", "", "", "", "0", "0", "180"},
		{"", "1", "1", "1"},
		{"C10", "1", "", "3"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}

	store := NewMemoryStore()
	n, err := Import(store, path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Import applied %d rows, want 1", n)
	}
	o, err := store.Get("C9")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff(Override{Rotation: &Triple{0, 0, 180}}, o); diff != "" {
		t.Errorf("override mismatch (-want +got):\n%s", diff)
	}
}

func TestImportRejects(t *testing.T) {
	dir := t.TempDir()
	if _, err := Import(NewMemoryStore(), filepath.Join(dir, "overrides.csv")); err == nil {
		t.Error("expected error for non-excel file")
	}
	if _, err := Import(NewMemoryStore(), filepath.Join(dir, "missing.xlsx")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(dir, "bad.xlsx")
	f := excelize.NewFile()
	f.SetSheetRow("Sheet1", "A1", &[]interface{}{"C1", "x", "0", "0"})
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if _, err := Import(NewMemoryStore(), path); err == nil {
		t.Error("expected error for non-numeric cell")
	}
}
