package placement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet overrides are exported to
const SheetName = "model-overrides"

var sheetHeader = []interface{}{
	"id",
	"offset_x", "offset_y", "offset_z",
	"rotation_x", "rotation_y", "rotation_z",
	"scale_x", "scale_y", "scale_z",
}

// Export writes every override in store to an xlsx file, one row per id.
// Unset fields are left blank.
func Export(store Store, path string) (int, error) {
	entries, err := store.List()
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()
	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return 0, fmt.Errorf("placement: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("placement: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &sheetHeader); err != nil {
		return 0, fmt.Errorf("placement: %w", err)
	}
	row := 2
	for _, id := range SortedKeys(entries) {
		o := entries[id]
		values := []interface{}{id}
		for _, t := range []*Triple{o.Offset, o.Rotation, o.Scale} {
			values = append(values, tripleCells(t)...)
		}
		if err := f.SetSheetRow(SheetName, "A"+strconv.Itoa(row), &values); err != nil {
			return 0, fmt.Errorf("placement: %w", err)
		}
		row++
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("placement: save %s: %w", path, err)
	}
	return len(entries), nil
}

func tripleCells(t *Triple) []interface{} {
	if t == nil {
		return []interface{}{"", "", ""}
	}
	return []interface{}{t[0], t[1], t[2]}
}

// Import reads overrides from the first sheet of an xlsx file written by
// Export and merges them into store. A field group is applied only when all
// three of its cells hold numbers.
func Import(store Store, path string) (int, error) {
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xlsm") {
		return 0, fmt.Errorf("placement: %s is not an excel workbook", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("placement: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("placement: %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("placement: read %s: %w", path, err)
	}

	n := 0
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "id") {
			continue
		}
		o, err := parseRow(row)
		if err != nil {
			return n, fmt.Errorf("placement: %s row %d: %w", path, i+1, err)
		}
		if o.Empty() {
			continue
		}
		if err := store.Set(row[0], o); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func parseRow(row []string) (Override, error) {
	var o Override
	fields := []**Triple{&o.Offset, &o.Rotation, &o.Scale}
	for g, dst := range fields {
		start := 1 + g*3
		var t Triple
		set := 0
		for j := 0; j < 3; j++ {
			if start+j >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[start+j])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return o, fmt.Errorf("column %s: %w", sheetHeader[start+j], err)
			}
			t[j] = v
			set++
		}
		if set == 3 {
			*dst = &t
		}
	}
	return o, nil
}
