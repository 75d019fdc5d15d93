package workbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/bridgepsci/internal/cases"
	"github.com/alexiusacademia/bridgepsci/internal/params"
	"github.com/alexiusacademia/bridgepsci/internal/version"
)

var readme = []string{
	"Bridge PSCI Excel Template (" + version.TemplateVersion + ")",
	"",
	"1) Fill sheets: Geometry / Section / Materials / Tendon / Bearings / Modal / Dynamic / Vehicle.",
	"2) Rows with Required = Y must carry a value. Leave optional rows empty to keep the default.",
	"3) Type column: float, int, str, bool, list[float], list[int], json. Lists accept [1,2] or 1,2.",
	"4) bearing_mode = multiplier scales the A1 rows of Bearing_Base_Stiffness by bearing_multiplier;",
	"   bearing_mode = table uses the BearingsTable sheet as-is. The two never combine.",
	"   The BearingsTable sheet holds the effective Bearing_Stiffness, A1 rows already scaled by the multiplier.",
	"5) Cases: one row per override (case_label, key, value, type). Keys may be JSONPath, e.g. $.E_girder1[0].",
	"   A row with a label and no key declares a case that runs the base parameters.",
	"6) Run: bridgepsci run --excel <this file> --case baseline --out results",
}

// Template builds the template workbook in memory from base and the case
// table t (nil for no example cases).
func Template(base params.Set, t *cases.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetReadme); err != nil {
		return nil, err
	}
	title, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	for i, line := range readme {
		axis, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellValue(SheetReadme, axis, line); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(SheetReadme, "A1", "A1", title)
	_ = f.SetColWidth(SheetReadme, "A", "A", 110)

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	bySheet := map[string][]params.Field{}
	for _, fld := range params.Schema() {
		bySheet[fld.Sheet] = append(bySheet[fld.Sheet], fld)
	}
	for _, name := range params.KVSheets {
		rows := make([][]any, 0, len(bySheet[name]))
		for _, fld := range bySheet[name] {
			rows = append(rows, []any{
				fld.Key, cellValue(base, fld.Key), fld.Unit, string(fld.Type),
				fld.Description, yesNo(fld.Required), fld.Example,
			})
		}
		if err := writeSheet(f, name, KVHeaders, rows, header); err != nil {
			return nil, err
		}
	}

	bearings, err := effectiveBearings(base)
	if err != nil {
		return nil, err
	}
	girders := len(bearings) / 2
	rows := make([][]any, 0, len(bearings))
	for i, k := range bearings {
		id := fmt.Sprintf("A1_B%d", i+1)
		if i >= girders {
			id = fmt.Sprintf("A2_B%d", i-girders+1)
		}
		row := []any{id}
		for _, v := range k {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := writeSheet(f, SheetBearings, BearingHeaders, rows, header); err != nil {
		return nil, err
	}

	rows = nil
	if t != nil {
		for _, label := range t.Declared {
			if len(t.RowsFor(label)) == 0 {
				rows = append(rows, []any{label, "", "", "", ""})
			}
		}
		for _, o := range t.Rows {
			rows = append(rows, []any{o.Case, o.Key, params.Format(o.Value), string(o.Type), o.Description})
		}
	}
	if err := writeSheet(f, SheetCases, CaseHeaders, rows, header); err != nil {
		return nil, err
	}
	return f, nil
}

// effectiveBearings returns the derived Bearing_Stiffness of base, or the
// base table when base was never derived.
func effectiveBearings(base params.Set) ([][]float64, error) {
	if base.Has("Bearing_Stiffness") {
		return base.Matrix("Bearing_Stiffness")
	}
	return base.Matrix("Bearing_Base_Stiffness")
}

// CreateTemplate writes the template workbook to path, creating parent
// directories as needed.
func CreateTemplate(path string, base params.Set, t *cases.Table) error {
	f, err := Template(base, t)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]any, style int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &hdr); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return err
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for i, row := range rows {
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, axis, &row); err != nil {
			return err
		}
		for c, v := range row {
			if c < len(widths) {
				widths[c] = max(widths[c], len(fmt.Sprint(v)))
			}
		}
	}
	for c, w := range widths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(name, col, col, float64(min(max(10, w+2), 70)))
	}
	return f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// cellValue returns the value written into the Value column: scalars stay
// numeric, lists and tables are written as JSON text, derived or unset keys
// are left blank.
func cellValue(s params.Set, key string) any {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case float64, int, bool:
		return t
	case string:
		return t
	}
	return params.Format(v)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
