// Package workbook reads and writes the spreadsheet that configures a
// bridge analysis: key-value parameter sheets, an optional explicit bearing
// table and the Cases override sheet.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/bridgepsci/internal/cases"
	"github.com/alexiusacademia/bridgepsci/internal/params"
)

// Sheet and header names shared by the loader and the template writer.
const (
	SheetReadme   = "README"
	SheetBearings = "BearingsTable"
	SheetCases    = "Cases"
	SheetInputs   = "Inputs"

	LayoutV3 = "v3"
	LayoutV2 = "v2"
)

var (
	KVHeaders      = []string{"Key", "Value", "Unit", "Type", "Description", "Required", "Example"}
	CaseHeaders    = []string{"case_label", "key", "value", "type", "description"}
	BearingHeaders = []string{"bearing_id", "k1", "k2", "k3", "k4", "k5", "k6"}
)

// Workbook is the parsed content of a configuration spreadsheet.
type Workbook struct {
	Path   string
	Layout string

	// Params holds the defaults overlaid with every key-value sheet, derived.
	Params params.Set

	// Bearings holds the BearingsTable rows, nil when the sheet is absent
	// or empty.
	Bearings [][]float64

	// Cases holds the Cases sheet rows; an empty table when the sheet is
	// absent.
	Cases *cases.Table

	// Ignored lists derived keys found on the key-value sheets. Derive
	// recomputes them, so their sheet values are dropped.
	Ignored []string
}

// Load opens path and parses it onto the default parameter set.
func Load(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb, err := parse(f, params.Defaults())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	wb.Path = path
	return wb, nil
}

// Read parses a workbook from r onto base.
func Read(r io.Reader, base params.Set) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parse(f, base)
}

func parse(f *excelize.File, base params.Set) (*Workbook, error) {
	sheets := map[string]bool{}
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}

	wb := &Workbook{Cases: &cases.Table{}}
	var kv []string
	switch {
	case sheets[params.SheetGeometry]:
		wb.Layout = LayoutV3
		for _, name := range params.KVSheets {
			if sheets[name] {
				kv = append(kv, name)
			}
		}
	case sheets[SheetInputs]:
		wb.Layout = LayoutV2
		kv = []string{SheetInputs}
	default:
		return nil, errors.New("unrecognized workbook layout: no Geometry or Inputs sheet")
	}

	values := map[string]any{}
	seen := map[string]bool{}
	var missing []string
	for _, name := range kv {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		m, err := readKV(name, rows, values, seen)
		if err != nil {
			return nil, err
		}
		missing = append(missing, m...)
	}
	if wb.Layout == LayoutV3 {
		for _, k := range params.RequiredKeys() {
			if !seen[k] && !contains(missing, k) {
				missing = append(missing, k)
			}
		}
	}
	if len(missing) > 0 {
		return nil, &params.MissingParameterError{Keys: missing}
	}

	if sheets[SheetBearings] {
		rows, err := f.GetRows(SheetBearings, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", SheetBearings, err)
		}
		if wb.Bearings, err = readBearings(rows); err != nil {
			return nil, err
		}
	}
	if sheets[SheetCases] {
		rows, err := f.GetRows(SheetCases, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", SheetCases, err)
		}
		if wb.Cases, err = readCases(rows); err != nil {
			return nil, err
		}
	}

	wb.Ignored = dropDerived(values)

	derived, err := params.Derive(base.Merge(values), wb.Bearings)
	if err != nil {
		return nil, err
	}
	wb.Params = derived
	return wb, nil
}

// dropDerived removes derived keys from values and returns them sorted. A
// Bearing_Stiffness row is kept as the explicit table of table mode unless
// a Bearing_Table row is also present.
func dropDerived(values map[string]any) []string {
	if k, ok := values["Bearing_Stiffness"]; ok {
		if _, dup := values["Bearing_Table"]; !dup {
			values["Bearing_Table"] = k
			values["bearing_mode"] = params.BearingModeTable
			delete(values, "Bearing_Stiffness")
		}
	}
	var out []string
	for key := range values {
		if params.IsDerived(key) {
			out = append(out, key)
			delete(values, key)
		}
	}
	sort.Strings(out)
	return out
}

// columns maps lower-cased header names to column indexes, falling back to
// the positions of want when the header row is missing or renamed.
func columns(header []string, want []string) map[string]int {
	idx := make(map[string]int, len(want))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	out := make(map[string]int, len(want))
	for i, w := range want {
		if c, ok := idx[strings.ToLower(w)]; ok {
			out[w] = c
		} else {
			out[w] = i
		}
	}
	return out
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// readKV parses one key-value sheet into values. It returns the keys of
// rows marked Required with an empty value.
func readKV(sheet string, rows [][]string, values map[string]any, seen map[string]bool) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	col := columns(rows[0], KVHeaders)
	var missing []string
	for i, row := range rows[1:] {
		rowNum := i + 2
		key := cell(row, col["Key"])
		if key == "" {
			continue
		}
		raw := cell(row, col["Value"])
		if raw == "" {
			if isYes(cell(row, col["Required"])) {
				missing = append(missing, key)
			}
			continue
		}
		typ, err := params.ParseType(cell(row, col["Type"]))
		if err != nil {
			return nil, &params.ParseError{Sheet: sheet, Row: rowNum, Key: key, Raw: raw, Err: err}
		}
		v, err := params.Parse(raw, typ)
		if err != nil {
			return nil, locate(err, sheet, rowNum, key)
		}
		values[key] = v
		seen[key] = true
	}
	return missing, nil
}

func readBearings(rows [][]string) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	col := columns(rows[0], BearingHeaders)
	var out [][]float64
	for i, row := range rows[1:] {
		id := cell(row, col["bearing_id"])
		if id == "" {
			continue
		}
		k := make([]float64, 0, params.BearingColumns)
		for _, h := range BearingHeaders[1:] {
			raw := cell(row, col[h])
			if raw == "" {
				k = append(k, 0)
				continue
			}
			v, err := params.Parse(raw, params.TypeFloat)
			if err != nil {
				return nil, locate(err, SheetBearings, i+2, id+"."+h)
			}
			k = append(k, v.(float64))
		}
		out = append(out, k)
	}
	return out, nil
}

func readCases(rows [][]string) (*cases.Table, error) {
	t := &cases.Table{}
	if len(rows) == 0 {
		return t, nil
	}
	col := columns(rows[0], CaseHeaders)
	for i, row := range rows[1:] {
		rowNum := i + 2
		label := cell(row, col["case_label"])
		if label == "" {
			continue
		}
		t.Declare(label)
		key := cell(row, col["key"])
		if key == "" {
			continue
		}
		raw := cell(row, col["value"])
		typ, err := params.ParseType(cell(row, col["type"]))
		if err != nil {
			return nil, &params.ParseError{Sheet: SheetCases, Row: rowNum, Key: key, Raw: raw, Err: err}
		}
		if raw == "" && typ == params.TypeAuto {
			return nil, &params.ParseError{Sheet: SheetCases, Row: rowNum, Key: key, Raw: raw, Err: errors.New("empty override value")}
		}
		v, err := params.Parse(raw, typ)
		if err != nil {
			return nil, locate(err, SheetCases, rowNum, key)
		}
		t.Add(cases.Override{Case: label, Key: key, Value: v, Type: typ, Description: cell(row, col["description"])})
	}
	return t, nil
}

func locate(err error, sheet string, row int, key string) error {
	var pe *params.ParseError
	if errors.As(err, &pe) {
		pe.Sheet, pe.Row, pe.Key = sheet, row, key
	}
	return err
}
