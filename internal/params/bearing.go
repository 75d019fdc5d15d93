package params

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Bearing modes. In multiplier mode the abutment A1 rows of the base table
// are scaled; in table mode the explicit table is used as-is and the
// multiplier is ignored.
const (
	BearingModeMultiplier = "multiplier"
	BearingModeTable      = "table"
)

// BearingConfig selects how the effective bearing stiffness is produced.
type BearingConfig struct {
	Mode       string
	Multiplier float64
	Girders    int
	Base       *mat.Dense
	Table      *mat.Dense
}

// BearingFromSet reads the bearing configuration. sheetTable, when not nil,
// holds the rows of a BearingsTable sheet and takes precedence over a
// Bearing_Table parameter.
func BearingFromSet(s Set, sheetTable [][]float64) (*BearingConfig, error) {
	girders, err := s.Int("girder_number")
	if err != nil {
		return nil, err
	}
	if girders < 2 {
		return nil, &ValueError{Key: "girder_number", Want: "at least 2 girders", Got: girders}
	}
	mode, err := s.StringOr("bearing_mode", BearingModeMultiplier)
	if err != nil {
		return nil, err
	}
	cfg := &BearingConfig{Mode: strings.ToLower(strings.TrimSpace(mode)), Girders: girders}

	switch cfg.Mode {
	case BearingModeMultiplier:
		if cfg.Multiplier, err = s.Float("bearing_multiplier"); err != nil {
			return nil, err
		}
		if cfg.Multiplier < 0 {
			return nil, &ValueError{Key: "bearing_multiplier", Want: "non-negative number", Got: cfg.Multiplier}
		}
		base := BaseBearingTable(girders)
		if s.Has("Bearing_Base_Stiffness") {
			if base, err = s.Matrix("Bearing_Base_Stiffness"); err != nil {
				return nil, err
			}
		}
		if cfg.Base, err = bearingMatrix("Bearing_Base_Stiffness", base, girders); err != nil {
			return nil, err
		}
	case BearingModeTable:
		rows := sheetTable
		if rows == nil && s.Has("Bearing_Table") {
			if rows, err = s.Matrix("Bearing_Table"); err != nil {
				return nil, err
			}
		}
		if rows == nil {
			return nil, &ValueError{Key: "bearing_mode", Want: "a BearingsTable sheet or Bearing_Table parameter in table mode", Got: cfg.Mode}
		}
		if cfg.Table, err = bearingMatrix("Bearing_Table", rows, girders); err != nil {
			return nil, err
		}
	default:
		return nil, &ValueError{Key: "bearing_mode", Want: "multiplier or table", Got: mode}
	}
	return cfg, nil
}

func bearingMatrix(key string, rows [][]float64, girders int) (*mat.Dense, error) {
	if len(rows) != 2*girders {
		return nil, &ValueError{Key: key, Want: fmt.Sprintf("%d rows (two abutments of %d bearings)", 2*girders, girders), Got: len(rows)}
	}
	data := make([]float64, 0, len(rows)*BearingColumns)
	for i, r := range rows {
		if len(r) != BearingColumns {
			return nil, &ValueError{Key: key, Want: fmt.Sprintf("%d stiffness values in row %d", BearingColumns, i+1), Got: r}
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), BearingColumns, data), nil
}

// Stiffness returns the effective 2*girders x 6 bearing stiffness table.
// Only the A1 rows are scaled in multiplier mode, exactly once.
func (b *BearingConfig) Stiffness() *mat.Dense {
	if b.Mode == BearingModeTable {
		return mat.DenseCopyOf(b.Table)
	}
	g := b.Girders
	var a1 mat.Dense
	a1.Scale(b.Multiplier, b.Base.Slice(0, g, 0, BearingColumns))
	var out mat.Dense
	out.Stack(&a1, b.Base.Slice(g, 2*g, 0, BearingColumns))
	return &out
}

// Rows converts a dense table back into row slices.
func Rows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
