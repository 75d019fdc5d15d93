package params

import "fmt"

// Derive recomputes every derived key (section chain, girder depth and the
// effective bearing stiffness) from the primary inputs of s. sheetTable is
// the optional BearingsTable sheet. The receiver is not modified.
func Derive(s Set, sheetTable [][]float64) (Set, error) {
	sec, err := SectionFromSet(s)
	if err != nil {
		return Set{}, fmt.Errorf("section: %w", err)
	}
	out := s.Merge(sec.CalculateProperties().Values())

	bc, err := BearingFromSet(out, sheetTable)
	if err != nil {
		return Set{}, fmt.Errorf("bearings: %w", err)
	}
	return out.With("Bearing_Stiffness", Rows(bc.Stiffness())), nil
}
