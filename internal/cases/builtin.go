package cases

import "github.com/alexiusacademia/bridgepsci/internal/params"

// Builtin returns the in-code case table of the reference study:
//
//	baseline, case1  defaults
//	case2            bearing multiplier 0.5
//	case5, case6     first girder line modulus reduced to 70% / 50%
//	case9            deck modulus reduced to 70% across every zone
func Builtin() *Table {
	t := &Table{}
	t.Declare(Baseline)
	t.Declare("case1")

	t.Add(Override{Case: "case2", Key: "bearing_multiplier", Value: 0.5, Type: params.TypeFloat,
		Description: "softer A1 bearings"})
	t.Add(Override{Case: "case5", Key: "$.E_girder1[0]", Value: 28000 * 0.7, Type: params.TypeFloat,
		Description: "girder 1 stiffness loss 30%"})
	t.Add(Override{Case: "case6", Key: "$.E_girder1[0]", Value: 28000 * 0.5, Type: params.TypeFloat,
		Description: "girder 1 stiffness loss 50%"})

	deck := make([]float64, params.DefaultGirders+1)
	for i := range deck {
		deck[i] = 25000 * 0.7
	}
	t.Add(Override{Case: "case9", Key: "E_deck1", Value: deck, Type: params.TypeFloatList,
		Description: "deck stiffness loss 30%"})
	return t
}
