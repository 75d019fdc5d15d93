package params

// Abutment bearing stiffness constants (kN/m, equal to N/mm).
const (
	BearingFixed    = 1e9 / 1e3
	BearingLateral  = 80000.0
	BearingCracked  = 1e9 / 1e4
	BearingColumns  = 6
	DefaultGirders  = 6
	defaultModulus  = 28000.0
	defaultDeckE    = 25000.0
	defaultSlabT    = 250.0
	defaultDiaphE   = 24000.0
	defaultBearingM = 0.3
)

// BaseBearingTable returns the unscaled 2*girders x 6 bearing table: the
// first girders rows are abutment A1 (free longitudinally), the remaining
// rows abutment A2. The outer and the second A2 bearing are stiff
// vertically; the rest carry the cracked vertical stiffness.
func BaseBearingTable(girders int) [][]float64 {
	rows := make([][]float64, 0, 2*girders)
	for i := 0; i < girders; i++ {
		kv := BearingCracked
		if i == 0 || i == 1 || i == girders-1 {
			kv = BearingFixed
		}
		rows = append(rows, []float64{0, BearingLateral, kv, 0, 0, 0})
	}
	for i := 0; i < girders; i++ {
		kv := BearingCracked
		kh := 0.0
		if i == 1 || i == girders-1 {
			kv = BearingFixed
		}
		if i == girders-1 {
			kh = BearingLateral
		}
		rows = append(rows, []float64{BearingLateral, kh, kv, 0, 0, 0})
	}
	return rows
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Defaults returns the baseline parameter set: the PSCI girder bridge with
// six girders over a 29.6 m span, fully derived.
func Defaults() Set {
	n := DefaultGirders
	s := New(map[string]any{
		"project_name": "PSCI Bridge",
		"notes":        "",

		"Bridge_width":     12.5,
		"Bridge_skew":      36.0,
		"girder_number":    n,
		"Left_Cantilever":  1.05,
		"Right_Cantilever": 1.05,
		"girder_spacing":   2.08,
		"girder_length":    29600.0,
		"gravity":          9.81,

		"UF":  700.0,
		"UT":  170.0,
		"UFT": 200.0,
		"WH":  1200.0,
		"WT":  220.0,
		"LFT": 200.0,
		"LT":  230.0,
		"LF":  680.0,

		"Ec":            28896.0,
		"Ep":            200000.0,
		"E_girder1":     repeat(defaultModulus, 2*n),
		"E_girder2":     repeat(defaultModulus, 2*n),
		"E_deck1":       repeat(defaultDeckE, n+1),
		"E_deck2":       repeat(defaultDeckE, n+1),
		"thickness1":    repeat(defaultSlabT, n+2),
		"thickness2":    repeat(defaultSlabT, n+2),
		"diaphragm1_Ec": repeat(defaultDiaphE, n-1),
		"diaphragm2_Ec": repeat(defaultDiaphE, n-1),

		"number_tendon":            4,
		"area_t":                   603.24,
		"tendon_horizontal_length": 14800.0,
		"z_coef_list":              []float64{1500, 1086, 700, 294},
		"z_intercept_list":         []float64{200, 80, 80, 80},
		"y_coef_list":              []float64{0, 0, 0, 0},
		"y_intercept_list":         []float64{0, 0, -150, 150},
		"Ap_N":                     []float64{603.24, 603.24, 603.24, 603.24},
		"A_duct_N":                 []float64{603.24, 603.24, 603.24, 603.24},
		"y_duct_N":                 []float64{1850, 1920, 1920, 1920},
		"PE":                       600.0,

		"bearing_mode":           BearingModeMultiplier,
		"bearing_multiplier":     defaultBearingM,
		"consts1":                BearingLateral,
		"consts_crack":           BearingCracked,
		"Bearing_Base_Stiffness": BaseBearingTable(n),

		"numEigen":     3,
		"zeta":         0.015,
		"point_load_n": -290000.0,

		"dt":           0.1,
		"velocity_kmh": 10.0,
		"load":         -145000.0,
		"pave_thick":   []float64{80},
		"pave_E":       []float64{2500},

		"vehicle_loads_n":      []float64{30650, 57350, 55410, 30650, 57350, 55410},
		"vehicle_distances_mm": []float64{0, 3300, 4600, 0, 3300, 4600},
		"vehicle_lanes":        []int{0, 0, 0, 1, 1, 1},

		"girder3_start_tag": 3001,
		"girder4_start_tag": 4001,
		"girder_n_nodes":    149,
		"plot":              false,

		"crossbeam_positions_mm": []float64{5000, 10000, 15000, 20000, 25000},
		"barrier_Ec":             25000.0,
		"barrier_height_m":       0.3,
		"barrier_width_m":        3.88,
		"diaphragm_height":       1795.0,
		"diaphragm_thickness":    300.0,
	})
	d, err := Derive(s, nil)
	if err != nil {
		panic("params: defaults do not derive: " + err.Error())
	}
	return d
}
