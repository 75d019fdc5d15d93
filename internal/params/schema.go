package params

import "sort"

// Field describes one key-value row of the workbook template.
type Field struct {
	Sheet       string
	Key         string
	Unit        string
	Type        Type
	Description string
	Required    bool
	Example     string
}

// KV sheet names in template order. Advanced collects every default key not
// listed on another sheet.
const (
	SheetMeta      = "Meta"
	SheetGeometry  = "Geometry"
	SheetSection   = "Section"
	SheetMaterials = "Materials"
	SheetTendon    = "Tendon"
	SheetBearings  = "Bearings"
	SheetModal     = "Modal"
	SheetDynamic   = "Dynamic"
	SheetVehicle   = "Vehicle"
	SheetOutput    = "Output"
	SheetAdvanced  = "Advanced"
)

// KVSheets lists the key-value sheets in the order they are read.
var KVSheets = []string{
	SheetMeta, SheetGeometry, SheetSection, SheetMaterials, SheetTendon, SheetBearings,
	SheetModal, SheetDynamic, SheetVehicle, SheetOutput, SheetAdvanced,
}

var schema = []Field{
	{SheetMeta, "project_name", "", TypeString, "Project label used for output folders", false, "HyojaBridge_UP"},
	{SheetMeta, "notes", "", TypeString, "Free-form notes", false, ""},

	{SheetGeometry, "Bridge_width", "m", TypeFloat, "Overall bridge width", true, "12.5"},
	{SheetGeometry, "Bridge_skew", "deg", TypeFloat, "Skew angle", false, "0"},
	{SheetGeometry, "girder_number", "ea", TypeInt, "Number of PSCI girders", true, "6"},
	{SheetGeometry, "girder_spacing", "m", TypeFloat, "Center-to-center girder spacing", true, "2.08"},
	{SheetGeometry, "Left_Cantilever", "m", TypeFloat, "Left cantilever width", true, "1.05"},
	{SheetGeometry, "Right_Cantilever", "m", TypeFloat, "Right cantilever width", true, "1.05"},
	{SheetGeometry, "girder_length", "mm", TypeFloat, "Girder design length", true, "29600"},
	{SheetGeometry, "gravity", "m/s^2", TypeFloat, "Gravity", true, "9.81"},

	{SheetSection, "UF", "mm", TypeFloat, "Upper flange width", true, "700"},
	{SheetSection, "UT", "mm", TypeFloat, "Upper flange thickness", true, "170"},
	{SheetSection, "UFT", "mm", TypeFloat, "Upper fillet thickness", true, "200"},
	{SheetSection, "WH", "mm", TypeFloat, "Web height", true, "1200"},
	{SheetSection, "WT", "mm", TypeFloat, "Web thickness", true, "220"},
	{SheetSection, "LFT", "mm", TypeFloat, "Lower fillet thickness", true, "200"},
	{SheetSection, "LT", "mm", TypeFloat, "Lower flange thickness", true, "230"},
	{SheetSection, "LF", "mm", TypeFloat, "Lower flange width", true, "680"},

	{SheetMaterials, "Ec", "MPa", TypeFloat, "Girder concrete modulus for section properties", true, "28896"},
	{SheetMaterials, "Ep", "MPa", TypeFloat, "Strand modulus", true, "200000"},
	{SheetMaterials, "E_girder1", "MPa", TypeFloatList, "Girder E list, one entry per girder line", true, "[28000,28000,...]"},
	{SheetMaterials, "E_girder2", "MPa", TypeFloatList, "Second girder E list (reserved)", false, "[28000,28000,...]"},
	{SheetMaterials, "E_deck1", "MPa", TypeFloatList, "Deck E list (length = girder_number+1)", true, "[25000,...]"},
	{SheetMaterials, "E_deck2", "MPa", TypeFloatList, "Second deck E list (reserved)", false, "[25000,...]"},
	{SheetMaterials, "thickness1", "mm", TypeFloatList, "Deck thickness at each girder line and edge (length = girder_number+2)", true, "[250,...]"},
	{SheetMaterials, "diaphragm1_Ec", "MPa", TypeFloatList, "Start diaphragm E list (length = girder_number-1)", true, "[24000,...]"},
	{SheetMaterials, "diaphragm2_Ec", "MPa", TypeFloatList, "End diaphragm and cross beam E list", true, "[24000,...]"},

	{SheetTendon, "number_tendon", "ea", TypeInt, "Number of tendon groups", true, "4"},
	{SheetTendon, "tendon_horizontal_length", "mm", TypeFloat, "Half length of the parabolic tendon profile", true, "14800"},
	{SheetTendon, "z_coef_list", "mm", TypeFloatList, "Tendon height at the girder ends", true, "[1500,1086,700,294]"},
	{SheetTendon, "z_intercept_list", "mm", TypeFloatList, "Tendon height at midspan", true, "[200,80,80,80]"},
	{SheetTendon, "y_coef_list", "mm", TypeFloatList, "Tendon lateral offset at the girder ends", true, "[0,0,0,0]"},
	{SheetTendon, "y_intercept_list", "mm", TypeFloatList, "Tendon lateral offset at midspan", true, "[0,0,-150,150]"},
	{SheetTendon, "Ap_N", "mm^2", TypeFloatList, "Strand area per tendon group", true, "[603.24,...]"},
	{SheetTendon, "A_duct_N", "mm^2", TypeFloatList, "Duct area per tendon group", true, "[603.24,...]"},
	{SheetTendon, "y_duct_N", "mm", TypeFloatList, "Duct depth from girder top per group", true, "[1850,1920,1920,1920]"},
	{SheetTendon, "PE", "MPa", TypeFloat, "Effective prestress", false, "600"},

	{SheetBearings, "bearing_mode", "multiplier/table", TypeString, "How Bearing_Stiffness is produced", true, "multiplier"},
	{SheetBearings, "bearing_multiplier", "-", TypeFloat, "Scale of the A1 rows in multiplier mode", true, "0.3"},
	{SheetBearings, "Bearing_Base_Stiffness", "kN/m", TypeJSON, "Unscaled table used in multiplier mode", false, ""},
	{SheetBearings, "Bearing_Table", "kN/m", TypeJSON, "Explicit table for table mode when no BearingsTable sheet is filled", false, ""},

	{SheetModal, "numEigen", "ea", TypeInt, "Number of eigenvalues", true, "3"},
	{SheetModal, "zeta", "-", TypeFloat, "Modal damping ratio", true, "0.015"},
	{SheetModal, "point_load_n", "N", TypeFloat, "Static check load, split over the load nodes", false, "-290000"},
	{SheetModal, "check_nodes", "", TypeIntList, "Deflection check nodes (default: every girder midspan)", false, "[1075,2075,...]"},
	{SheetModal, "load_nodes", "", TypeIntList, "Static load nodes (default: girder 3 and 4 midspan)", false, "[3075,4075]"},

	{SheetDynamic, "dt", "s", TypeFloat, "Time step", true, "0.1"},
	{SheetDynamic, "velocity_kmh", "km/h", TypeFloat, "Vehicle speed", true, "10"},
	{SheetDynamic, "load", "N", TypeFloat, "Half of the static check load", false, "-145000"},
	{SheetDynamic, "pave_thick", "mm", TypeFloatList, "Pavement thickness", false, "[80]"},

	{SheetVehicle, "vehicle_loads_n", "N", TypeFloatList, "Axle loads", false, "[30650,57350,55410,...]"},
	{SheetVehicle, "vehicle_distances_mm", "mm", TypeFloatList, "Axle offsets from the lead axle of each lane", false, "[0,3300,4600,...]"},
	{SheetVehicle, "vehicle_lanes", "", TypeIntList, "Lane index of each axle (0 = girder 3, 1 = girder 4)", false, "[0,0,0,1,1,1]"},

	{SheetOutput, "girder3_start_tag", "", TypeInt, "First node tag of the lane 0 girder", false, "3001"},
	{SheetOutput, "girder4_start_tag", "", TypeInt, "First node tag of the lane 1 girder", false, "4001"},
	{SheetOutput, "girder_n_nodes", "", TypeInt, "Nodes per girder line", false, "149"},
	{SheetOutput, "plot", "", TypeBool, "Write acceleration plots", false, "false"},
}

// Schema returns the template fields in sheet order, followed by one
// Advanced row for every remaining default key that is not derived.
func Schema() []Field {
	out := append([]Field(nil), schema...)
	known := make(map[string]bool, len(out))
	for _, f := range out {
		known[f.Key] = true
	}
	for _, k := range DerivedKeys {
		known[k] = true
	}
	defaults := Defaults()
	var extra []string
	for _, k := range defaults.Keys() {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		v, _ := defaults.Get(k)
		out = append(out, Field{Sheet: SheetAdvanced, Key: k, Type: TypeOf(v)})
	}
	return out
}

// RequiredKeys returns every key marked required in the schema.
func RequiredKeys() []string {
	var keys []string
	for _, f := range schema {
		if f.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Validate fails with *MissingParameterError listing every required input
// and every derived key the model builder reads that is absent from s.
func Validate(s Set) error {
	var missing []string
	for _, k := range RequiredKeys() {
		if !s.Has(k) {
			missing = append(missing, k)
		}
	}
	for _, k := range DerivedKeys {
		if !s.Has(k) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingParameterError{Keys: missing}
	}
	return nil
}
