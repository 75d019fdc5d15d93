package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetWithDoesNotMutateReceiver(t *testing.T) {
	base := New(map[string]any{"E_girder1": []float64{28000, 28000}, "zeta": 0.015})

	next := base.With("zeta", 0.02)
	list, err := next.Floats("E_girder1")
	require.NoError(t, err)
	list[0] = 1

	z, err := base.Float("zeta")
	require.NoError(t, err)
	assert.Equal(t, 0.015, z)

	orig, err := base.Floats("E_girder1")
	require.NoError(t, err)
	assert.Equal(t, []float64{28000, 28000}, orig)

	z, err = next.Float("zeta")
	require.NoError(t, err)
	assert.Equal(t, 0.02, z)
}

func TestNewDeepCopiesInput(t *testing.T) {
	src := map[string]any{"thickness1": []float64{250, 250}}
	s := New(src)
	src["thickness1"].([]float64)[0] = 1

	got, err := s.Floats("thickness1")
	require.NoError(t, err)
	assert.Equal(t, []float64{250, 250}, got)
}

func TestAccessors(t *testing.T) {
	s := New(map[string]any{
		"girder_spacing": []any{2.08},
		"girder_number":  6.0,
		"bad_int":        6.5,
		"huge_int":       1e30,
		"name":           "PSCI",
		"flag":           true,
		"table":          []any{[]any{1.0, 2.0}, []any{3.0, 4.0}},
	})

	f, err := s.Float("girder_spacing")
	require.NoError(t, err)
	assert.Equal(t, 2.08, f)

	n, err := s.Int("girder_number")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	_, err = s.Int("bad_int")
	var ve *ValueError
	assert.ErrorAs(t, err, &ve)
	_, err = s.Int("huge_int")
	assert.ErrorAs(t, err, &ve)

	m, err := s.Matrix("table")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, m)

	_, err = s.Float("absent")
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"absent"}, missing.Keys)

	def, err := s.FloatOr("absent", 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, def)
}

func TestDefaultsDeriveReferenceSection(t *testing.T) {
	d := Defaults()

	check := map[string]float64{
		"Ag":       721400,
		"yt1":      1020.3525552167082,
		"Ix_g":     349146130333.45654,
		"A_duct":   2412.96,
		"yt2":      1017.3920199358993,
		"Ix_net":   351045021945.3435,
		"Np":       6.921373200442968,
		"yp":       1902.5,
		"yt3":      1037.485027702135,
		"I_n":      363847177710.1606,
		"A_t":      735688.0366777409,
		"B_t":      763265323.1127353,
		"girder_H": 2000,
		"b2":       240,
		"h3":       1600,
	}
	for key, want := range check {
		got, err := d.Float(key)
		require.NoError(t, err, key)
		assert.InEpsilon(t, want, got, 1e-9, key)
	}
}

func TestDefaultBearingStiffnessScalesA1Only(t *testing.T) {
	d := Defaults()
	k, err := d.Matrix("Bearing_Stiffness")
	require.NoError(t, err)
	require.Len(t, k, 12)

	assert.Equal(t, []float64{0, 80000 * 0.3, 1e6 * 0.3, 0, 0, 0}, k[0])
	assert.Equal(t, []float64{0, 80000 * 0.3, 1e5 * 0.3, 0, 0, 0}, k[2])
	assert.Equal(t, []float64{80000, 0, 1e5, 0, 0, 0}, k[6])
	assert.Equal(t, []float64{80000, 80000, 1e6, 0, 0, 0}, k[11])
}

func TestDeriveIsIdempotent(t *testing.T) {
	d := Defaults()
	again, err := Derive(d, nil)
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestBearingTableMode(t *testing.T) {
	table := BaseBearingTable(6)
	table[0][2] = 42

	d := Defaults().With("bearing_mode", "table").With("bearing_multiplier", 0.5)
	out, err := Derive(d, table)
	require.NoError(t, err)

	k, err := out.Matrix("Bearing_Stiffness")
	require.NoError(t, err)
	assert.Equal(t, 42.0, k[0][2])
	assert.Equal(t, BearingLateral, k[0][1], "multiplier must not apply in table mode")
}

func TestBearingTableModeFromParameter(t *testing.T) {
	d := Defaults().With("bearing_mode", "Table").With("Bearing_Table", Generic(BaseBearingTable(6)))
	out, err := Derive(d, nil)
	require.NoError(t, err)
	k, err := out.Matrix("Bearing_Stiffness")
	require.NoError(t, err)
	assert.Equal(t, BaseBearingTable(6), k)
}

func TestBearingTableModeWithoutTable(t *testing.T) {
	d := Defaults().With("bearing_mode", "table")
	_, err := Derive(d, nil)
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "bearing_mode", ve.Key)
}

func TestBearingTableWrongShape(t *testing.T) {
	_, err := Derive(Defaults().With("bearing_mode", "table"), [][]float64{{1, 2, 3, 4, 5, 6}})
	var ve *ValueError
	assert.ErrorAs(t, err, &ve)
}

func TestDeriveMissingSectionInput(t *testing.T) {
	_, err := Derive(Defaults().Without("WH").Without("LF"), nil)
	var missing *MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"WH", "LF"}, missing.Keys)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(Defaults()))

	err := Validate(Defaults().Without("girder_number").Without("yt3"))
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Keys, "girder_number")
	assert.Contains(t, missing.Keys, "yt3")
}

func TestSchemaCoversDefaults(t *testing.T) {
	fields := Schema()
	seen := map[string]bool{}
	for _, f := range fields {
		assert.False(t, seen[f.Key], "duplicate key %s", f.Key)
		seen[f.Key] = true
	}
	for _, k := range Defaults().Keys() {
		if !seen[k] {
			assert.Contains(t, DerivedKeys, k)
		}
	}
}
